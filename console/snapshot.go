package console

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"nesgo/errs"
)

// NumSnapshotSlots is the number of named save slots a host may address.
const NumSnapshotSlots = 10

func snapshotPath(dir string, slot int) (string, error) {
	if slot < 0 || slot >= NumSnapshotSlots {
		return "", errs.New(errs.InvalidAccess, "snapshot slot %d out of range 0-%d", slot, NumSnapshotSlots-1)
	}
	return filepath.Join(dir, fmt.Sprintf("slot-%d.snap", slot)), nil
}

// SaveState serializes the console's CPU/PPU/APU state (gob, then
// zstd-compressed) into slot within dir. The cartridge is never part of
// the blob; it must be re-attached by the host after LoadState.
func (c *Console) SaveState(dir string, slot int) error {
	path, err := snapshotPath(dir, slot)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.exportState()); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	defer enc.Close()

	return os.WriteFile(path, enc.EncodeAll(buf.Bytes(), nil), 0o644)
}

// LoadState restores the console's CPU/PPU/APU state from slot within
// dir. A slot with no saved file returns errs.MissingSnapshot, which
// callers must treat as a no-op rather than a failure.
func (c *Console) LoadState(dir string, slot int) error {
	path, err := snapshotPath(dir, slot)
	if err != nil {
		return err
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.New(errs.MissingSnapshot, "no snapshot saved in slot %d", slot)
		}
		return err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return err
	}

	var s State
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return err
	}

	c.importState(s)
	return nil
}
