package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildRom(prgBanks, chrBanks, flag6, flag7 byte, trainer bool) []byte {
	var buf bytes.Buffer
	buf.Write(inesMagic[:])
	buf.WriteByte(prgBanks)
	buf.WriteByte(chrBanks)
	buf.WriteByte(flag6)
	buf.WriteByte(flag7)
	buf.Write(make([]byte, 8)) // PRG-RAM size + reserved
	if trainer {
		buf.Write(make([]byte, trainerLen))
	}
	buf.Write(make([]byte, int(prgBanks)*prgBankLen))
	buf.Write(make([]byte, int(chrBanks)*chrBankLen))
	return buf.Bytes()
}

func TestLoadValidHorizontal(t *testing.T) {
	rom := buildRom(1, 1, 0x00, 0x00, false)
	c, err := Load(bytes.NewReader(rom))
	assert.NoError(t, err)
	assert.Equal(t, Horizontal, c.Mirroring)
	assert.Equal(t, byte(0), c.Mapper)
	assert.Len(t, c.PRG, prgBankLen)
	assert.Len(t, c.CHR, chrBankLen)
}

func TestLoadValidVerticalWithTrainer(t *testing.T) {
	rom := buildRom(2, 1, flag6Vertical|flag6Trainer, 0x00, true)
	c, err := Load(bytes.NewReader(rom))
	assert.NoError(t, err)
	assert.Equal(t, Vertical, c.Mirroring)
	assert.True(t, c.HasTrainer)
	assert.Len(t, c.Trainer, trainerLen)
	assert.Len(t, c.PRG, 2*prgBankLen)
}

func TestLoadBadMagic(t *testing.T) {
	rom := buildRom(1, 1, 0, 0, false)
	rom[0] = 'X'
	_, err := Load(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrInvalidCartridge)
}

func TestLoadUnsupportedMapper(t *testing.T) {
	rom := buildRom(1, 1, 0x10, 0x00, false) // mapper nibble = 1
	_, err := Load(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrInvalidCartridge)
}

func TestLoadTrailingBytes(t *testing.T) {
	rom := append(buildRom(1, 1, 0, 0, false), 0xFF)
	_, err := Load(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrInvalidCartridge)
}

func TestReadPRGMirrorsSixteenKilobyteCart(t *testing.T) {
	rom := buildRom(1, 1, 0, 0, false)
	c, err := Load(bytes.NewReader(rom))
	assert.NoError(t, err)
	c.PRG[0x10] = 0x42
	assert.Equal(t, byte(0x42), c.ReadPRG(0x10))
	assert.Equal(t, byte(0x42), c.ReadPRG(0x10+prgBankLen))
}
