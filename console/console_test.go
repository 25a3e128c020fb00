package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nesgo/cartridge"
)

// newTestCart builds a minimal 16 KiB NROM cartridge whose reset vector
// sits on a self-jump (the idle idiom RunBurst recovers from) and whose
// NMI vector sits on a bare RTI, just enough to drive a full frame
// without requiring real game code.
func newTestCart() *cartridge.Cartridge {
	prg := make([]byte, 0x4000)
	prg[0] = 0x4C // JMP $8000 (self)
	prg[1] = 0x00
	prg[2] = 0x80
	prg[3] = 0x40 // RTI, at $8003

	prg[0x3FFA] = 0x03 // NMI vector -> $8003
	prg[0x3FFB] = 0x80
	prg[0x3FFC] = 0x00 // RST vector -> $8000
	prg[0x3FFD] = 0x80

	return &cartridge.Cartridge{
		Mapper:    0,
		Mirroring: cartridge.Horizontal,
		PRG:       prg,
		CHR:       make([]byte, 0x2000),
	}
}

func TestNewRunsResetToTheFirstInfiniteLoop(t *testing.T) {
	c, err := New(newTestCart())
	require.NoError(t, err)
	assert.EqualValues(t, 0x8000, c.Cpu.ProgramCounter)
}

func TestAdvanceOneFrameRendersAndSynthesizes(t *testing.T) {
	c, err := New(newTestCart())
	require.NoError(t, err)

	video := make([]uint32, Width*Height)
	audio := make([]int16, 14890)

	ticks, err := c.AdvanceOneFrame(video, audio)
	require.NoError(t, err)
	assert.Equal(t, TicksInFrame, ticks)
	assert.EqualValues(t, 1, c.Cpu.Frame)
}

func TestSetInputLatchesButtonBits(t *testing.T) {
	c, err := New(newTestCart())
	require.NoError(t, err)

	c.SetInput(A | Start | Right)
	assert.EqualValues(t, 0x01|0x08|0x80, c.Cpu.InputValue)
}

func TestSaveAndLoadStateRoundTrips(t *testing.T) {
	c, err := New(newTestCart())
	require.NoError(t, err)

	video := make([]uint32, Width*Height)
	audio := make([]int16, 14890)
	_, err = c.AdvanceOneFrame(video, audio)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, c.SaveState(dir, 3))

	c.Cpu.RAM[0] = 0xAB
	c.Cpu.Frame = 99

	require.NoError(t, c.LoadState(dir, 3))
	assert.EqualValues(t, 1, c.Cpu.Frame)
	assert.NotEqualValues(t, 0xAB, c.Cpu.RAM[0])
}

func TestLoadStateFromEmptySlotIsMissingSnapshot(t *testing.T) {
	c, err := New(newTestCart())
	require.NoError(t, err)

	err = c.LoadState(t.TempDir(), 7)
	require.Error(t, err)
}

func TestDumpStateIsNonEmpty(t *testing.T) {
	c, err := New(newTestCart())
	require.NoError(t, err)
	assert.NotEmpty(t, c.DumpState())
}
