package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nesgo/cartridge"
)

func newTestPPU(t *testing.T, mirroring cartridge.Mirroring) *PPU {
	t.Helper()
	cart := &cartridge.Cartridge{
		CHR:       make([]byte, 0x2000),
		Mirroring: mirroring,
	}
	return New(cart)
}

func TestPaletteMirrorRoundTrip(t *testing.T) {
	pairs := [][2]uint16{
		{0x00, 0x10},
		{0x04, 0x14},
		{0x08, 0x18},
		{0x0C, 0x1C},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		t.Run("", func(t *testing.T) {
			p := newTestPPU(t, cartridge.Horizontal)

			require.NoError(t, p.ppuWrite(0x3F00+a, 0x12))
			assert.Equal(t, byte(0x12), p.palette[a])
			assert.Equal(t, byte(0x12), p.palette[b], "writing %#x must mirror to %#x", a, b)

			require.NoError(t, p.ppuWrite(0x3F00+b, 0x34))
			assert.Equal(t, byte(0x34), p.palette[a], "writing %#x must mirror back to %#x", b, a)
			assert.Equal(t, byte(0x34), p.palette[b])
		})
	}
}

func TestWritePaletteNonBackdropDoesNotMirror(t *testing.T) {
	p := newTestPPU(t, cartridge.Horizontal)
	require.NoError(t, p.ppuWrite(0x3F01, 0x22))
	assert.Equal(t, byte(0x22), p.palette[0x01])
	assert.Equal(t, byte(0), p.palette[0x11])
}

func TestWriteNametableHorizontalMirroring(t *testing.T) {
	p := newTestPPU(t, cartridge.Horizontal)

	require.NoError(t, p.ppuWrite(0x2000, 0xAB))
	assert.Equal(t, byte(0xAB), p.vram[0x000])

	require.NoError(t, p.ppuWrite(0x2400, 0xCD))
	assert.Equal(t, byte(0xCD), p.vram[0x000], "table 1 must fold onto the same bank as table 0 under horizontal mirroring")

	require.NoError(t, p.ppuWrite(0x2800, 0xEF))
	assert.Equal(t, byte(0xEF), p.vram[0x400])

	require.NoError(t, p.ppuWrite(0x2C00, 0x11))
	assert.Equal(t, byte(0x11), p.vram[0x400], "table 3 must fold onto the same bank as table 2 under horizontal mirroring")
}

func TestWriteNametableVerticalMirroring(t *testing.T) {
	p := newTestPPU(t, cartridge.Vertical)

	require.NoError(t, p.ppuWrite(0x2000, 0xAB))
	require.NoError(t, p.ppuWrite(0x2800, 0xBC))
	assert.Equal(t, byte(0xBC), p.vram[0x000], "table 0 and table 2 share a bank under vertical mirroring")

	require.NoError(t, p.ppuWrite(0x2400, 0xCD))
	require.NoError(t, p.ppuWrite(0x2C00, 0xCD))
	assert.Equal(t, byte(0xCD), p.vram[0x400])
}

func TestAddrToIndexesRoundTripsThroughIndexToAddr(t *testing.T) {
	for y := 0; y < 30; y++ {
		for x := 0; x < 64; x += 7 {
			patternAddr, _ := indexToAddr(y, x)
			cells := addrToIndexes(patternAddr & 0x7FF)
			found := false
			for _, c := range cells {
				if c[0] == y && c[1] == x {
					found = true
				}
			}
			assert.True(t, found, "addrToIndexes(indexToAddr(%d,%d)) must contain (%d,%d)", y, x, y, x)
		}
	}
}

func TestUpdateTileIdempotentWhenUnchanged(t *testing.T) {
	p := newTestPPU(t, cartridge.Horizontal)
	p.updateTile(0, 0)
	first := p.bg
	p.updateTile(0, 0)
	assert.Equal(t, first, p.bg, "recomputing an unchanged tile must produce identical pixels")
}

func TestReadStatusClearsTogglesNotAddress(t *testing.T) {
	p := newTestPPU(t, cartridge.Horizontal)
	require.NoError(t, p.WriteRegister(PPUADDR, 0x21))
	require.NoError(t, p.WriteRegister(PPUADDR, 0x08))
	assert.Equal(t, uint16(0x2108), p.ppuAddr)

	_, err := p.ReadRegister(PPUSTATUS, 100)
	require.NoError(t, err)

	assert.False(t, p.scrollToggle)
	assert.False(t, p.ppuAddrToggle)
	assert.Equal(t, uint16(0x2108), p.ppuAddr, "PPUSTATUS read must clear only the write toggles, not the latched address")
}

func TestReadStatusTightLoopSpriteZeroHitHeuristic(t *testing.T) {
	p := newTestPPU(t, cartridge.Horizontal)
	p.vblank = false

	v1, err := p.ReadRegister(PPUSTATUS, 10)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), v1)

	v2, err := p.ReadRegister(PPUSTATUS, 12)
	require.NoError(t, err)
	assert.Equal(t, byte(0x40), v2, "a second status read within 3 instructions should latch sprite-zero-hit")
	assert.True(t, p.spriteZeroHit)

	v3, err := p.ReadRegister(PPUSTATUS, 14)
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), v3, "a third tight-loop read should re-arm vblank")
}

func TestOAMDMAReplacesWholeTable(t *testing.T) {
	p := newTestPPU(t, cartridge.Horizontal)
	var data [256]byte
	for i := range data {
		data[i] = byte(i)
	}
	p.DMAWriteOAM(data)
	assert.Equal(t, data, p.OAM)
}
