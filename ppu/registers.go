// Package ppu implements the NES picture processing unit: its eight
// memory-mapped registers, VRAM/OAM/palette addressing, and a
// batched (not cycle-accurate) per-frame rendering model driven off a
// tile cache.
//
// The sprite-0-hit behavior is a heuristic, not an accurate simulation:
// games that busy-poll PPUSTATUS in a tight loop are detected via
// instruction-count proximity rather than real scanline timing. This is
// deliberate and must stay bit-for-bit stable; see registers.go's
// readStatus.
package ppu

import (
	"nesgo/cartridge"
	"nesgo/errs"
)

// Register names one of the eight PPU ports at CPU addresses 0x2000-0x2007.
type Register int

const (
	PPUCTRL Register = iota
	PPUMASK
	PPUSTATUS
	OAMADDR
	OAMDATA
	PPUSCROLL
	PPUADDR
	PPUDATA
)

const (
	bgWidth  = 512
	bgHeight = 480
)

type tileCacheKey struct {
	pattern uint16
	c0      byte
	c1      byte
	c2      byte
}

// PPU holds all picture-processing state: OAM, nametable RAM, palette
// RAM, the eight registers and their write-toggle latches, and the
// derived tile cache used for composition.
type PPU struct {
	cart *cartridge.Cartridge

	OAM     [256]byte
	vram    [2048]byte
	palette [32]byte

	ctrl   byte
	mask   byte
	status byte

	xScroll      byte
	yScroll      byte
	scrollToggle bool

	oamAddr      byte
	ppuAddr      uint16
	ppuAddrToggle bool
	delayedRead  byte

	vblank        bool
	spriteZeroHit bool

	xScrollBeforeSpriteZeroHit uint16
	yScrollBeforeSpriteZeroHit uint16

	instructionCountAtLastStatusRead uint64

	backgroundPatternTableChanged bool
	dirtyTiles                    map[[2]int]struct{}
	tilesWithPalette              [4]map[[2]int]struct{}

	bg        [bgWidth * bgHeight]uint32
	tileCache map[tileCacheKey][64]uint32
}

// New builds a PPU bound to cart's CHR-ROM, with vblank asserted as it
// would be coming out of reset.
func New(cart *cartridge.Cartridge) *PPU {
	p := &PPU{cart: cart, vblank: true}
	p.dirtyTiles = make(map[[2]int]struct{})
	for i := range p.tilesWithPalette {
		p.tilesWithPalette[i] = make(map[[2]int]struct{})
	}
	p.tileCache = make(map[tileCacheKey][64]uint32)
	return p
}

func (p *PPU) backgroundPatternTableAddress() uint16 {
	if p.ctrl&0x10 != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) spritePatternTableAddress() uint16 {
	if p.ctrl&0x08 != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) unsupportedSpriteSize() bool {
	return p.ctrl&0x20 != 0
}

func (p *PPU) addrIncrement() uint16 {
	if p.ctrl&0x04 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) showBackground() bool { return p.mask&0x08 != 0 }
func (p *PPU) showSprites() bool    { return p.mask&0x10 != 0 }

// NewVblank resets the per-frame latches exactly as the driver's vblank
// onset does: scroll and address toggles, OAM/PPU address, and the
// dirty-tile tracking used by incremental tile cache rebuilds.
func (p *PPU) NewVblank() {
	p.xScroll = 0
	p.yScroll = 0
	p.scrollToggle = false
	p.oamAddr = 0
	p.ppuAddr = 0
	p.ppuAddrToggle = false
	p.vblank = true
	p.spriteZeroHit = false
	p.xScrollBeforeSpriteZeroHit = 0
	p.yScrollBeforeSpriteZeroHit = 0
	p.instructionCountAtLastStatusRead = 0
	p.dirtyTiles = make(map[[2]int]struct{})
	p.backgroundPatternTableChanged = false
}

// ReadRegister reads register reg. instructionCount feeds the
// PPUSTATUS tight-loop heuristic.
func (p *PPU) ReadRegister(reg Register, instructionCount uint64) (byte, error) {
	switch reg {
	case PPUCTRL:
		return p.ctrl, nil
	case PPUMASK:
		return p.mask, nil
	case PPUSTATUS:
		return p.readStatus(instructionCount), nil
	case OAMADDR:
		return 0, errs.New(errs.UnimplementedFeature, "OAMADDR is write-only")
	case OAMDATA:
		return 0, errs.New(errs.UnimplementedFeature, "OAMDATA read is not modeled")
	case PPUSCROLL:
		return 0, errs.New(errs.UnimplementedFeature, "PPUSCROLL is write-only")
	case PPUADDR:
		return 0, errs.New(errs.UnimplementedFeature, "PPUADDR is write-only")
	case PPUDATA:
		v, err := p.ppuRead(p.ppuAddr)
		if err != nil {
			return 0, err
		}
		p.ppuAddr += p.addrIncrement()
		return v, nil
	}
	return 0, errs.NewAccess(0, 0, "invalid PPU register %d", int(reg))
}

// readStatus implements the tight-loop sprite-0-hit heuristic: a second
// PPUSTATUS read within 3 instructions of the last one is interpreted as
// a busy-wait, alternating between latching a sprite-0-hit snapshot and
// re-arming vblank. This is what lets games realize a mid-frame
// horizontal scroll split in a batched (non-scanline) renderer.
func (p *PPU) readStatus(instructionCount uint64) byte {
	p.scrollToggle = false
	p.ppuAddrToggle = false

	if instructionCount <= p.instructionCountAtLastStatusRead+3 {
		if !p.spriteZeroHit {
			p.xScrollBeforeSpriteZeroHit = uint16(p.xScroll) | (uint16(p.ctrl&0x01) << 8)
			p.yScrollBeforeSpriteZeroHit = uint16(p.yScroll) | (uint16(p.ctrl&0x02) << 7)
			p.spriteZeroHit = true
		} else {
			p.spriteZeroHit = false
			p.vblank = true
		}
	}
	p.instructionCountAtLastStatusRead = instructionCount

	if p.vblank {
		p.vblank = false
		return 0x80
	}
	if !p.spriteZeroHit {
		return 0x00
	}
	return 0x40
}

// WriteRegister writes v to register reg.
func (p *PPU) WriteRegister(reg Register, v byte) error {
	switch reg {
	case PPUCTRL:
		old := p.backgroundPatternTableAddress()
		p.ctrl = v
		if p.backgroundPatternTableAddress() != old {
			p.backgroundPatternTableChanged = true
		}
		return nil
	case PPUMASK:
		p.mask = v
		return nil
	case PPUSTATUS:
		return errs.New(errs.UnimplementedFeature, "PPUSTATUS is read-only")
	case OAMADDR:
		p.oamAddr = v
		return nil
	case OAMDATA:
		p.OAM[p.oamAddr] = v
		return nil
	case PPUSCROLL:
		if !p.scrollToggle {
			p.xScroll = v
		} else {
			p.yScroll = v
		}
		p.scrollToggle = !p.scrollToggle
		return nil
	case PPUADDR:
		if !p.ppuAddrToggle {
			p.ppuAddr = uint16(v) << 8
		} else {
			p.ppuAddr |= uint16(v)
		}
		p.ppuAddrToggle = !p.ppuAddrToggle
		return nil
	case PPUDATA:
		if err := p.ppuWrite(p.ppuAddr, v); err != nil {
			return err
		}
		p.ppuAddr += p.addrIncrement()
		return nil
	}
	return errs.NewAccess(0, 0, "invalid PPU register %d", int(reg))
}

// DMAWriteOAM replaces the entire OAM table, as driven by a CPU write to
// the OAM DMA register. No increment of oam_addr is modeled.
func (p *PPU) DMAWriteOAM(data [256]byte) {
	p.OAM = data
}

// ppuRead answers a PPUDATA read. Pattern-table (CHR) reads are modeled
// with the real read-buffer delay and palette reads return the palette
// byte directly; nametable reads through this port are not exercised by
// any supported cartridge and are surfaced rather than silently faked.
func (p *PPU) ppuRead(addr uint16) (byte, error) {
	switch {
	case addr < 0x2000:
		result := p.delayedRead
		p.delayedRead = p.cart.CHR[addr]
		return result, nil
	case addr >= 0x2000 && addr < 0x3000:
		return 0, errs.New(errs.UnimplementedFeature, "PPUDATA read from nametable RAM")
	case addr >= 0x3F00 && addr < 0x3F20:
		return p.palette[addr&0x1F], nil
	default:
		return 0, errs.NewAccess(addr, 0, "invalid PPU read")
	}
}

// ppuWrite answers a PPUDATA write. CHR-ROM is not writable in this
// design (no mapper provides CHR-RAM), so writes below 0x2000 fault.
func (p *PPU) ppuWrite(addr uint16, v byte) error {
	switch {
	case addr >= 0x2000 && addr < 0x3000:
		p.writeNametable(addr-0x2000, v)
		return nil
	case addr >= 0x3F00 && addr < 0x3F20:
		p.writePalette(addr, v)
		return nil
	default:
		return errs.NewAccess(addr, 0, "invalid PPU write")
	}
}

// writeNametable folds a 0x000-0xFFF logical nametable address (four
// 0x400-byte tables) down to the 2 KiB of physical VRAM per the
// cartridge's mirroring mode, and marks the affected tile cells dirty
// when the stored byte actually changes.
func (p *PPU) writeNametable(relAddr uint16, v byte) {
	aAddr := relAddr & 0x3FF
	bAddr := aAddr + 0x400

	var folded uint16
	switch {
	case relAddr < 0x400:
		folded = aAddr
	case relAddr < 0x800:
		if p.cart.Mirroring == cartridge.Horizontal {
			folded = aAddr
		} else {
			folded = bAddr
		}
	case relAddr < 0xC00:
		if p.cart.Mirroring == cartridge.Horizontal {
			folded = bAddr
		} else {
			folded = aAddr
		}
	default:
		folded = bAddr
	}

	if p.vram[folded] != v {
		for _, idx := range addrToIndexes(folded) {
			p.dirtyTiles[idx] = struct{}{}
		}
	}
	p.vram[folded] = v
}

// paletteMirror reports the address that idx (already folded to 0-0x1F)
// mirrors with, for the four slots shared between the background and
// sprite palette regions.
func paletteMirror(idx uint16) (uint16, bool) {
	switch idx {
	case 0x00, 0x04, 0x08, 0x0C:
		return idx + 0x10, true
	case 0x10, 0x14, 0x18, 0x1C:
		return idx - 0x10, true
	}
	return 0, false
}

// writePalette applies the 32-byte palette RAM fold. A write to one of
// the four backdrop slots mirrors but never marks tiles dirty; a write
// to any other background color (index < 0x10) marks every tile
// currently using that palette as dirty, so updateTiles can redraw just
// the affected cells instead of the whole screen.
func (p *PPU) writePalette(addr uint16, v byte) {
	idx := addr & 0x1F

	if m, ok := paletteMirror(idx); ok {
		p.palette[m] = v
		p.palette[idx] = v
		return
	}
	if idx < 0x10 && p.palette[idx] != v {
		for k := range p.tilesWithPalette[idx>>2] {
			p.dirtyTiles[k] = struct{}{}
		}
	}
	p.palette[idx] = v
}
