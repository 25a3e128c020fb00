package ppu

// State is the serializable subset of PPU state: everything a snapshot
// needs to reproduce future frames bit-for-bit. The tile cache and
// dirty-tracking sets are deliberately excluded — they're pure
// memoization over VRAM/palette/CHR-ROM, and ImportState rebuilds them
// in full from the imported state rather than trying to serialize them.
type State struct {
	OAM     [256]byte
	VRAM    [2048]byte
	Palette [32]byte

	Ctrl   byte
	Mask   byte
	Status byte

	XScroll      byte
	YScroll      byte
	ScrollToggle bool

	OAMAddr       byte
	PPUAddr       uint16
	PPUAddrToggle bool
	DelayedRead   byte

	Vblank        bool
	SpriteZeroHit bool

	XScrollBeforeSpriteZeroHit uint16
	YScrollBeforeSpriteZeroHit uint16

	InstructionCountAtLastStatusRead uint64
}

// ExportState captures everything State needs from p.
func (p *PPU) ExportState() State {
	return State{
		OAM:                              p.OAM,
		VRAM:                             p.vram,
		Palette:                          p.palette,
		Ctrl:                             p.ctrl,
		Mask:                             p.mask,
		Status:                           p.status,
		XScroll:                          p.xScroll,
		YScroll:                          p.yScroll,
		ScrollToggle:                     p.scrollToggle,
		OAMAddr:                          p.oamAddr,
		PPUAddr:                          p.ppuAddr,
		PPUAddrToggle:                    p.ppuAddrToggle,
		DelayedRead:                      p.delayedRead,
		Vblank:                           p.vblank,
		SpriteZeroHit:                    p.spriteZeroHit,
		XScrollBeforeSpriteZeroHit:       p.xScrollBeforeSpriteZeroHit,
		YScrollBeforeSpriteZeroHit:       p.yScrollBeforeSpriteZeroHit,
		InstructionCountAtLastStatusRead: p.instructionCountAtLastStatusRead,
	}
}

// ImportState replaces p's register/VRAM/palette/OAM state with s and
// rebuilds the tile cache in full before returning, since the cache
// itself is not part of the snapshot (and the vblank entry that precedes
// the next Render clears the full-rebuild flag).
func (p *PPU) ImportState(s State) {
	p.OAM = s.OAM
	p.vram = s.VRAM
	p.palette = s.Palette
	p.ctrl = s.Ctrl
	p.mask = s.Mask
	p.status = s.Status
	p.xScroll = s.XScroll
	p.yScroll = s.YScroll
	p.scrollToggle = s.ScrollToggle
	p.oamAddr = s.OAMAddr
	p.ppuAddr = s.PPUAddr
	p.ppuAddrToggle = s.PPUAddrToggle
	p.delayedRead = s.DelayedRead
	p.vblank = s.Vblank
	p.spriteZeroHit = s.SpriteZeroHit
	p.xScrollBeforeSpriteZeroHit = s.XScrollBeforeSpriteZeroHit
	p.yScrollBeforeSpriteZeroHit = s.YScrollBeforeSpriteZeroHit
	p.instructionCountAtLastStatusRead = s.InstructionCountAtLastStatusRead

	p.backgroundPatternTableChanged = true
	for k := range p.dirtyTiles {
		delete(p.dirtyTiles, k)
	}
	for _, set := range p.tilesWithPalette {
		for k := range set {
			delete(set, k)
		}
	}
	p.updateTiles()
}
