package ppu

import "nesgo/errs"

const (
	videoWidth  = 256
	videoHeight = 224
)

// indexToAddr maps a tile cell (y, x) in the 2x2-expanded nametable grid
// (x spans two horizontally adjacent tables, 0-63) to the nametable
// byte address holding its tile index and the attribute byte address
// governing its palette selection. Both addresses already land in the
// folded 0-0x7FF VRAM space emitted by writeNametable, since the tile
// rows this is ever called with never set the high nametable bit.
func indexToAddr(y, x int) (pattern, attr uint16) {
	nametable := uint16(y&0x20)<<6 | uint16(x&0x20)<<5
	pattern = nametable | uint16(y&0x1F)<<5 | uint16(x&0x1F)
	attr = nametable | 0x3C0
	attr |= uint16(y&0x1C) << 1
	attr |= uint16(x&0x1C) >> 2
	return pattern, attr
}

// addrToIndexes inverts indexToAddr for a VRAM address within a single
// physical bank (0-0x7FF): a tile-index byte maps back to exactly one
// cell, an attribute byte maps back to the 4x4 block of cells it
// governs.
func addrToIndexes(addr uint16) [][2]int {
	y := int(addr>>11&1) << 5
	x := int(addr>>10&1) << 5
	rel := addr & 0x3FF

	if rel < 0x3C0 {
		y |= int(rel>>5) & 0x1F
		x |= int(rel) & 0x1F
		return [][2]int{{y, x}}
	}

	y |= int(rel&0x38) >> 1
	x |= int(rel&0x07) << 2
	out := make([][2]int, 0, 16)
	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 4; dx++ {
			out = append(out, [2]int{y | dy, x | dx})
		}
	}
	return out
}

// renderTile rasterizes an 8x8 CHR pattern using a 3-color slice (colors
// 1-3 of a palette; color 0 is never passed in and stays the zero
// "transparent" sentinel). Memoized by (pattern address, colors), which
// is stable for the lifetime of a cartridge.
func (p *PPU) renderTile(patternAddr uint16, colors [3]byte) [64]uint32 {
	key := tileCacheKey{pattern: patternAddr, c0: colors[0], c1: colors[1], c2: colors[2]}
	if cached, ok := p.tileCache[key]; ok {
		return cached
	}

	var out [64]uint32
	for row := 0; row < 8; row++ {
		lo := p.cart.CHR[int(patternAddr)+row]
		hi := p.cart.CHR[int(patternAddr)+row+8]
		for col := 0; col < 8; col++ {
			bit := 7 - col
			idx := (lo>>bit)&1 | ((hi>>bit)&1)<<1
			if idx == 0 {
				continue
			}
			out[row*8+col] = palette64[colors[idx-1]&0x3F]
		}
	}
	p.tileCache[key] = out
	return out
}

func flipHorizontal(tile [64]uint32) [64]uint32 {
	var out [64]uint32
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			out[row*8+col] = tile[row*8+(7-col)]
		}
	}
	return out
}

func flipVertical(tile [64]uint32) [64]uint32 {
	var out [64]uint32
	for row := 0; row < 8; row++ {
		copy(out[row*8:row*8+8], tile[(7-row)*8:(7-row)*8+8])
	}
	return out
}

// updateTile recomputes one background tile cell from VRAM/palette
// state and writes it into the tile cache. Pure given unchanged VRAM and
// palette inputs, so repeated calls are idempotent.
func (p *PPU) updateTile(y, x int) {
	if y == 30 || y == 31 || y == 62 || y == 63 {
		return
	}

	patternRAMAddr, paletteRAMAddr := indexToAddr(y, x)
	tileIdx := p.vram[patternRAMAddr]
	patternAddr := uint16(tileIdx)<<4 | p.backgroundPatternTableAddress()

	attrByte := p.vram[paletteRAMAddr]
	shift := uint(y&0x2)<<1 | uint(x&0x2)
	paletteBase := (attrByte >> shift) & 0x3 << 2
	colors := [3]byte{
		p.palette[(paletteBase+1)&0x1F],
		p.palette[(paletteBase+2)&0x1F],
		p.palette[(paletteBase+3)&0x1F],
	}

	entry := [2]int{y, x}
	for s := range p.tilesWithPalette {
		delete(p.tilesWithPalette[s], entry)
	}
	p.tilesWithPalette[paletteBase>>2][entry] = struct{}{}

	tile := p.renderTile(patternAddr, colors)
	yPixel := y << 3
	xPixel := x << 3
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p.bg[(yPixel+row)*bgWidth+(xPixel+col)] = tile[row*8+col]
		}
	}
}

// updateTiles rebuilds the tile cache: every cell if the background
// pattern table selection changed since the last frame, otherwise only
// the cells named in dirtyTiles.
func (p *PPU) updateTiles() {
	if p.backgroundPatternTableChanged {
		for x := 0; x < 64; x++ {
			for y := 0; y < 30; y++ {
				p.updateTile(y, x)
			}
		}
	} else {
		for k := range p.dirtyTiles {
			p.updateTile(k[0], k[1])
		}
	}
	p.backgroundPatternTableChanged = false
	p.dirtyTiles = make(map[[2]int]struct{})
}

// Render composes one video frame: fill with the backdrop color, blit
// sprites behind the background, blit the background (rebuilding the
// tile cache first), then blit sprites in front.
func (p *PPU) Render(video []uint32) error {
	p.renderBackgroundColor(video)
	if err := p.renderSprites(video, true); err != nil {
		return err
	}
	if err := p.renderBackground(video); err != nil {
		return err
	}
	return p.renderSprites(video, false)
}

func (p *PPU) renderBackgroundColor(video []uint32) {
	fill := palette64[p.palette[0]&0x3F]
	for i := range video {
		video[i] = fill
	}
}

// renderBackground realizes the mid-frame horizontal scroll split: the
// strip above OAM[0].y+8 is blit unscrolled, everything from there down
// is blit twice (once at -x_scroll, once at 512-x_scroll) so a wrapping
// background still covers the full visible width.
func (p *PPU) renderBackground(video []uint32) error {
	p.updateTiles()
	if !p.showBackground() {
		return nil
	}

	const firstRow = 8
	spriteZeroHitY := int(p.OAM[0]) + 8
	xScroll := int(p.xScroll) | int(p.ctrl&0x01)<<8

	p.blitBackgroundSlice(video, 0, spriteZeroHitY, -firstRow, 0)
	p.blitBackgroundSlice(video, spriteZeroHitY, bgHeight-spriteZeroHitY, spriteZeroHitY-firstRow, -xScroll)
	p.blitBackgroundSlice(video, spriteZeroHitY, bgHeight-spriteZeroHitY, spriteZeroHitY-firstRow, bgWidth-xScroll)
	return nil
}

func (p *PPU) blitBackgroundSlice(video []uint32, rowStart, rowCount, rowOffset, colOffset int) {
	for r := 0; r < rowCount; r++ {
		srcRow := rowStart + r
		if srcRow >= bgHeight {
			break
		}
		dr := r + rowOffset
		if dr < 0 || dr >= videoHeight {
			continue
		}
		for c := 0; c < bgWidth; c++ {
			v := p.bg[srcRow*bgWidth+c]
			if v == 0 {
				continue
			}
			dc := c + colOffset
			if dc < 0 || dc >= videoWidth {
				continue
			}
			video[dr*videoWidth+dc] = v
		}
	}
}

// renderSprites walks OAM from entry 63 down to 0 so lower-indexed
// sprites draw on top, blitting only the entries whose priority bit
// matches behind.
func (p *PPU) renderSprites(video []uint32, behind bool) error {
	if !p.showSprites() {
		return nil
	}
	if p.unsupportedSpriteSize() {
		return errs.New(errs.UnimplementedFeature, "8x16 sprites are not supported")
	}

	const firstRow = 8
	patternTable := p.spritePatternTableAddress()

	for i := 63; i >= 0; i-- {
		y := p.OAM[i*4+0]
		tileIdx := p.OAM[i*4+1]
		attr := p.OAM[i*4+2]
		x := p.OAM[i*4+3]

		if y >= 240 {
			continue
		}
		if behind != (attr&0x20 != 0) {
			continue
		}

		patternAddr := uint16(tileIdx)<<4 | patternTable
		colorIndex := attr & 0x03
		paletteAddr := uint16(0x10 | colorIndex<<2)
		colors := [3]byte{
			p.palette[(paletteAddr+1)&0x1F],
			p.palette[(paletteAddr+2)&0x1F],
			p.palette[(paletteAddr+3)&0x1F],
		}

		tile := p.renderTile(patternAddr, colors)
		if attr&0x80 != 0 {
			tile = flipVertical(tile)
		}
		if attr&0x40 != 0 {
			tile = flipHorizontal(tile)
		}
		p.blitSprite(video, tile, int(y)-firstRow, int(x))
	}
	return nil
}

func (p *PPU) blitSprite(video []uint32, tile [64]uint32, rowOffset, colOffset int) {
	for row := 0; row < 8; row++ {
		dr := row + rowOffset
		if dr < 0 || dr >= videoHeight {
			continue
		}
		for col := 0; col < 8; col++ {
			v := tile[row*8+col]
			if v == 0 {
				continue
			}
			dc := col + colOffset
			if dc < 0 || dc >= videoWidth {
				continue
			}
			video[dr*videoWidth+dc] = v
		}
	}
}
