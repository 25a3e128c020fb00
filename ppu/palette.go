package ppu

// palette64 is the standard NES/2C02 NTSC palette: 64 entries mapping a
// 6-bit palette RAM value to a packed RGBA color. The low byte is a fixed
// 0xFF alpha, which guarantees every real color is non-zero; zero is
// reserved as the "transparent" sentinel used by tile rasterization and
// the frame compositor.
var palette64 = buildPalette64()

func buildPalette64() [64]uint32 {
	rgb := [64]uint32{
		0x626262, 0x001fb2, 0x2404c8, 0x5200b2, 0x730076, 0x800024, 0x730b00, 0x522800,
		0x244400, 0x005700, 0x005c00, 0x005324, 0x003c76, 0x000000, 0x000000, 0x000000,
		0xababab, 0x0d57ff, 0x4b30ff, 0x8a13ff, 0xbc08d6, 0xd21269, 0xd22f00, 0xbc5800,
		0x8a7300, 0x4b8200, 0x0d8a00, 0x008a3a, 0x00809d, 0x000000, 0x000000, 0x000000,
		0xffffff, 0x3c9fff, 0x5c6bff, 0x9550ff, 0xe142ff, 0xff45ad, 0xff5e3c, 0xff7e00,
		0xd6930d, 0x9daf00, 0x5cc423, 0x36cf62, 0x26c8af, 0x3c3c3c, 0x000000, 0x000000,
		0xffffff, 0xabd8ff, 0xc0c7ff, 0xd9b6ff, 0xffabff, 0xffa8ff, 0xffbda3, 0xffd590,
		0xffe98a, 0xe9f28a, 0xd3f98a, 0xbef9ab, 0xb3f3cc, 0xafb5bd, 0x000000, 0x000000,
	}
	var out [64]uint32
	for i, v := range rgb {
		out[i] = v<<8 | 0xFF
	}
	return out
}
