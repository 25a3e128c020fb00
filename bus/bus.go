// Package bus implements the CPU's address-decoded view of the console:
// work RAM, the PPU and APU register windows, OAM DMA, the controller
// strobe register, and PRG-ROM.
//
// The bus owns no state of its own beyond pointers into state owned
// elsewhere (RAM and the controller latch belong to the CPU; VRAM/OAM to
// the PPU; channel state to the APU). This keeps the import direction
// one-way: bus depends on ppu, apu and cartridge, and cpu depends on bus,
// so neither ppu nor apu needs to import cpu.
package bus

import (
	"nesgo/apu"
	"nesgo/cartridge"
	"nesgo/errs"
	"nesgo/ppu"
)

const (
	ramStart    = 0x0000
	ramEnd      = 0x1FFF
	ppuRegStart = 0x2000
	ppuRegEnd   = 0x3FFF
	apuRegStart = 0x4000
	apuRegEnd   = 0x4013
	oamDMA      = 0x4014
	apuStatus   = 0x4015
	controller1 = 0x4016
	controller2 = 0x4017
	prgStart    = 0x8000
)

// Bus wires the CPU's address space to the components that answer it.
type Bus struct {
	RAM        *[2048]byte
	InputValue *byte

	PPU  *ppu.PPU
	APU  *apu.APU
	Cart *cartridge.Cartridge
}

// New builds a bus over the given component pointers. RAM and input are
// owned by the CPU and shared here by pointer.
func New(ram *[2048]byte, input *byte, p *ppu.PPU, a *apu.APU, cart *cartridge.Cartridge) *Bus {
	return &Bus{RAM: ram, InputValue: input, PPU: p, APU: a, Cart: cart}
}

// Read decodes addr and returns the byte found there. instructionCount and
// pc are threaded through for the PPU's tight-loop heuristic and for
// fault reporting respectively.
func (b *Bus) Read(addr uint16, instructionCount uint64, pc uint16) (byte, error) {
	switch {
	case addr <= ramEnd:
		return b.RAM[addr&0x07FF], nil

	case addr >= ppuRegStart && addr <= ppuRegEnd:
		reg := ppu.Register(addr & 0x7)
		v, err := b.PPU.ReadRegister(reg, instructionCount)
		if err != nil {
			return 0, annotate(err, addr, pc)
		}
		return v, nil

	case addr >= apuRegStart && addr <= apuRegEnd:
		return 0, errs.New(errs.UnimplementedFeature, "APU register read at 0x%04X", addr)

	case addr == oamDMA:
		return 0, errs.New(errs.UnimplementedFeature, "OAM DMA register is write-only")

	case addr == apuStatus:
		return b.APU.ReadStatus(), nil

	case addr == controller1:
		v := *b.InputValue & 1
		*b.InputValue >>= 1
		return v, nil

	case addr == controller2:
		return 0, nil

	case addr >= prgStart:
		return b.Cart.ReadPRG(int(addr - prgStart)), nil

	default:
		return 0, errs.NewAccess(addr, pc, "read from unmapped address")
	}
}

// Write decodes addr and stores v there.
func (b *Bus) Write(addr uint16, v byte, instructionCount uint64, pc uint16) error {
	switch {
	case addr <= ramEnd:
		b.RAM[addr&0x07FF] = v
		return nil

	case addr >= ppuRegStart && addr <= ppuRegEnd:
		reg := ppu.Register(addr & 0x7)
		if err := b.PPU.WriteRegister(reg, v); err != nil {
			return annotate(err, addr, pc)
		}
		return nil

	case addr >= apuRegStart && addr <= apuRegEnd:
		return annotate(b.APU.WriteRegister(addr, v), addr, pc)

	case addr == oamDMA:
		return b.oamDMA(v, instructionCount, pc)

	case addr == apuStatus:
		return annotate(b.APU.WriteRegister(addr, v), addr, pc)

	case addr == controller1:
		return nil // strobe write; not modeled beyond set_input

	case addr == controller2:
		return annotate(b.APU.WriteRegister(addr, v), addr, pc)

	case addr >= prgStart:
		return nil // PRG-ROM is read-only

	default:
		return errs.NewAccess(addr, pc, "write to unmapped address")
	}
}

// oamDMA copies the 256-byte RAM page starting at page*0x100 into OAM.
func (b *Bus) oamDMA(page byte, instructionCount uint64, pc uint16) error {
	var data [256]byte
	base := uint16(page) << 8
	for i := range data {
		v, err := b.Read(base+uint16(i), instructionCount, pc)
		if err != nil {
			return err
		}
		data[i] = v
	}
	b.PPU.DMAWriteOAM(data)
	return nil
}

func annotate(err error, addr uint16, pc uint16) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*errs.Error); ok && e.Kind == errs.InvalidAccess && e.Addr == 0 && e.PC == 0 {
		e.Addr, e.PC = addr, pc
	}
	return err
}
