// Package console wires the cartridge, CPU, PPU and APU into the
// single top-level driver a host calls once per 60 Hz interval:
// AdvanceOneFrame. It also owns snapshotting (see snapshot.go) and a
// go-spew-backed state dump used for manual inspection (see debug.go).
package console

import (
	"nesgo/apu"
	"nesgo/cartridge"
	"nesgo/cpu"
	"nesgo/ppu"
)

// Video/timing constants a host needs to drive the console and size its
// buffers. TicksInFrame here is the CPU/PPU/APU console-level tick
// budget (distinct from apu.TicksInFrame, the per-frame sample count).
const (
	Width  = 256
	Height = 224
	FPS    = 60

	TicksInFrame = 29780
)

// Button is one bit of the controller's 8-bit input latch.
type Button byte

const (
	A Button = 1 << iota
	B
	Select
	Start
	Up
	Down
	Left
	Right
)

// Console is the assembled emulator: a cartridge and the CPU that drives
// it (which in turn owns the bus wiring the PPU and APU).
type Console struct {
	Cart *cartridge.Cartridge
	Cpu  *cpu.Cpu
}

// New loads cart, wires a fresh CPU/PPU/APU over it, and runs the
// power-on reset burst to completion (the startup code waiting for its
// first vblank).
func New(cart *cartridge.Cartridge) (*Console, error) {
	p := ppu.New(cart)
	a := apu.New()
	c := cpu.New(cart, p, a)

	if err := c.LoadRSTEntrypoint(); err != nil {
		return nil, err
	}
	if err := c.RunBurst(); err != nil {
		return nil, err
	}

	return &Console{Cart: cart, Cpu: c}, nil
}

// SetInput latches the given button set as the controller-1 byte the
// CPU's next 0x4016 reads will shift out, LSB first.
func (c *Console) SetInput(buttons Button) {
	c.Cpu.InputValue = byte(buttons)
}

// AdvanceOneFrame runs one NMI-driven CPU burst, then renders a video
// frame and synthesizes an audio buffer from the resulting PPU/APU
// state. video must have length Width*Height; audio must have length
// apu.TicksInFrame. The returned tick count mirrors the reference
// console interface's fixed per-frame budget.
//
// Unlike the reference interface (whose host never saw a failure path),
// this returns an error instead of silently reporting success: every
// fatal condition in this console is typed (see errs) and a host that
// wants the original fire-and-forget behavior can discard it.
func (c *Console) AdvanceOneFrame(video []uint32, audio []int16) (int, error) {
	c.Cpu.Bus.PPU.NewVblank()

	if err := c.Cpu.LoadNMIEntrypoint(); err != nil {
		return 0, err
	}
	if err := c.Cpu.RunBurst(); err != nil {
		return 0, err
	}
	if err := c.Cpu.Bus.PPU.Render(video); err != nil {
		return 0, err
	}
	c.Cpu.Bus.APU.Generate(audio)

	return TicksInFrame, nil
}
