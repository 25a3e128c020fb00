// Package cpu implements the MOS Technology 6502 microprocessor as used
// in the NES (the 2A03, minus decimal mode).
//
// The interpreter is not cycle-accurate: instructions execute in a
// single step and advance a logical instruction_count clock instead of
// a cycle counter. A burst of execution ends only at a terminal
// instruction — RTI, or a JMP that targets itself — never after a
// fixed number of steps. See RunBurst.
package cpu

import (
	"errors"

	"nesgo/apu"
	"nesgo/bus"
	"nesgo/cartridge"
	"nesgo/errs"
	"nesgo/mask"
	"nesgo/ppu"
)

// https://www.nesdev.org/wiki/CPU#Frequencies
// https://www.nesdev.org/wiki/Cycle_reference_chart#Clock_rates

// Cpu has no memory of its own beyond its registers, work RAM, and the
// controller latch; everything else is reached through Bus. RAM and
// InputValue are exposed to the bus by pointer (see bus.New) rather than
// owned by it, which keeps bus from importing this package.
type Cpu struct {
	Bus *bus.Bus

	RAM        [2048]byte
	InputValue byte

	// Flags are the 8 bits of the 6502 status register (P).
	//
	// 7654 3210
	// NV1B DIZC
	Flags struct {
		Negative         bool // bit 7
		Overflow         bool // bit 6
		Unused           bool // bit 5; always read back as 1
		B                bool // bit 4; set only in the byte pushed by PHP/BRK
		Decimal          bool // bit 3; stored but inert, no decimal mode on the 2A03
		InterruptDisable bool // bit 2
		Zero             bool // bit 1
		Carry            bool // bit 0
	}

	Accumulator byte
	X           byte
	Y           byte

	// Stack addresses page 1 (0x0100-0x01FF) via this low byte.
	Stack byte

	ProgramCounter uint16

	// InstructionCount is a monotonic logical clock, fed to the PPU's
	// tight-loop sprite-zero-hit heuristic.
	InstructionCount uint64
	// Frame counts NMI entries.
	Frame uint64

	M          byte // operand byte fetched by decode, per the current AddressingMode
	AbsAddress uint16
	mode       AddressingMode

	instrPC uint16 // PC at the start of the instruction currently executing; used for fault reporting
}

// New builds a Cpu wired to a fresh bus over cart, p, and a.
func New(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU) *Cpu {
	c := &Cpu{}
	c.Bus = bus.New(&c.RAM, &c.InputValue, p, a, cart)
	return c
}

func (c *Cpu) read(addr uint16) (byte, error) {
	return c.Bus.Read(addr, c.InstructionCount, c.instrPC)
}

func (c *Cpu) write(addr uint16, v byte) error {
	return c.Bus.Write(addr, v, c.InstructionCount, c.instrPC)
}

func (c *Cpu) push(v byte) error {
	err := c.write(0x0100|uint16(c.Stack), v)
	c.Stack--
	return err
}

func (c *Cpu) pop() (byte, error) {
	c.Stack++
	return c.read(0x0100 | uint16(c.Stack))
}

func (c *Cpu) setZeroN(v byte) {
	c.Flags.Zero = v == 0
	c.Flags.Negative = v&0x80 != 0
}

// flagsByte packs Flags into the P register's byte encoding. breakFlag
// controls bit 4, which is only set in the byte a software push (PHP,
// BRK) writes to the stack — never by a hardware NMI/IRQ entry, of
// which this design only implements NMI, and that entry pushes no
// flags at all (see LoadNMIEntrypoint).
func (c *Cpu) flagsByte(breakFlag bool) byte {
	var f byte
	if c.Flags.Carry {
		f |= 1 << 0
	}
	if c.Flags.Zero {
		f |= 1 << 1
	}
	if c.Flags.InterruptDisable {
		f |= 1 << 2
	}
	if c.Flags.Decimal {
		f |= 1 << 3
	}
	if breakFlag {
		f |= 1 << 4
	}
	f |= 1 << 5
	if c.Flags.Overflow {
		f |= 1 << 6
	}
	if c.Flags.Negative {
		f |= 1 << 7
	}
	return f
}

func (c *Cpu) setFlagsByte(f byte) {
	c.Flags.Carry = f&(1<<0) != 0
	c.Flags.Zero = f&(1<<1) != 0
	c.Flags.InterruptDisable = f&(1<<2) != 0
	c.Flags.Decimal = f&(1<<3) != 0
	c.Flags.B = f&(1<<4) != 0
	c.Flags.Unused = true
	c.Flags.Overflow = f&(1<<6) != 0
	c.Flags.Negative = f&(1<<7) != 0
}

// writeM stores v as the result of the current instruction: to the
// accumulator in Accumulator mode, otherwise back to the operand
// address decode resolved. Read-modify-write instructions (ASL, LSR,
// ROL, ROR, INC, DEC) and the stores (STA, STX, STY) both go through
// this. For the stores, decode resolves the address without reading it
// first (see step).
func (c *Cpu) writeM(v byte) error {
	c.M = v
	if c.mode == Accumulator {
		c.Accumulator = v
		return nil
	}
	return c.write(c.AbsAddress, v)
}

// An AddressingMode tells the Cpu where to find the operand for the
// current instruction.
type AddressingMode int

// https://www.nesdev.org/wiki/CPU_addressing_modes

const (
	Implied     AddressingMode = iota // no operand
	Accumulator                       // operand is the accumulator itself

	Immediate // operand is the next byte, used as a literal
	ZeroPage
	ZeroPageX
	ZeroPageY
	IndirectX
	IndirectY
	Relative

	Absolute
	AbsoluteX
	AbsoluteY

	Indirect // JMP only
)

func fetch(b byte) (Opcode, error) {
	op, ok := Opcodes[b]
	if !ok {
		return Opcode{}, errs.New(errs.InvalidAccess, "unrecognized opcode 0x%02X", b)
	}
	return op, nil
}

// decode resolves the operand for addressing mode a, advancing
// ProgramCounter by however many operand bytes the mode consumes and
// leaving the result in c.M (and c.AbsAddress, for modes that have one).
// With readOperand false, only c.AbsAddress is resolved and nothing is
// read from it.
func (c *Cpu) decode(a AddressingMode, readOperand bool) error {
	c.mode = a

	switch a {
	case Implied:
		return nil

	case Accumulator:
		c.M = c.Accumulator
		return nil

	case Immediate:
		c.AbsAddress = c.ProgramCounter
		c.ProgramCounter++

	case ZeroPage:
		b, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = uint16(b)

	case ZeroPageX:
		b, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = uint16(b+c.X) & 0x00FF

	case ZeroPageY:
		b, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = uint16(b+c.Y) & 0x00FF

	case Relative:
		rel, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = c.ProgramCounter + uint16(rel)
		if rel&0x80 != 0 {
			c.AbsAddress -= 0x0100
		}
		return nil // the target is a jump address, not something to read

	case Absolute:
		lo, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		hi, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = mask.Word(hi, lo)

	case AbsoluteX:
		lo, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		hi, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = mask.Word(hi, lo) + uint16(c.X)

	case AbsoluteY:
		lo, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		hi, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		c.AbsAddress = mask.Word(hi, lo) + uint16(c.Y)

	case IndirectX:
		ptr, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		lo, err := c.read(uint16(ptr+c.X) & 0x00FF)
		if err != nil {
			return err
		}
		hi, err := c.read(uint16(ptr+1+c.X) & 0x00FF)
		if err != nil {
			return err
		}
		c.AbsAddress = mask.Word(hi, lo)

	case IndirectY:
		ptr, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		lo, err := c.read(uint16(ptr) & 0x00FF)
		if err != nil {
			return err
		}
		hi, err := c.read(uint16(ptr+1) & 0x00FF)
		if err != nil {
			return err
		}
		c.AbsAddress = mask.Word(hi, lo) + uint16(c.Y)

	case Indirect:
		// JMP's indirect mode reads a pointer, then the address it
		// points to. The famous page-wrap bug: if the pointer's low
		// byte is 0xFF, the high byte of the target is fetched from
		// the start of the same page instead of the next one.
		ptrLo, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		ptrHi, err := c.read(c.ProgramCounter)
		if err != nil {
			return err
		}
		c.ProgramCounter++
		ptr := mask.Word(ptrHi, ptrLo)

		targetLo, err := c.read(ptr)
		if err != nil {
			return err
		}
		var targetHi byte
		if ptrLo == 0xFF {
			targetHi, err = c.read(ptr & 0xFF00)
		} else {
			targetHi, err = c.read(ptr + 1)
		}
		if err != nil {
			return err
		}
		c.AbsAddress = mask.Word(targetHi, targetLo)
		return nil
	}

	if !readOperand {
		return nil
	}
	v, err := c.read(c.AbsAddress)
	if err != nil {
		return err
	}
	c.M = v
	return nil
}

// step executes exactly one instruction and reports whether it was a
// burst terminator: RTI, or a JMP that lands back on its own address
// (recovered from the InfiniteLoop signal, never surfaced as an error).
func (c *Cpu) step() (terminal bool, err error) {
	start := c.ProgramCounter
	c.instrPC = start

	opByte, err := c.read(c.ProgramCounter)
	if err != nil {
		return false, err
	}
	op, err := fetch(opByte)
	if err != nil {
		return false, err
	}
	c.ProgramCounter++

	// Stores only need the target address: reading it first would hit
	// write-only registers (PPUADDR, OAM DMA, the APU ports) and fail.
	readOperand := op.Name != "STA" && op.Name != "STX" && op.Name != "STY"
	if err := c.decode(op.AddressingMode, readOperand); err != nil {
		return false, err
	}
	if err := op.Instruction(c); err != nil {
		if errors.Is(err, errs.InfiniteLoop) {
			return true, nil
		}
		return false, err
	}
	c.InstructionCount++

	return opByte == 0x40, nil // RTI
}

// Step executes exactly one instruction. It is used by the interactive
// debugger; RunBurst is what the console driver calls.
func (c *Cpu) Step() (terminal bool, err error) {
	return c.step()
}

// RunBurst executes instructions starting at ProgramCounter until a
// terminal instruction ends the burst: RTI (normal exit, typically the
// end of an NMI handler) or a JMP targeting its own address (the tight
// infinite-loop idiom games use to wait for the next vblank). Neither
// condition is an error; both simply end the burst.
func (c *Cpu) RunBurst() error {
	for {
		terminal, err := c.step()
		if err != nil {
			return err
		}
		if terminal {
			return nil
		}
	}
}

// LoadNMIEntrypoint begins an NMI: PC loads from the NMI vector and
// Frame advances. Unlike a real 6502, no flags or return address are
// pushed here — the handler is responsible for its own prologue, and
// RTI (pushed/popped by the handler itself) ends the resulting burst.
func (c *Cpu) LoadNMIEntrypoint() error {
	lo, err := c.read(0xFFFA)
	if err != nil {
		return err
	}
	hi, err := c.read(0xFFFB)
	if err != nil {
		return err
	}
	c.ProgramCounter = mask.Word(hi, lo)
	c.Frame++
	return nil
}

// LoadRSTEntrypoint begins power-on: PC loads from the reset vector.
// The burst that follows is expected to run until the first
// infinite-loop idiom, i.e. the startup code waiting for its first
// vblank.
func (c *Cpu) LoadRSTEntrypoint() error {
	c.Accumulator = 0
	c.X = 0
	c.Y = 0
	c.Stack = 0xFD
	c.Flags = struct {
		Negative         bool
		Overflow         bool
		Unused           bool
		B                bool
		Decimal          bool
		InterruptDisable bool
		Zero             bool
		Carry            bool
	}{Unused: true}

	lo, err := c.read(0xFFFC)
	if err != nil {
		return err
	}
	hi, err := c.read(0xFFFD)
	if err != nil {
		return err
	}
	c.ProgramCounter = mask.Word(hi, lo)
	return nil
}
