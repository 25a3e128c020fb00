package console

import (
	"nesgo/apu"
	"nesgo/ppu"
)

// CPUFlags mirrors cpu.Cpu's status flags for serialization.
type CPUFlags struct {
	Negative         bool
	Overflow         bool
	Unused           bool
	B                bool
	Decimal          bool
	InterruptDisable bool
	Zero             bool
	Carry            bool
}

// CPUState is the serializable subset of cpu.Cpu. The addressing-mode
// and fault-reporting scratch fields (mode, instrPC) are intentionally
// excluded: both are recomputed from ProgramCounter at the start of the
// very next instruction, so there is nothing to preserve.
type CPUState struct {
	RAM        [2048]byte
	InputValue byte

	Flags CPUFlags

	Accumulator byte
	X           byte
	Y           byte
	Stack       byte

	ProgramCounter   uint16
	InstructionCount uint64
	Frame            uint64
}

// State is the full serializable snapshot of a Console: CPU, PPU and
// APU state, with the cartridge reference deliberately absent (it is
// never serialized and must be re-attached by the host after Load).
type State struct {
	CPU CPUState
	PPU ppu.State
	APU apu.State
}

func (c *Console) exportState() State {
	cpu := c.Cpu
	return State{
		CPU: CPUState{
			RAM:        cpu.RAM,
			InputValue: cpu.InputValue,
			Flags: CPUFlags{
				Negative:         cpu.Flags.Negative,
				Overflow:         cpu.Flags.Overflow,
				Unused:           cpu.Flags.Unused,
				B:                cpu.Flags.B,
				Decimal:          cpu.Flags.Decimal,
				InterruptDisable: cpu.Flags.InterruptDisable,
				Zero:             cpu.Flags.Zero,
				Carry:            cpu.Flags.Carry,
			},
			Accumulator:      cpu.Accumulator,
			X:                cpu.X,
			Y:                cpu.Y,
			Stack:            cpu.Stack,
			ProgramCounter:   cpu.ProgramCounter,
			InstructionCount: cpu.InstructionCount,
			Frame:            cpu.Frame,
		},
		PPU: cpu.Bus.PPU.ExportState(),
		APU: cpu.Bus.APU.ExportState(),
	}
}

func (c *Console) importState(s State) {
	cpu := c.Cpu
	cpu.RAM = s.CPU.RAM
	cpu.InputValue = s.CPU.InputValue
	cpu.Flags.Negative = s.CPU.Flags.Negative
	cpu.Flags.Overflow = s.CPU.Flags.Overflow
	cpu.Flags.Unused = s.CPU.Flags.Unused
	cpu.Flags.B = s.CPU.Flags.B
	cpu.Flags.Decimal = s.CPU.Flags.Decimal
	cpu.Flags.InterruptDisable = s.CPU.Flags.InterruptDisable
	cpu.Flags.Zero = s.CPU.Flags.Zero
	cpu.Flags.Carry = s.CPU.Flags.Carry
	cpu.Accumulator = s.CPU.Accumulator
	cpu.X = s.CPU.X
	cpu.Y = s.CPU.Y
	cpu.Stack = s.CPU.Stack
	cpu.ProgramCounter = s.CPU.ProgramCounter
	cpu.InstructionCount = s.CPU.InstructionCount
	cpu.Frame = s.CPU.Frame

	cpu.Bus.PPU.ImportState(s.PPU)
	cpu.Bus.APU.ImportState(s.APU)
}
