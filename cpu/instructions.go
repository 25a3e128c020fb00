package cpu

// all function signatures were automatically generated from
// https://www.nesdev.org/obelisk-6502-guide/reference.html

import (
	"nesgo/errs"
	"nesgo/mask"
)

// Instructions are grouped the way http://www.6502.org/tutorials/6502opcodes.html
// groups them: load/store, arithmetic, increment/decrement, shift/rotate,
// logic, compare, branch, jump, stack, flags, system.

// ---- load / store ----

func (c *Cpu) LDA() error {
	c.Accumulator = c.M
	c.setZeroN(c.Accumulator)
	return nil
}

func (c *Cpu) LDX() error {
	c.X = c.M
	c.setZeroN(c.X)
	return nil
}

func (c *Cpu) LDY() error {
	c.Y = c.M
	c.setZeroN(c.Y)
	return nil
}

func (c *Cpu) STA() error { return c.writeM(c.Accumulator) }
func (c *Cpu) STX() error { return c.writeM(c.X) }
func (c *Cpu) STY() error { return c.writeM(c.Y) }

// ---- arithmetic ----

func (c *Cpu) ADC() error {
	var carryIn uint16
	if c.Flags.Carry {
		carryIn = 1
	}
	sum := uint16(c.Accumulator) + uint16(c.M) + carryIn
	result := byte(sum)

	c.Flags.Carry = sum > 0xFF
	c.Flags.Overflow = (c.Accumulator^result)&(c.M^result)&0x80 != 0

	c.Accumulator = result
	c.setZeroN(c.Accumulator)
	return nil
}

// SBC is ADC with the operand's bits inverted, which is how the 6502's
// ALU actually implements subtraction.
func (c *Cpu) SBC() error {
	inverted := c.M ^ 0xFF
	var carryIn uint16
	if c.Flags.Carry {
		carryIn = 1
	}
	sum := uint16(c.Accumulator) + uint16(inverted) + carryIn
	result := byte(sum)

	c.Flags.Carry = sum > 0xFF
	c.Flags.Overflow = (c.Accumulator^result)&(inverted^result)&0x80 != 0

	c.Accumulator = result
	c.setZeroN(c.Accumulator)
	return nil
}

func (c *Cpu) CMP() error {
	c.Flags.Carry = c.Accumulator >= c.M
	c.Flags.Zero = c.Accumulator == c.M
	c.Flags.Negative = (c.Accumulator-c.M)&0x80 != 0
	return nil
}

func (c *Cpu) CPX() error {
	c.Flags.Carry = c.X >= c.M
	c.Flags.Zero = c.X == c.M
	c.Flags.Negative = (c.X-c.M)&0x80 != 0
	return nil
}

func (c *Cpu) CPY() error {
	c.Flags.Carry = c.Y >= c.M
	c.Flags.Zero = c.Y == c.M
	c.Flags.Negative = (c.Y-c.M)&0x80 != 0
	return nil
}

// ---- increment / decrement ----

func (c *Cpu) INC() error {
	result := c.M + 1
	c.setZeroN(result)
	return c.writeM(result)
}

func (c *Cpu) DEC() error {
	result := c.M - 1
	c.setZeroN(result)
	return c.writeM(result)
}

func (c *Cpu) INX() error { c.X++; c.setZeroN(c.X); return nil }
func (c *Cpu) DEX() error { c.X--; c.setZeroN(c.X); return nil }
func (c *Cpu) INY() error { c.Y++; c.setZeroN(c.Y); return nil }
func (c *Cpu) DEY() error { c.Y--; c.setZeroN(c.Y); return nil }

func (c *Cpu) TAX() error { c.X = c.Accumulator; c.setZeroN(c.X); return nil }
func (c *Cpu) TXA() error { c.Accumulator = c.X; c.setZeroN(c.Accumulator); return nil }
func (c *Cpu) TAY() error { c.Y = c.Accumulator; c.setZeroN(c.Y); return nil }
func (c *Cpu) TYA() error { c.Accumulator = c.Y; c.setZeroN(c.Accumulator); return nil }

// ---- shift / rotate ----

func (c *Cpu) ASL() error {
	c.Flags.Carry = c.M&0x80 != 0
	result := c.M << 1
	c.setZeroN(result)
	return c.writeM(result)
}

func (c *Cpu) LSR() error {
	c.Flags.Carry = c.M&0x01 != 0
	result := c.M >> 1
	c.setZeroN(result)
	return c.writeM(result)
}

func (c *Cpu) ROL() error {
	oldCarry := c.Flags.Carry
	c.Flags.Carry = c.M&0x80 != 0
	result := c.M << 1
	if oldCarry {
		result |= 0x01
	}
	c.setZeroN(result)
	return c.writeM(result)
}

func (c *Cpu) ROR() error {
	oldCarry := c.Flags.Carry
	c.Flags.Carry = c.M&0x01 != 0
	result := c.M >> 1
	if oldCarry {
		result |= 0x80
	}
	c.setZeroN(result)
	return c.writeM(result)
}

// ---- logic ----

func (c *Cpu) AND() error {
	c.Accumulator &= c.M
	c.setZeroN(c.Accumulator)
	return nil
}

func (c *Cpu) ORA() error {
	c.Accumulator |= c.M
	c.setZeroN(c.Accumulator)
	return nil
}

func (c *Cpu) EOR() error {
	c.Accumulator ^= c.M
	c.setZeroN(c.Accumulator)
	return nil
}

func (c *Cpu) BIT() error {
	c.Flags.Zero = c.M&c.Accumulator == 0
	c.Flags.Overflow = c.M&0x40 != 0
	c.Flags.Negative = c.M&0x80 != 0
	return nil
}

// ---- branch ----
// decode's Relative case already resolved AbsAddress to the branch
// target; these only decide whether to take it.

func (c *Cpu) BPL() error {
	if !c.Flags.Negative {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BMI() error {
	if c.Flags.Negative {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BVC() error {
	if !c.Flags.Overflow {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BVS() error {
	if c.Flags.Overflow {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BCC() error {
	if !c.Flags.Carry {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BCS() error {
	if c.Flags.Carry {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BNE() error {
	if !c.Flags.Zero {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

func (c *Cpu) BEQ() error {
	if c.Flags.Zero {
		c.ProgramCounter = c.AbsAddress
	}
	return nil
}

// ---- jump ----

// JMP takes the jump unconditionally. Landing back on the instruction's
// own address is the "wait for vblank" idiom, signaled as InfiniteLoop
// for RunBurst to recognize and recover from; it is never an error the
// rest of the console sees.
func (c *Cpu) JMP() error {
	c.ProgramCounter = c.AbsAddress
	if c.AbsAddress == c.instrPC {
		return errs.InfiniteLoopErr
	}
	return nil
}

// JSR pushes the address of the last byte of the JSR instruction
// (ProgramCounter, already advanced past it, minus one), high byte
// first, then jumps.
func (c *Cpu) JSR() error {
	ret := c.ProgramCounter - 1
	if err := c.push(byte(ret >> 8)); err != nil {
		return err
	}
	if err := c.push(byte(ret)); err != nil {
		return err
	}
	c.ProgramCounter = c.AbsAddress
	return nil
}

// RTS pulls low then high, the inverse push order of JSR, and adds one
// to land just past the original call site.
func (c *Cpu) RTS() error {
	lo, err := c.pop()
	if err != nil {
		return err
	}
	hi, err := c.pop()
	if err != nil {
		return err
	}
	c.ProgramCounter = mask.Word(hi, lo) + 1
	return nil
}

// ---- stack ----

func (c *Cpu) PHA() error { return c.push(c.Accumulator) }

func (c *Cpu) PLA() error {
	v, err := c.pop()
	if err != nil {
		return err
	}
	c.Accumulator = v
	c.setZeroN(c.Accumulator)
	return nil
}

// PHP pushes the status byte with the B flag set, the same convention
// BRK uses and the one that lets a handler tell the two apart.
func (c *Cpu) PHP() error { return c.push(c.flagsByte(true)) }

func (c *Cpu) PLP() error {
	v, err := c.pop()
	if err != nil {
		return err
	}
	c.setFlagsByte(v)
	return nil
}

// TXS and TSX move the stack register itself, not the byte it points
// to in memory.
func (c *Cpu) TXS() error { c.Stack = c.X; return nil }
func (c *Cpu) TSX() error { c.X = c.Stack; c.setZeroN(c.X); return nil }

// RTI restores flags, then the return address, low byte first (same
// order BRK/NMI push in, popped in reverse).
func (c *Cpu) RTI() error {
	flags, err := c.pop()
	if err != nil {
		return err
	}
	c.setFlagsByte(flags)

	lo, err := c.pop()
	if err != nil {
		return err
	}
	hi, err := c.pop()
	if err != nil {
		return err
	}
	c.ProgramCounter = mask.Word(hi, lo)
	return nil
}

// BRK is a 2-byte instruction: the byte after the opcode is a padding
// byte, skipped over by the return address BRK pushes. It pushes PC
// then flags (B set), same order as a real IRQ/NMI entry would, then
// vectors through 0xFFFE/0xFFFF — there being no separate IRQ vector
// modeled, BRK and IRQ share one here.
func (c *Cpu) BRK() error {
	c.ProgramCounter++

	if err := c.push(byte(c.ProgramCounter >> 8)); err != nil {
		return err
	}
	if err := c.push(byte(c.ProgramCounter)); err != nil {
		return err
	}
	if err := c.push(c.flagsByte(true)); err != nil {
		return err
	}
	c.Flags.InterruptDisable = true

	lo, err := c.read(0xFFFE)
	if err != nil {
		return err
	}
	hi, err := c.read(0xFFFF)
	if err != nil {
		return err
	}
	c.ProgramCounter = mask.Word(hi, lo)
	return nil
}

// ---- flags ----

func (c *Cpu) CLC() error { c.Flags.Carry = false; return nil }
func (c *Cpu) SEC() error { c.Flags.Carry = true; return nil }
func (c *Cpu) CLI() error { c.Flags.InterruptDisable = false; return nil }
func (c *Cpu) SEI() error { c.Flags.InterruptDisable = true; return nil }
func (c *Cpu) CLV() error { c.Flags.Overflow = false; return nil }
func (c *Cpu) CLD() error { c.Flags.Decimal = false; return nil }
func (c *Cpu) SED() error { c.Flags.Decimal = true; return nil }

// ---- system ----

func (c *Cpu) NOP() error { return nil }
