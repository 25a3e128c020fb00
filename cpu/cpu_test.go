package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nesgo/apu"
	"nesgo/cartridge"
	"nesgo/ppu"
)

// newTestCpu builds a Cpu over a 32 KiB NROM cart so CPU addresses
// 0x8000-0xFFFF map 1:1 onto cart.PRG, with no bank mirroring to
// account for when hand-assembling test programs.
func newTestCpu(t *testing.T, prg []byte) *Cpu {
	t.Helper()
	cart := &cartridge.Cartridge{
		PRG: make([]byte, 0x8000),
		CHR: make([]byte, 0x2000),
	}
	copy(cart.PRG, prg)

	c := New(cart, ppu.New(cart), apu.New())
	require.NoError(t, c.LoadRSTEntrypoint())
	return c
}

// setResetVector points the reset vector (0xFFFC/0xFFFD) at addr, the
// conventional NROM load address test programs are assembled at.
func setResetVector(prg []byte, addr uint16) {
	prg[0x7FFC] = byte(addr)
	prg[0x7FFD] = byte(addr >> 8)
}

// TestRunBurstMultiplyByRepeatedAddition assembles a tiny loop that
// computes 10*3 by repeated addition, storing the result to zero page
// 0x10, then ends the burst by jumping to itself — the idiom games use
// to sit still until the next vblank.
func TestRunBurstMultiplyByRepeatedAddition(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	copy(prg, []byte{
		0xA2, 0x0A, // LDX #$0A
		0xA9, 0x00, // LDA #$00
		0x18,       // loop: CLC
		0x69, 0x03, // ADC #$03
		0xCA,       // DEX
		0xD0, 0xFA, // BNE loop (-6)
		0x85, 0x10, // STA $10
		0x4C, 0x0C, 0x80, // JMP $800C (self)
	})

	c := newTestCpu(t, prg)
	require.NoError(t, c.RunBurst())

	assert.EqualValues(t, 30, c.RAM[0x10])
	assert.EqualValues(t, 0x800C, c.ProgramCounter)
}

// TestRunBurstJSRAndRTSRoundTrip exercises a subroutine call and
// return: JSR must push the call site so RTS lands on the instruction
// right after it, not the instruction itself.
func TestRunBurstJSRAndRTSRoundTrip(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	copy(prg, []byte{
		0x20, 0x08, 0x80, // 0x8000: JSR $8008
		0x85, 0x20, // 0x8003: STA $20
		0x4C, 0x05, 0x80, // 0x8005: JMP $8005 (self)
	})
	copy(prg[0x0008:], []byte{
		0xA9, 0x2A, // 0x8008: LDA #$2A
		0x60, // 0x800A: RTS
	})

	c := newTestCpu(t, prg)
	require.NoError(t, c.RunBurst())

	assert.EqualValues(t, 0x2A, c.RAM[0x20])
	assert.EqualValues(t, 0x8005, c.ProgramCounter)
}

func TestLoadNMIEntrypointDoesNotPushAnythingAndAdvancesFrame(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	prg[0x7FFA] = 0x00 // NMI vector low
	prg[0x7FFB] = 0x81 // NMI vector high -> 0x8100
	prg[0x0100] = 0x40 // 0x8100: RTI

	c := newTestCpu(t, prg)
	stackBefore := c.Stack

	require.NoError(t, c.LoadNMIEntrypoint())
	assert.EqualValues(t, 0x8100, c.ProgramCounter)
	assert.EqualValues(t, 1, c.Frame)
	assert.Equal(t, stackBefore, c.Stack, "NMI entry must not push flags or a return address")

	require.NoError(t, c.RunBurst())
}

func TestADCSetsCarryAndOverflowOnSignedWrap(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	copy(prg, []byte{
		0xA9, 0x7F, // LDA #$7F
		0x18,       // CLC
		0x69, 0x01, // ADC #$01 -- 127+1 overflows into negative
		0x4C, 0x05, 0x80, // JMP $8005 (self)
	})

	c := newTestCpu(t, prg)
	require.NoError(t, c.RunBurst())

	assert.EqualValues(t, 0x80, c.Accumulator)
	assert.True(t, c.Flags.Overflow)
	assert.True(t, c.Flags.Negative)
	assert.False(t, c.Flags.Carry)
}

func TestASLShiftsByOneBit(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	copy(prg, []byte{
		0xA9, 0x01, // LDA #$01
		0x0A,             // ASL A
		0x4C, 0x03, 0x80, // JMP $8003 (self)
	})

	c := newTestCpu(t, prg)
	require.NoError(t, c.RunBurst())

	assert.EqualValues(t, 0x02, c.Accumulator)
}

func TestStackTransfersMoveStackRegisterNotMemory(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	copy(prg, []byte{
		0xA2, 0x42, // LDX #$42
		0x9A,             // TXS
		0xBA,             // TSX
		0x4C, 0x04, 0x80, // JMP $8004 (self)
	})

	c := newTestCpu(t, prg)
	require.NoError(t, c.RunBurst())

	assert.EqualValues(t, 0x42, c.Stack)
	assert.EqualValues(t, 0x42, c.X)
}

func TestPushPullMovesStackPointer(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	copy(prg, []byte{
		0xA9, 0x11, // LDA #$11
		0x48,       // PHA
		0xA9, 0x22, // LDA #$22
		0x68,             // PLA
		0x4C, 0x06, 0x80, // JMP $8006 (self)
	})

	c := newTestCpu(t, prg)
	stackBefore := c.Stack
	require.NoError(t, c.RunBurst())

	assert.EqualValues(t, 0x11, c.Accumulator)
	assert.Equal(t, stackBefore, c.Stack, "one push followed by one pull must leave the stack pointer unchanged")
}

func TestInvalidOpcodeReturnsError(t *testing.T) {
	prg := make([]byte, 0x8000)
	setResetVector(prg, 0x8000)
	prg[0] = 0xFF // not a recognized opcode

	c := newTestCpu(t, prg)
	err := c.RunBurst()
	assert.Error(t, err)
}
