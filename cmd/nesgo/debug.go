package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"nesgo/console"
	"nesgo/cpu"
)

// debugModel is the running emulator's secondary view: a single-step
// memory inspector over the live CPU, the same page-table-plus-flags
// layout the teacher's standalone CPU debugger used, now reading
// through the console's already-wired bus instead of a bare cartridge.
type debugModel struct {
	cpu *cpu.Cpu

	prevPC      uint16
	breakpoints map[uint16]bool
	err         error
	exit        bool
}

func newDebugModel(c *console.Console) debugModel {
	return debugModel{
		cpu:         c.Cpu,
		breakpoints: map[uint16]bool{},
	}
}

func (m debugModel) Init() tea.Cmd { return nil }

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "x":
		m.exit = true
		return m, nil

	case " ", "j":
		m.step()

	case "b":
		m.breakpoints[m.cpu.ProgramCounter] = !m.breakpoints[m.cpu.ProgramCounter]

	case "c":
		for {
			if !m.step() {
				break
			}
			if m.breakpoints[m.cpu.ProgramCounter] {
				break
			}
		}
	}

	return m, nil
}

// step advances one instruction and reports whether it is safe to keep
// going (no fault, burst not yet terminal).
func (m *debugModel) step() bool {
	m.prevPC = m.cpu.ProgramCounter
	terminal, err := m.cpu.Step()
	if err != nil {
		m.err = err
		return false
	}
	return !terminal
}

func (m debugModel) peek(addr uint16) byte {
	v, err := m.cpu.Bus.Read(addr, m.cpu.InstructionCount, m.cpu.ProgramCounter)
	if err != nil {
		return 0
	}
	return v
}

func (m debugModel) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		b := m.peek(start + i)
		switch {
		case start+i == m.cpu.ProgramCounter:
			s += fmt.Sprintf("[%02x] ", b)
		case m.breakpoints[start+i]:
			s += fmt.Sprintf("*%02x* ", b)
		default:
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m debugModel) status() string {
	var flags string
	for _, flag := range []bool{
		m.cpu.Flags.Negative,
		m.cpu.Flags.Overflow,
		m.cpu.Flags.Unused,
		m.cpu.Flags.B,
		m.cpu.Flags.Decimal,
		m.cpu.Flags.InterruptDisable,
		m.cpu.Flags.Zero,
		m.cpu.Flags.Carry,
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	errLine := ""
	if m.err != nil {
		errLine = fmt.Sprintf("\nerr: %v", m.err)
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
 A: %02x  X: %02x  Y: %02x
 frame: %d  instr: %d
N V _ B D I Z C
%s%s`,
		m.cpu.ProgramCounter, m.prevPC,
		m.cpu.Accumulator, m.cpu.X, m.cpu.Y,
		m.cpu.Frame, m.cpu.InstructionCount,
		flags, errLine,
	)
}

func (m debugModel) pageTable() string {
	base := m.cpu.ProgramCounter &^ 0x0F
	pages := []string{"page | " + strings.Repeat("  _  ", 16)}
	for i := -2; i <= 7; i++ {
		pages = append(pages, m.renderPage(base+uint16(i*16)))
	}
	return strings.Join(pages, "\n")
}

func (m debugModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(cpu.Opcodes[m.peek(m.cpu.ProgramCounter)]),
		"(space/j) step  (b) breakpoint  (c) continue  (esc) back",
	)
}
