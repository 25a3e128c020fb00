package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

type model struct {
	cpu     *Cpu
	program []byte

	offset uint16 // only for drawing pageTable
	prevPC uint16
	error  error
}

// Init loads the program into PRG-ROM at offset (which must lie in the
// cartridge's 0x8000-0xFFFF window; work RAM is not addressable this
// way, same as on real hardware) and parks the program counter there.
func (m model) Init() tea.Cmd {
	if m.offset >= 0x8000 && m.cpu.Bus.Cart != nil {
		copy(m.cpu.Bus.Cart.PRG[m.offset-0x8000:], m.program)
	}
	m.cpu.ProgramCounter = m.offset
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		s := msg.String()
		switch s {
		case "q":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.cpu.ProgramCounter
			_, err := m.cpu.Step()
			if err != nil {
				m.error = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) peek(addr uint16) byte {
	v, err := m.cpu.Bus.Read(addr, m.cpu.InstructionCount, m.cpu.ProgramCounter)
	if err != nil {
		return 0
	}
	return v
}

// renderPage renders a single page as a line. The current PC is highlighted.
func (m model) renderPage(start uint16) string {
	if start%16 != 0 {
		panic("start must be a multiple of 16")
	}
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		b := m.peek(start + i)
		if start+i == m.cpu.ProgramCounter {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
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
	return fmt.Sprintf(`
PC: %x (%x)
 M: %x
 A: %x
 X: %x
 Y: %x
N V _ B D I Z C
`,
		m.cpu.ProgramCounter,
		m.prevPC,
		m.cpu.M,
		m.cpu.Accumulator,
		m.cpu.X,
		m.cpu.Y,
	) + flags
}

func (m model) pageTable() string {
	header := "page | "
	for b := range 16 {
		header += fmt.Sprintf("  %01x  ", b)
	}

	pages := []string{header}

	offsets := []int{
		0, 16, 32, 48, 64,
		int(m.offset),
		int(m.offset + 16*1),
		int(m.offset + 16*2),
		int(m.offset + 16*3),
		int(m.offset + 16*4),
	}
	for _, i := range offsets {
		pages = append(pages, m.renderPage(uint16(i)))
	}
	return strings.Join(pages, "\n")
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(Opcodes[m.peek(m.cpu.ProgramCounter)]),
	)
}

// Debug loads the program into the cartridge at the given offset, then
// starts an interactive single-step TUI.
func (c *Cpu) Debug(program []byte, offset uint16) {
	m, err := tea.NewProgram(model{
		cpu:     c,
		program: program,
		offset:  offset,
	}).Run()
	if err != nil {
		panic(err)
	}
	x := m.(model)
	if x.error != nil {
		fmt.Println("Error:", x.error)
	}
}
