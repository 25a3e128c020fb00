package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nesgo/apu"
	"nesgo/console"
)

// frameMsg ticks the emulator forward by exactly one video frame.
type frameMsg time.Time

func tickFrame() tea.Cmd {
	return tea.Tick(time.Second/console.FPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// terminalModel is the interactive host: it owns a running console,
// advances it one frame per tick, and renders the resulting video
// buffer as a half-block Unicode grid. Pressing "d" freezes the
// console and switches to the single-step debugger view inherited from
// the CPU package's memory inspector.
type terminalModel struct {
	console *console.Console

	video []uint32
	audio []int16

	debugging bool
	dbg       debugModel

	err error
}

func newTerminalModel(c *console.Console) terminalModel {
	return terminalModel{
		console: c,
		video:   make([]uint32, console.Width*console.Height),
		audio:   make([]int16, apu.TicksInFrame),
		dbg:     newDebugModel(c),
	}
}

func runTerminal(c *console.Console) error {
	m, err := tea.NewProgram(newTerminalModel(c)).Run()
	if err != nil {
		return err
	}
	if x, ok := m.(terminalModel); ok && x.err != nil {
		return x.err
	}
	return nil
}

func (m terminalModel) Init() tea.Cmd {
	return tickFrame()
}

func (m terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.debugging {
		next, cmd := m.dbg.Update(msg)
		m.dbg = next.(debugModel)
		if m.dbg.exit {
			m.debugging = false
			return m, tickFrame()
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "d":
			m.debugging = true
			m.dbg.exit = false
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9", "0":
			slot := int(msg.String()[0] - '0')
			if err := m.console.SaveState(saveDir, slot); err != nil {
				m.err = err
			}
			return m, tickFrame()
		}

	case frameMsg:
		if _, err := m.console.AdvanceOneFrame(m.video, m.audio); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, tickFrame()
	}

	return m, nil
}

// downsample folds the 256x224 frame buffer into a half-block grid:
// each terminal cell carries a foreground color (top pixel) and
// background color (bottom pixel) via a "▀" glyph, halving the
// vertical resolution needed in a text cell.
func (m terminalModel) downsample() string {
	var b strings.Builder
	for row := 0; row < console.Height; row += 2 {
		for col := 0; col < console.Width; col++ {
			top := hexColor(m.video[row*console.Width+col])
			bottom := "#000000"
			if row+1 < console.Height {
				bottom = hexColor(m.video[(row+1)*console.Width+col])
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(top)).Background(lipgloss.Color(bottom))
			b.WriteString(style.Render("▀"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func hexColor(px uint32) string {
	r := (px >> 24) & 0xFF
	g := (px >> 16) & 0xFF
	bl := (px >> 8) & 0xFF
	return fmt.Sprintf("#%02x%02x%02x", r, g, bl)
}

func (m terminalModel) View() string {
	if m.debugging {
		return m.dbg.View()
	}
	footer := "\n(d)ebugger  (1-0) save slot  (q)uit"
	if m.err != nil {
		footer = fmt.Sprintf("\nerror: %v\n%s", m.err, footer)
	}
	return m.downsample() + footer
}
