// Command nesgo loads an iNES ROM and either runs it headless for a
// fixed number of frames (for benchmarking and integration tests) or
// drops into the interactive terminal host.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"nesgo/apu"
	"nesgo/cartridge"
	"nesgo/console"
)

var (
	romPath        string
	saveSlot       int
	saveDir        string
	headlessFrames int
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nesgo",
		Short: "A batched NES/Famicom emulator",
		RunE:  run,
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to an iNES (.nes) ROM file (required)")
	cmd.Flags().IntVar(&saveSlot, "slot", 0, "save-state slot to load on startup, if present")
	cmd.Flags().StringVar(&saveDir, "save-dir", ".", "directory holding save-state slot files")
	cmd.Flags().IntVar(&headlessFrames, "headless-frames", 0, "run N frames with no TUI and exit (0 runs the interactive host)")
	cmd.MarkFlagRequired("rom")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	f, err := os.Open(romPath)
	if err != nil {
		log.Printf("opening rom %q: %v", romPath, err)
		return err
	}
	defer f.Close()

	cart, err := cartridge.Load(f)
	if err != nil {
		log.Printf("loading cartridge: %v", err)
		return err
	}

	c, err := console.New(cart)
	if err != nil {
		log.Printf("powering on console: %v", err)
		return err
	}

	if err := c.LoadState(saveDir, saveSlot); err != nil {
		log.Printf("no snapshot loaded from slot %d: %v", saveSlot, err)
	}

	if headlessFrames > 0 {
		return runHeadless(c, headlessFrames)
	}
	return runTerminal(c)
}

func runHeadless(c *console.Console, frames int) error {
	video := make([]uint32, console.Width*console.Height)
	audio := make([]int16, apu.TicksInFrame)

	for i := 0; i < frames; i++ {
		if _, err := c.AdvanceOneFrame(video, audio); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	log.Printf("ran %d frames, instruction_count=%d", frames, c.Cpu.InstructionCount)
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
