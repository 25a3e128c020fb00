package console

import (
	"github.com/davecgh/go-spew/spew"
)

// DumpState renders the console's full serializable state (CPU, PPU,
// APU) as a readable string, the same go-spew pretty-printer the
// interactive CPU debugger uses for a single instruction's operands.
func (c *Console) DumpState() string {
	return spew.Sdump(c.exportState())
}
