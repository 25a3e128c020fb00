// Package errs defines the error kinds shared across the bus, CPU, PPU and
// APU. Centralizing them here (rather than on the console aggregate) lets
// every layer raise a typed error without creating an import cycle back up
// to the package that owns the console.
package errs

import "fmt"

// Kind classifies a fatal condition raised while driving the console.
// See the error handling design: only InfiniteLoop is ever recovered, and
// that recovery happens inside the CPU's instruction-burst driver, not
// here.
type Kind int

const (
	// InvalidAccess is a CPU bus read/write outside the defined address map.
	// It is also used for an unrecognized opcode and for a snapshot slot
	// outside 0-9.
	InvalidAccess Kind = iota
	// UnimplementedFeature is a well-formed access this batched model does
	// not support (DMC playback, OAMADDR/PPUSCROLL reads, unsupported
	// sprite sizes, writes to the unused noise register).
	UnimplementedFeature
	// InfiniteLoop signals a JMP-to-self; the CPU driver treats this as
	// the normal "waiting for vblank" burst terminator, never the host.
	InfiniteLoop
	// InvalidCartridge is an iNES header mismatch or truncated file.
	InvalidCartridge
	// MissingSnapshot is load-state against a slot with no saved file;
	// callers must treat this as a no-op, not a failure.
	MissingSnapshot
)

func (k Kind) String() string {
	switch k {
	case InvalidAccess:
		return "invalid access"
	case UnimplementedFeature:
		return "unimplemented feature"
	case InfiniteLoop:
		return "infinite loop"
	case InvalidCartridge:
		return "invalid cartridge"
	case MissingSnapshot:
		return "missing snapshot"
	default:
		return "unknown"
	}
}

// Error is the typed error raised by every fatal condition in §7 of the
// design. Addr and PC are filled in where the offending access is known;
// both are zero for kinds that are not address-scoped.
type Error struct {
	Kind Kind
	Addr uint16
	PC   uint16
	Msg  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidAccess:
		return fmt.Sprintf("%s: addr=0x%04X pc=0x%04X: %s", e.Kind, e.Addr, e.PC, e.Msg)
	default:
		if e.Msg == "" {
			return e.Kind.String()
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// Is lets errors.Is(err, errs.InfiniteLoop) style checks work against a
// bare Kind value, without requiring callers to construct an *Error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func (k Kind) Error() string { return k.String() }

// New constructs an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewAccess constructs an InvalidAccess error carrying the offending
// address and the program counter at the time of the fault.
func NewAccess(addr, pc uint16, format string, args ...any) *Error {
	return &Error{Kind: InvalidAccess, Addr: addr, PC: pc, Msg: fmt.Sprintf(format, args...)}
}

// InfiniteLoopErr is the singleton InfiniteLoop signal; the CPU driver
// checks for it with errors.Is rather than allocating one per burst.
var InfiniteLoopErr = &Error{Kind: InfiniteLoop}
