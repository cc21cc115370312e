package store

import (
	"github.com/rs/zerolog"

	"github.com/ssargent/gsf/pkg/index"
)

// Mode is the access mode a stream is opened with.
type Mode int

const (
	// Create truncates or creates the file and writes a header record.
	Create Mode = iota + 1
	// ReadOnly allows sequential reads.
	ReadOnly
	// Update allows sequential reads and writes of an existing file.
	Update
	// ReadOnlyIndex allows sequential and direct reads.
	ReadOnlyIndex
	// UpdateIndex allows direct reads and in-place rewrites.
	UpdateIndex
	// Append writes every record at the end of the file.
	Append
)

func (m Mode) String() string {
	switch m {
	case Create:
		return "create"
	case ReadOnly:
		return "read-only"
	case Update:
		return "update"
	case ReadOnlyIndex:
		return "read-only-index"
	case UpdateIndex:
		return "update-index"
	case Append:
		return "append"
	default:
		return "invalid"
	}
}

func (m Mode) valid() bool { return m >= Create && m <= Append }

// indexed reports whether the mode asks for direct access.
func (m Mode) indexed() bool { return m == ReadOnlyIndex || m == UpdateIndex }

// writable reports whether records may be written.
func (m Mode) writable() bool { return m != ReadOnly && m != ReadOnlyIndex }

// update reports whether reads and writes interleave on the stream, which
// forces a flush each time the direction switches.
func (m Mode) update() bool { return m == Update || m == UpdateIndex || m == Create }

// SeekOption selects a Seek target.
type SeekOption int

const (
	// Rewind moves to the start of the stream.
	Rewind SeekOption = iota + 1
	// EndOfFile moves to the end of the stream.
	EndOfFile
	// PreviousRecord moves to the start of the last record read or written.
	PreviousRecord
)

// Handle refers to an open stream. A handle stays invalid once its stream is
// closed, even if the table reuses the slot.
type Handle struct {
	slot int
	gen  uint32
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool { return h.gen == 0 }

const (
	// DefaultMaxOpenFiles bounds the streams a Table holds open at once.
	DefaultMaxOpenFiles = 4
	// DefaultBufferSize is the stream buffer used by Open.
	DefaultBufferSize = 8192
)

// Options configures a Table.
type Options struct {
	// MaxOpenFiles bounds simultaneously open streams.
	MaxOpenFiles int
	// BufferSize is the stream buffer Open uses.
	BufferSize int
	// Index configures the direct access index of indexed modes. Its Logger
	// defaults to the table's.
	Index index.Options
	// Logger receives engine events. Nil discards them.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxOpenFiles <= 0 {
		o.MaxOpenFiles = DefaultMaxOpenFiles
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.Index.Logger == nil {
		o.Index.Logger = o.Logger
	}
	return o
}
