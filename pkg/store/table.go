// Package store implements the GSF stream engine: a fixed-capacity table of
// open streams with sequential and direct access reads, writes, and seeks.
//
// A Table is not safe for concurrent use. Distinct Tables share nothing but
// the package's metrics.
package store

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/index"
	"github.com/ssargent/gsf/pkg/record"
)

type lastOp int

const (
	opNone lastOp = iota
	opRead
	opWrite
)

// controlBlock is the state of one table slot.
type controlBlock struct {
	// path survives Close so a reopen of the same file lands in this slot.
	path     string
	occupied bool
	gen      uint32

	stream     *stream
	bufferSize int
	fileSize   int64
	mode       Mode
	direct     bool
	lastOp     lastOp
	// buffered counts bytes written since the last forced flush.
	buffered int
	// previousRecord is where the last record read or written starts.
	previousRecord int64

	version codec.Version
	scale   record.ScaleFactors
	ctx     codec.Context

	index *index.Table
	// lastScaleOrdinal is the ping whose scale factors ctx holds, or -1 when
	// unknown.
	lastScaleOrdinal int

	records record.Records
	resync  record.Records
	frame   []byte
}

// reset clears everything but the path and the scale factors.
func (cb *controlBlock) reset() {
	cb.occupied = false
	cb.stream = nil
	cb.bufferSize = 0
	cb.fileSize = 0
	cb.mode = 0
	cb.direct = false
	cb.lastOp = opNone
	cb.buffered = 0
	cb.previousRecord = 0
	cb.version = codec.Version{}
	cb.index = nil
	cb.lastScaleOrdinal = -1
	cb.records.Free()
	cb.resync.Free()
	cb.frame = nil
}

// Table is a set of open GSF streams addressed by Handle.
type Table struct {
	opts  Options
	log   zerolog.Logger
	codec *codec.RecordCodec
	slots []*controlBlock
	open  int
}

// New creates an empty table.
func New(opts Options) *Table {
	opts = opts.withDefaults()

	t := &Table{
		opts:  opts,
		log:   *opts.Logger,
		codec: codec.NewRecordCodec(),
		slots: make([]*controlBlock, opts.MaxOpenFiles),
	}
	for i := range t.slots {
		t.slots[i] = &controlBlock{lastScaleOrdinal: -1}
	}
	return t
}

// Open opens path in mode with the table's default buffer size.
func (t *Table) Open(path string, mode Mode) (Handle, error) {
	return t.OpenBuffered(path, mode, t.opts.BufferSize)
}

// OpenBuffered opens path in mode with a stream buffer of bufferSize bytes.
// Writes force a flush whenever the next record would not fit in the buffer,
// so a record is never split across flushes.
func (t *Table) OpenBuffered(path string, mode Mode, bufferSize int) (Handle, error) {
	if !mode.valid() {
		return Handle{}, errors.Wrapf(gsferr.ErrBadAccessMode, "mode %d", int(mode))
	}
	if bufferSize <= 0 {
		return Handle{}, errors.Wrapf(gsferr.ErrBufferConfig, "buffer size %d", bufferSize)
	}
	if t.open >= len(t.slots) {
		return Handle{}, errors.Wrapf(gsferr.ErrTooManyOpenFiles, "%d open", t.open)
	}

	slot, reused := t.pickSlot(path)
	cb := t.slots[slot]
	log := t.log.With().Str("path", path).Str("mode", mode.String()).Int("slot", slot).Logger()

	file, err := os.OpenFile(path, openFlags(mode), 0666)
	if err != nil {
		return Handle{}, errors.Wrap(gsferr.ErrFileOpenError, err.Error())
	}

	cb.path = path
	cb.stream = newStream(file, bufferSize)
	cb.bufferSize = bufferSize
	cb.mode = mode
	cb.lastScaleOrdinal = -1

	fi, err := file.Stat()
	if err != nil {
		t.abandon(cb)
		return Handle{}, errors.Wrap(gsferr.ErrFileOpenError, err.Error())
	}
	cb.fileSize = fi.Size()

	// Scale factors only carry over to the same, still populated, file.
	if !reused || cb.fileSize == 0 {
		cb.scale.Reset()
	} else {
		log.Debug().Int("subrecords", cb.scale.NumArraySubrecords).Msg("reusing slot scale factors")
	}
	cb.ctx = codec.Context{Scale: &cb.scale}

	if err := t.prepare(cb); err != nil {
		t.abandon(cb)
		return Handle{}, err
	}

	if mode.indexed() {
		if err := t.attachIndex(cb, log); err != nil {
			t.abandon(cb)
			return Handle{}, err
		}
	}

	cb.occupied = true
	cb.gen++
	t.open++
	openFilesGauge.Inc()

	log.Debug().Str("version", cb.version.String()).Int64("size", cb.fileSize).Bool("direct", cb.direct).Msg("opened")
	return Handle{slot: slot, gen: cb.gen}, nil
}

func openFlags(mode Mode) int {
	switch mode {
	case Create:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case Append:
		return os.O_RDWR | os.O_CREATE
	case Update, UpdateIndex:
		return os.O_RDWR
	default:
		return os.O_RDONLY
	}
}

// pickSlot prefers the free slot last used for path, then the first free one.
func (t *Table) pickSlot(path string) (slot int, reused bool) {
	free := -1
	for i, cb := range t.slots {
		if cb.occupied {
			continue
		}
		if cb.path == path {
			return i, true
		}
		if free < 0 {
			free = i
		}
	}

	cb := t.slots[free]
	cb.records.Free()
	cb.resync.Free()
	return free, false
}

// prepare writes the header of an empty writable file, or reads and parses
// the header of an existing one.
func (t *Table) prepare(cb *controlBlock) error {
	if cb.fileSize == 0 {
		if cb.mode != Create && cb.mode != Append {
			return errors.Wrap(gsferr.ErrUnrecognizedFile, "empty file")
		}

		cb.version = codec.LibraryVersion()
		cb.ctx.Version = cb.version
		recs := &record.Records{Header: record.Header{Version: cb.version.String()}}
		if _, err := t.writeAt(cb, record.DataID{Type: record.TypeHeader}, recs, -1); err != nil {
			return err
		}
		if err := cb.stream.Flush(); err != nil {
			return errors.Wrap(gsferr.ErrFlushError, err.Error())
		}
		cb.buffered = 0
		return nil
	}

	if cb.mode == Append {
		if _, err := cb.stream.Seek(0, io.SeekStart); err != nil {
			return errors.Wrap(gsferr.ErrFileSeekError, err.Error())
		}
	}

	id, _, err := t.readNext(cb, record.DataID{}, &cb.records, nil, 0)
	if err != nil {
		return errors.Wrapf(gsferr.ErrUnrecognizedFile, "reading header record: %v", err)
	}
	if id.Type != record.TypeHeader {
		return errors.Wrapf(gsferr.ErrUnrecognizedFile, "first record is %s", id.Type)
	}

	v, err := codec.ParseVersion(cb.records.Header.Version)
	if err != nil {
		return err
	}
	cb.version = v
	cb.ctx.Version = v

	switch cb.mode {
	case Append:
		if _, err := cb.stream.Seek(0, io.SeekEnd); err != nil {
			return errors.Wrap(gsferr.ErrFileSeekError, err.Error())
		}
	case ReadOnly, Update:
		// Sequential readers see the header record first.
		return t.seekTo(cb, 0)
	}
	return nil
}

// attachIndex opens the direct access index and positions the stream just
// past the header record.
func (t *Table) attachIndex(cb *controlBlock, log zerolog.Logger) error {
	headerEnd := cb.stream.Offset()

	idx, err := index.Open(cb.path, t.opts.Index)
	if err != nil {
		cb.direct = false
		log.Warn().Err(err).Msg("direct access unavailable")
		return err
	}
	if idx.Rebuilt() {
		indexRebuilds.Inc()
	}

	cb.index = idx
	cb.direct = true
	if _, err := cb.stream.Seek(headerEnd, io.SeekStart); err != nil {
		return errors.Wrap(gsferr.ErrFileSeekError, err.Error())
	}
	return nil
}

// abandon releases a slot whose open failed part way.
func (t *Table) abandon(cb *controlBlock) {
	if cb.index != nil {
		cb.index.Close()
	}
	if cb.stream != nil {
		cb.stream.file.Close()
	}
	cb.reset()
	cb.scale.Reset()
}

// lookup resolves h to its control block.
func (t *Table) lookup(h Handle) (*controlBlock, error) {
	if h.slot < 0 || h.slot >= len(t.slots) {
		return nil, errors.Wrapf(gsferr.ErrBadFileHandle, "slot %d", h.slot)
	}
	cb := t.slots[h.slot]
	if !cb.occupied || cb.gen != h.gen {
		return nil, errors.Wrapf(gsferr.ErrBadFileHandle, "slot %d generation %d", h.slot, h.gen)
	}
	return cb, nil
}

// Close flushes and closes the stream behind h. The handle is invalid
// afterwards, whatever the outcome.
func (t *Table) Close(h Handle) error {
	cb, err := t.lookup(h)
	if err != nil {
		return err
	}

	var indexErr error
	if cb.direct && cb.index != nil {
		indexErr = cb.index.Close()
	}
	closeErr := cb.stream.Close()

	t.log.Debug().Str("path", cb.path).Int("slot", h.slot).Msg("closed")
	cb.reset()
	t.open--
	openFilesGauge.Dec()

	if closeErr != nil {
		return errors.Wrap(gsferr.ErrFileCloseError, closeErr.Error())
	}
	return indexErr
}

// OpenCount returns how many streams are open.
func (t *Table) OpenCount() int { return t.open }
