package store

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

// Read decodes the next record of type want.Type into recs and returns its
// framing and size. record.Next accepts any type; records of other types are
// skipped. With direct access, a nonzero want.Number reads that record (1-based,
// or record.LastRecord) instead of scanning.
//
// A nil recs decodes into the handle's own records, which stay valid until the
// next call on the handle (see Records).
func (t *Table) Read(h Handle, want record.DataID, recs *record.Records) (record.DataID, int, error) {
	return t.ReadBuffer(h, want, recs, nil)
}

// ReadBuffer is Read that also copies the framed record into buf. A buf too
// small for the record fails with ErrBufferTooSmall once the record has been
// consumed.
func (t *Table) ReadBuffer(h Handle, want record.DataID, recs *record.Records, buf []byte) (record.DataID, int, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return record.DataID{}, 0, err
	}
	if recs == nil {
		recs = &cb.records
	}

	number := 0
	if cb.direct && want.Type != record.Next && want.Number != 0 {
		n, addr, err := t.locate(cb, want.Type, want.Number)
		if err != nil {
			return record.DataID{}, 0, err
		}
		if want.Type == record.TypeSwathBathymetryPing {
			if err := t.resyncScale(cb, addr); err != nil {
				return record.DataID{}, 0, err
			}
		}
		if err := t.seekTo(cb, addr); err != nil {
			return record.DataID{}, 0, err
		}
		number = n
	}

	return t.readNext(cb, want, recs, buf, number)
}

// locate resolves a record number through the index.
func (t *Table) locate(cb *controlBlock, typ record.Type, n int) (int, int64, error) {
	if n == record.LastRecord {
		count, err := cb.index.Count(typ)
		if err != nil {
			return 0, 0, err
		}
		if count > 0 {
			n = count
		}
	}
	addr, err := cb.index.Locate(typ, n)
	return n, addr, err
}

// resyncScale makes the handle's scale factors those in force at addr: the
// ones carried by the closest scale factor ping at or before addr, or by the
// last one in the file when none precedes it.
func (t *Table) resyncScale(cb *controlBlock, addr int64) error {
	entries := cb.index.ScaleFactorEntries()
	if len(entries) == 0 {
		return nil
	}

	e := entries[len(entries)-1]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Addr <= addr {
			e = entries[i]
			break
		}
	}
	// A ping carrying its own factors loads them when decoded.
	if e.Ordinal == cb.lastScaleOrdinal || e.Addr == addr {
		return nil
	}

	t.log.Debug().Str("path", cb.path).Int("ordinal", e.Ordinal).Int("previous", cb.lastScaleOrdinal).Msg("resynchronizing scale factors")
	if err := t.seekTo(cb, e.Addr); err != nil {
		return err
	}
	_, _, err := t.readNext(cb, record.DataID{Type: record.TypeSwathBathymetryPing}, &cb.resync, nil, e.Ordinal)
	return err
}

// readNext reads from the current position until a record of type want.Type
// is found. number is the record's 1-based number when known.
func (t *Table) readNext(cb *controlBlock, want record.DataID, recs *record.Records, buf []byte, number int) (record.DataID, int, error) {
	var header [codec.FrameHeaderSize]byte
	for {
		if cb.mode.update() && cb.lastOp == opWrite {
			if err := t.flush(cb); err != nil {
				return record.DataID{}, 0, err
			}
		}

		start := cb.stream.Offset()
		if _, err := io.ReadFull(cb.stream, header[:]); err != nil {
			return record.DataID{}, 0, readFailure(err)
		}
		cb.lastOp = opRead

		frame, err := codec.DecodeFrame(header[:])
		if err != nil {
			return record.DataID{}, 0, errors.Wrapf(err, "record at %d", start)
		}

		if want.Type != record.Next && frame.Type != want.Type {
			if _, err := cb.stream.Discard(frame.BodySize()); err != nil {
				return record.DataID{}, 0, readFailure(err)
			}
			continue
		}

		cb.previousRecord = start
		size := frame.Size()
		if cap(cb.frame) < size {
			cb.frame = make([]byte, size)
		}
		framed := cb.frame[:size]
		copy(framed, header[:])
		if _, err := io.ReadFull(cb.stream, framed[codec.FrameHeaderSize:]); err != nil {
			return record.DataID{}, 0, errors.Wrapf(gsferr.ErrReadError, "%s record at %d: %v", frame.Type, start, err)
		}

		if err := t.codec.Decode(&cb.ctx, frame, framed[codec.FrameHeaderSize:], recs); err != nil {
			if errors.Is(err, gsferr.ErrChecksumFailure) {
				checksumFailures.Inc()
				t.log.Error().Err(err).Str("path", cb.path).Int64("addr", start).Str("type", frame.Type.String()).Msg("checksum failure")
			}
			return record.DataID{}, 0, err
		}

		if frame.Type == record.TypeSwathBathymetryPing && cb.ctx.ScaleFactorsChanged {
			cb.lastScaleOrdinal = -1
			if number > 0 {
				cb.lastScaleOrdinal = number
			}
		}

		recordsRead.WithLabelValues(frame.Type.String()).Inc()
		bytesRead.Add(float64(size))

		id := frame.DataID()
		id.Number = number
		if buf != nil {
			if len(buf) < size {
				return id, size, errors.Wrapf(gsferr.ErrBufferTooSmall, "%d byte record, %d byte buffer", size, len(buf))
			}
			copy(buf, framed)
		}
		return id, size, nil
	}
}

// readFailure classifies a failed read at a record boundary. Running out of
// stream there is the expected end of a scan.
func readFailure(err error) error {
	if err == io.EOF {
		return errors.WithStack(gsferr.ErrReadToEndOfFile)
	}
	return errors.Wrap(gsferr.ErrReadError, err.Error())
}

// Records returns the handle's own decode target.
func (t *Table) Records(h Handle) (*record.Records, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	return &cb.records, nil
}
