package store

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

// Write encodes the record of type id.Type held in recs and writes it,
// with a checksum when id.Checksum is set. It returns the framed size.
//
// Sequential handles write at the current position, append handles at the
// end of the stream. Direct access handles rewrite record id.Number in place;
// the new record must frame to the same size as the old one.
func (t *Table) Write(h Handle, id record.DataID, recs *record.Records) (int, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return 0, err
	}
	if !cb.mode.writable() {
		return 0, errors.Wrapf(gsferr.ErrBadAccessMode, "write in %s mode", cb.mode)
	}
	if recs == nil {
		recs = &cb.records
	}

	addr := int64(-1)
	if cb.direct {
		if id.Number == 0 {
			return 0, errors.Wrap(gsferr.ErrInvalidRecordNumber, "direct access writes need a record number")
		}
		n, a, err := t.locate(cb, id.Type, id.Number)
		if err != nil {
			return 0, err
		}
		if id.Type == record.TypeSwathBathymetryPing {
			if err := t.resyncScale(cb, a); err != nil {
				return 0, err
			}
			// A ping that carried scale factors must carry them again.
			if carriesScale(cb, a) {
				cb.ctx.ForceScaleFactors = true
				defer func() { cb.ctx.ForceScaleFactors = false }()
			}
		}
		addr, id.Number = a, n
	}

	return t.writeAt(cb, id, recs, addr)
}

func carriesScale(cb *controlBlock, addr int64) bool {
	for _, e := range cb.index.ScaleFactorEntries() {
		if e.Addr == addr {
			return true
		}
	}
	return false
}

// writeAt encodes and writes one record, at addr when it is not negative.
// The handle's scale factors are restored if the write fails after encoding.
func (t *Table) writeAt(cb *controlBlock, id record.DataID, recs *record.Records, addr int64) (int, error) {
	saved := cb.scale
	framed, err := t.codec.Encode(&cb.ctx, id, recs)
	if err != nil {
		return 0, err
	}

	n, err := t.put(cb, framed, addr)
	if err != nil {
		cb.scale = saved
		return 0, err
	}

	if id.Type == record.TypeSwathBathymetryPing && cb.ctx.ScaleFactorsChanged {
		cb.lastScaleOrdinal = -1
	}
	recordsWritten.WithLabelValues(id.Type.String()).Inc()
	bytesWritten.Add(float64(n))
	return n, nil
}

func (t *Table) put(cb *controlBlock, framed []byte, addr int64) (int, error) {
	if cb.mode.update() && cb.lastOp == opRead {
		if err := t.flush(cb); err != nil {
			return 0, err
		}
	}

	switch {
	case addr >= 0:
		if err := t.checkRewrite(cb, addr, len(framed)); err != nil {
			return 0, err
		}
	case cb.mode == Append && cb.lastOp != opWrite:
		if _, err := cb.stream.Seek(0, io.SeekEnd); err != nil {
			return 0, errors.Wrap(gsferr.ErrFileSeekError, err.Error())
		}
		cb.buffered = 0
	}

	// Flush ahead of a record that would overflow the buffer, so no record
	// is ever split across flushes.
	if cb.buffered > 0 && cb.buffered+len(framed) > cb.bufferSize {
		if err := t.flush(cb); err != nil {
			return 0, err
		}
	}

	start := cb.stream.Offset()
	n, err := cb.stream.Write(framed)
	if err != nil {
		return n, errors.Wrap(gsferr.ErrWriteError, err.Error())
	}
	if n != len(framed) {
		return n, errors.Wrapf(gsferr.ErrWriteError, "short write: %d of %d bytes", n, len(framed))
	}

	cb.buffered += n
	cb.previousRecord = start
	cb.lastOp = opWrite
	return n, nil
}

// checkRewrite positions the stream at addr after making sure the record
// there frames to size bytes.
func (t *Table) checkRewrite(cb *controlBlock, addr int64, size int) error {
	if err := t.seekTo(cb, addr); err != nil {
		return err
	}

	var header [codec.FrameHeaderSize]byte
	if _, err := io.ReadFull(cb.stream, header[:]); err != nil {
		return errors.Wrapf(gsferr.ErrReadError, "record at %d: %v", addr, err)
	}
	old, err := codec.DecodeFrame(header[:])
	if err != nil {
		return err
	}
	if old.Size() != size {
		return errors.Wrapf(gsferr.ErrParamSizeFixed, "%s record at %d is %d bytes, new one %d", old.Type, addr, old.Size(), size)
	}
	return t.seekTo(cb, addr)
}

// flush pushes buffered writes to the file.
func (t *Table) flush(cb *controlBlock) error {
	if err := cb.stream.Flush(); err != nil {
		return errors.Wrap(gsferr.ErrFlushError, err.Error())
	}
	cb.buffered = 0
	return nil
}
