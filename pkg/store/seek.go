package store

import (
	"io"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

// Seek repositions the stream behind h.
func (t *Table) Seek(h Handle, opt SeekOption) error {
	cb, err := t.lookup(h)
	if err != nil {
		return err
	}

	switch opt {
	case Rewind:
		if cb.lastOp == opWrite {
			if err := t.flush(cb); err != nil {
				return err
			}
		}
		return t.seekTo(cb, 0)

	case EndOfFile:
		if cb.lastOp == opWrite {
			if err := t.flush(cb); err != nil {
				return err
			}
		}
		if _, err := cb.stream.Seek(0, io.SeekEnd); err != nil {
			return errors.Wrap(gsferr.ErrFileSeekError, err.Error())
		}
		cb.lastOp = opNone
		cb.buffered = 0
		return nil

	case PreviousRecord:
		return t.seekTo(cb, cb.previousRecord)

	default:
		return errors.Wrapf(gsferr.ErrBadSeekOption, "option %d", int(opt))
	}
}

// seekTo moves to an absolute offset. Buffered writes are flushed first.
func (t *Table) seekTo(cb *controlBlock, offset int64) error {
	if _, err := cb.stream.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(gsferr.ErrFileSeekError, "offset %d: %v", offset, err)
	}
	cb.lastOp = opNone
	cb.buffered = 0
	return nil
}

// Percent returns how far into the stream h is, as a percentage of the file
// size when it was opened. It is 0 for a file that was empty.
func (t *Table) Percent(h Handle) (int, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return 0, err
	}
	if cb.fileSize == 0 {
		return 0, nil
	}
	return int(cb.stream.Offset() * 100 / cb.fileSize), nil
}

// direct resolves h and requires direct access.
func (t *Table) direct(h Handle) (*controlBlock, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	if !cb.direct {
		return nil, errors.Wrapf(gsferr.ErrBadAccessMode, "%s mode has no index", cb.mode)
	}
	return cb, nil
}

// IndexTime returns the time of record n of type typ, and n itself, resolved
// when it is record.LastRecord.
func (t *Table) IndexTime(h Handle, typ record.Type, n int) (record.Timespec, int, error) {
	cb, err := t.direct(h)
	if err != nil {
		return record.Timespec{}, 0, err
	}

	if n == record.LastRecord {
		count, err := cb.index.Count(typ)
		if err != nil {
			return record.Timespec{}, 0, err
		}
		if count > 0 {
			n = count
		}
	}
	ts, err := cb.index.Time(typ, n)
	if err != nil {
		return record.Timespec{}, 0, err
	}
	return ts, n, nil
}

// GetNumberRecords returns how many records of type typ the file holds.
func (t *Table) GetNumberRecords(h Handle, typ record.Type) (int, error) {
	cb, err := t.direct(h)
	if err != nil {
		return 0, err
	}
	return cb.index.Count(typ)
}

// IndexBuildID identifies the index behind a direct access handle.
func (t *Table) IndexBuildID(h Handle) (ksuid.KSUID, error) {
	cb, err := t.direct(h)
	if err != nil {
		return ksuid.Nil, err
	}
	return cb.index.BuildID(), nil
}

// Version returns the format version of the stream behind h.
func (t *Table) Version(h Handle) (codec.Version, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return codec.Version{}, err
	}
	return cb.version, nil
}

// Path returns the file the handle refers to.
func (t *Table) Path(h Handle) (string, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return "", err
	}
	return cb.path, nil
}

// ScaleFactors returns the scale factors the handle currently decodes and
// encodes pings with.
func (t *Table) ScaleFactors(h Handle) (record.ScaleFactors, error) {
	cb, err := t.lookup(h)
	if err != nil {
		return record.ScaleFactors{}, err
	}
	return cb.scale, nil
}
