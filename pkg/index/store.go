package index

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

var (
	metaKey  = []byte("meta")
	buildKey = []byte("build")
	scaleKey = []byte("scale")

	errMissing = errors.New("index metadata missing")
)

func typeKey(t record.Type) []byte {
	return []byte(fmt.Sprintf("type/%02d", uint32(t)))
}

type metaBlock struct {
	FileSize int64
	Records  uint32
}

type entryBlock struct {
	Addr uint64
	Sec  int32
	Nsec int32
}

const entryBlockSize = 16

type scaleBlock struct {
	Addr    uint64
	Ordinal uint32
}

const scaleBlockSize = 12

// contents is everything an index holds for one data file.
type contents struct {
	fileSize int64
	buildID  ksuid.KSUID
	entries  [record.NumTypes][]Entry
	scale    []ScaleFactorEntry
}

func (c *contents) records() int {
	n := 0
	for _, e := range c.entries {
		n += len(e)
	}
	return n
}

// sidecar is the pebble store holding an index next to its data file.
type sidecar struct {
	db   *pebble.DB
	sync bool
}

func openSidecar(path string, sync bool) (*sidecar, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &sidecar{db: db, sync: sync}, nil
}

func (s *sidecar) writeOptions() *pebble.WriteOptions {
	if s.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// get returns a copy of the value for key. The copy outlives the pebble
// closer.
func (s *sidecar) get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), data...), nil
}

// load reads a complete index. It returns errMissing when the store holds
// none and ErrCorruptIndexFile when what it holds cannot be decoded.
func (s *sidecar) load() (*contents, error) {
	raw, err := s.get(metaKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errMissing
	}
	if err != nil {
		return nil, errors.Wrap(gsferr.ErrIndexFileReadError, err.Error())
	}

	var meta metaBlock
	if err := struc.Unpack(bytes.NewReader(raw), &meta); err != nil {
		return nil, errors.Wrap(gsferr.ErrCorruptIndexFile, "metadata")
	}

	c := &contents{fileSize: meta.FileSize}

	raw, err = s.get(buildKey)
	if err != nil {
		return nil, errors.Wrap(gsferr.ErrCorruptIndexFile, "build id")
	}
	if c.buildID, err = ksuid.FromBytes(raw); err != nil {
		return nil, errors.Wrap(gsferr.ErrCorruptIndexFile, "build id")
	}

	for _, t := range record.Types {
		raw, err := s.get(typeKey(t))
		if errors.Is(err, pebble.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(gsferr.ErrIndexFileReadError, "%s entries: %v", t, err)
		}
		if c.entries[t], err = unpackEntries(raw); err != nil {
			return nil, errors.Wrapf(err, "%s entries", t)
		}
	}
	if c.records() != int(meta.Records) {
		return nil, errors.Wrapf(gsferr.ErrCorruptIndexFile, "%d entries, metadata declares %d", c.records(), meta.Records)
	}

	raw, err = s.get(scaleKey)
	switch {
	case errors.Is(err, pebble.ErrNotFound):
	case err != nil:
		return nil, errors.Wrapf(gsferr.ErrIndexFileReadError, "scale factor entries: %v", err)
	default:
		if c.scale, err = unpackScale(raw, len(c.entries[record.TypeSwathBathymetryPing])); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// store replaces whatever index the sidecar holds with c in one batch.
func (s *sidecar) store(c *contents) error {
	b := s.db.NewBatch()
	defer b.Close()

	var meta bytes.Buffer
	if err := struc.Pack(&meta, &metaBlock{FileSize: c.fileSize, Records: uint32(c.records())}); err != nil {
		return err
	}
	if err := b.Set(metaKey, meta.Bytes(), nil); err != nil {
		return err
	}
	if err := b.Set(buildKey, c.buildID.Bytes(), nil); err != nil {
		return err
	}

	for _, t := range record.Types {
		if len(c.entries[t]) == 0 {
			if err := b.Delete(typeKey(t), nil); err != nil {
				return err
			}
			continue
		}
		raw, err := packEntries(c.entries[t])
		if err != nil {
			return err
		}
		if err := b.Set(typeKey(t), raw, nil); err != nil {
			return err
		}
	}

	raw, err := packScale(c.scale)
	if err != nil {
		return err
	}
	if err := b.Set(scaleKey, raw, nil); err != nil {
		return err
	}
	return b.Commit(s.writeOptions())
}

func (s *sidecar) Close() error {
	return s.db.Close()
}

func packEntries(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(entries) * entryBlockSize)
	for _, e := range entries {
		if err := struc.Pack(&buf, &entryBlock{Addr: uint64(e.Addr), Sec: e.Time.Sec, Nsec: e.Time.Nsec}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func unpackEntries(raw []byte) ([]Entry, error) {
	if len(raw)%entryBlockSize != 0 {
		return nil, errors.Wrapf(gsferr.ErrCorruptIndexFile, "entry table of %d bytes", len(raw))
	}

	r := bytes.NewReader(raw)
	entries := make([]Entry, len(raw)/entryBlockSize)
	var prev int64 = -1
	for i := range entries {
		var b entryBlock
		if err := struc.Unpack(r, &b); err != nil {
			return nil, errors.Wrap(gsferr.ErrCorruptIndexFile, err.Error())
		}
		if int64(b.Addr) <= prev {
			return nil, errors.Wrapf(gsferr.ErrCorruptIndexFile, "address %d out of order", b.Addr)
		}
		prev = int64(b.Addr)
		entries[i] = Entry{Addr: prev, Time: record.Timespec{Sec: b.Sec, Nsec: b.Nsec}}
	}
	return entries, nil
}

func packScale(scale []ScaleFactorEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(scale) * scaleBlockSize)
	for _, e := range scale {
		if err := struc.Pack(&buf, &scaleBlock{Addr: uint64(e.Addr), Ordinal: uint32(e.Ordinal)}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func unpackScale(raw []byte, pings int) ([]ScaleFactorEntry, error) {
	if len(raw)%scaleBlockSize != 0 {
		return nil, errors.Wrapf(gsferr.ErrCorruptIndexFile, "scale factor table of %d bytes", len(raw))
	}

	r := bytes.NewReader(raw)
	scale := make([]ScaleFactorEntry, len(raw)/scaleBlockSize)
	for i := range scale {
		var b scaleBlock
		if err := struc.Unpack(r, &b); err != nil {
			return nil, errors.Wrap(gsferr.ErrCorruptIndexFile, err.Error())
		}
		if b.Ordinal < 1 || int(b.Ordinal) > pings {
			return nil, errors.Wrapf(gsferr.ErrCorruptIndexFile, "scale factor ordinal %d of %d pings", b.Ordinal, pings)
		}
		scale[i] = ScaleFactorEntry{Addr: int64(b.Addr), Ordinal: int(b.Ordinal)}
	}
	return scale, nil
}
