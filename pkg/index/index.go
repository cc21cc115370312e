// Package index maintains the direct access index of a GSF data file.
//
// The index lives in a pebble store alongside the data file (the data path
// plus a suffix, ".idx" by default). It holds, per record type, the byte
// address and time of every record, and the addresses of the swath
// bathymetry pings that carry scale factors. An index is rebuilt by scanning
// the data file whenever it is missing, unreadable, or covers a file size
// other than the data file's current one.
package index

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

// DefaultSuffix is appended to a data file path to name its index.
const DefaultSuffix = ".idx"

// Options configures Open.
type Options struct {
	// Suffix names the index store relative to the data file.
	Suffix string
	// Sync makes index writes durable before Open returns.
	Sync bool
	// Rebuild forces a rescan even when the stored index is current.
	Rebuild bool
	// Logger receives index events. Nil discards them.
	Logger *zerolog.Logger
}

// Entry locates one record.
type Entry struct {
	Addr int64
	Time record.Timespec
}

// ScaleFactorEntry locates a swath bathymetry ping that carries scale factors.
// Ordinal is the ping's 1-based number among all pings.
type ScaleFactorEntry struct {
	Addr    int64
	Ordinal int
}

// Table is an open index.
type Table struct {
	path    string
	log     zerolog.Logger
	db      *sidecar
	rebuilt bool
	contents
}

// Open opens the index of the data file at dataPath, building or rebuilding
// it as needed.
func Open(dataPath string, opts Options) (*Table, error) {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("index", dataPath+opts.Suffix).Logger()
	}

	fi, err := os.Stat(dataPath)
	if err != nil {
		return nil, errors.Wrap(gsferr.ErrIndexFileOpenError, err.Error())
	}

	db, err := openSidecar(dataPath+opts.Suffix, opts.Sync)
	if err != nil {
		return nil, errors.Wrap(gsferr.ErrIndexFileOpenError, err.Error())
	}

	t := &Table{path: dataPath + opts.Suffix, log: log, db: db}

	c, err := db.load()
	switch {
	case opts.Rebuild:
		log.Debug().Msg("index rebuild requested")
	case errors.Is(err, errMissing):
		log.Debug().Msg("no index, building")
	case err != nil:
		log.Warn().Err(err).Msg("index unreadable, rebuilding")
	case c.fileSize != fi.Size():
		log.Warn().Int64("indexed", c.fileSize).Int64("size", fi.Size()).Msg("index is stale, rebuilding")
	default:
		t.contents = *c
		log.Debug().Str("build", c.buildID.String()).Int("records", c.records()).Msg("index loaded")
		return t, nil
	}

	if err := t.rebuild(dataPath); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *Table) rebuild(dataPath string) error {
	c, err := build(dataPath, t.log)
	if err != nil {
		return err
	}
	if err := t.db.store(c); err != nil {
		return errors.Wrap(gsferr.ErrIndexFileOpenError, err.Error())
	}

	t.contents = *c
	t.rebuilt = true
	t.log.Info().Str("build", c.buildID.String()).Int("records", c.records()).Msg("index built")
	return nil
}

// entry resolves a 1-based record number, or record.LastRecord.
func (t *Table) entry(typ record.Type, n int) (Entry, error) {
	if !typ.Valid() {
		return Entry{}, errors.Wrapf(gsferr.ErrUnrecognizedRecordID, "record type %d", uint32(typ))
	}

	entries := t.entries[typ]
	if len(entries) == 0 {
		return Entry{}, errors.Wrapf(gsferr.ErrRecordTypeNotAvailable, "%s", typ)
	}
	if n == record.LastRecord {
		n = len(entries)
	}
	if n < 1 || n > len(entries) {
		return Entry{}, errors.Wrapf(gsferr.ErrInvalidRecordNumber, "%s %d of %d", typ, n, len(entries))
	}
	return entries[n-1], nil
}

// Locate returns the byte address of record n of type typ.
func (t *Table) Locate(typ record.Type, n int) (int64, error) {
	e, err := t.entry(typ, n)
	return e.Addr, err
}

// Time returns the time stamp of record n of type typ.
func (t *Table) Time(typ record.Type, n int) (record.Timespec, error) {
	e, err := t.entry(typ, n)
	return e.Time, err
}

// Count returns how many records of type typ the file holds.
func (t *Table) Count(typ record.Type) (int, error) {
	if !typ.Valid() {
		return 0, errors.Wrapf(gsferr.ErrUnrecognizedRecordID, "record type %d", uint32(typ))
	}
	return len(t.entries[typ]), nil
}

// ScaleFactorEntries returns the pings carrying scale factors in ascending
// address order. The slice must not be modified.
func (t *Table) ScaleFactorEntries() []ScaleFactorEntry { return t.scale }

// BuildID identifies the scan that produced the index.
func (t *Table) BuildID() ksuid.KSUID { return t.buildID }

// FileSize is the data file size the index covers.
func (t *Table) FileSize() int64 { return t.fileSize }

// Rebuilt reports whether Open had to scan the data file.
func (t *Table) Rebuilt() bool { return t.rebuilt }

// Path returns the location of the index store.
func (t *Table) Path() string { return t.path }

// Close releases the index store.
func (t *Table) Close() error {
	if err := t.db.Close(); err != nil {
		return errors.Wrap(gsferr.ErrFileCloseError, err.Error())
	}
	return nil
}
