package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

// fileBuilder encodes records into a GSF byte stream and remembers where
// each one starts.
type fileBuilder struct {
	t     *testing.T
	ctx   *codec.Context
	codec *codec.RecordCodec
	data  []byte
	addrs []int64
}

func newFileBuilder(t *testing.T) *fileBuilder {
	b := &fileBuilder{t: t, ctx: codec.NewContext(codec.LibraryVersion()), codec: codec.NewRecordCodec()}
	b.add(record.TypeHeader, &record.Records{Header: record.Header{Version: codec.LibraryVersion().String()}})
	return b
}

func (b *fileBuilder) add(typ record.Type, recs *record.Records) {
	b.t.Helper()
	buf, err := b.codec.Encode(b.ctx, record.DataID{Type: typ, Checksum: true}, recs)
	require.NoError(b.t, err)
	b.addrs = append(b.addrs, int64(len(b.data)))
	b.data = append(b.data, buf...)
}

func (b *fileBuilder) comment(sec int32, text string) {
	b.add(record.TypeComment, &record.Records{Comment: record.Comment{Time: record.Timespec{Sec: sec}, Comment: text}})
}

func (b *fileBuilder) ping(sec int32, depthPrecision float64) {
	b.t.Helper()
	var sf record.ScaleFactors
	require.NoError(b.t, sf.Load(record.DepthArray, 0, depthPrecision, 0))
	b.add(record.TypeSwathBathymetryPing, &record.Records{Ping: record.SwathBathyPing{
		PingTime:     record.Timespec{Sec: sec},
		NumberBeams:  2,
		Depth:        []float64{10, 20},
		ScaleFactors: sf,
	}})
}

func (b *fileBuilder) write(path string) {
	b.t.Helper()
	require.NoError(b.t, os.WriteFile(path, b.data, 0600))
}

func sampleFile(t *testing.T) (*fileBuilder, string) {
	b := newFileBuilder(t)
	b.comment(100, "start")
	b.ping(101, 0.01)
	b.ping(102, 0.01)
	b.ping(103, 0.1)
	b.comment(104, "end")

	path := filepath.Join(t.TempDir(), "survey.gsf")
	b.write(path)
	return b, path
}

func TestOpenBuildsIndex(t *testing.T) {
	b, path := sampleFile(t)

	idx, err := Open(path, Options{})
	require.NoError(t, err)
	defer idx.Close()

	assert.True(t, idx.Rebuilt())
	assert.Equal(t, int64(len(b.data)), idx.FileSize())
	assert.Equal(t, path+DefaultSuffix, idx.Path())
	assert.False(t, idx.BuildID().IsNil())

	tests := []struct {
		typ   record.Type
		count int
	}{
		{record.TypeHeader, 1},
		{record.TypeComment, 2},
		{record.TypeSwathBathymetryPing, 3},
		{record.TypeHistory, 0},
	}
	for _, tt := range tests {
		n, err := idx.Count(tt.typ)
		require.NoError(t, err)
		assert.Equal(t, tt.count, n, tt.typ.String())
	}

	addr, err := idx.Locate(record.TypeHeader, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), addr)

	addr, err = idx.Locate(record.TypeSwathBathymetryPing, 2)
	require.NoError(t, err)
	assert.Equal(t, b.addrs[3], addr)

	addr, err = idx.Locate(record.TypeComment, record.LastRecord)
	require.NoError(t, err)
	assert.Equal(t, b.addrs[5], addr)

	ts, err := idx.Time(record.TypeSwathBathymetryPing, 3)
	require.NoError(t, err)
	assert.Equal(t, record.Timespec{Sec: 103}, ts)

	assert.Equal(t, []ScaleFactorEntry{
		{Addr: b.addrs[2], Ordinal: 1},
		{Addr: b.addrs[4], Ordinal: 3},
	}, idx.ScaleFactorEntries())
}

func TestOpenReusesCurrentIndex(t *testing.T) {
	_, path := sampleFile(t)

	first, err := Open(path, Options{})
	require.NoError(t, err)
	id := first.BuildID()
	require.NoError(t, first.Close())

	second, err := Open(path, Options{})
	require.NoError(t, err)
	defer second.Close()

	assert.False(t, second.Rebuilt())
	assert.Equal(t, id, second.BuildID())
	assert.Equal(t, first.ScaleFactorEntries(), second.ScaleFactorEntries())

	n, err := second.Count(record.TypeComment)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenRebuildsStaleIndex(t *testing.T) {
	b, path := sampleFile(t)

	first, err := Open(path, Options{})
	require.NoError(t, err)
	id := first.BuildID()
	require.NoError(t, first.Close())

	b.comment(105, "appended later")
	b.write(path)

	second, err := Open(path, Options{})
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.Rebuilt())
	assert.NotEqual(t, id, second.BuildID())

	n, err := second.Count(record.TypeComment)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOpenForcedRebuild(t *testing.T) {
	_, path := sampleFile(t)

	first, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, Options{Rebuild: true})
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Rebuilt())
}

func TestOpenRecoversCorruptIndex(t *testing.T) {
	_, path := sampleFile(t)

	first, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	db, err := pebble.Open(path+DefaultSuffix, &pebble.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Set(typeKey(record.TypeComment), []byte{1, 2, 3}, pebble.Sync))
	require.NoError(t, db.Close())

	second, err := Open(path, Options{})
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.Rebuilt())
	n, err := second.Count(record.TypeComment)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenTruncatedFile(t *testing.T) {
	b, path := sampleFile(t)
	last := b.addrs[len(b.addrs)-1]
	require.NoError(t, os.WriteFile(path, b.data[:last+10], 0600))

	idx, err := Open(path, Options{})
	require.NoError(t, err)
	defer idx.Close()

	n, err := idx.Count(record.TypeComment)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, last+10, idx.FileSize())
}

func TestLookupErrors(t *testing.T) {
	_, path := sampleFile(t)

	idx, err := Open(path, Options{Suffix: ".index"})
	require.NoError(t, err)
	defer idx.Close()
	assert.Equal(t, path+".index", idx.Path())

	tests := []struct {
		name string
		typ  record.Type
		n    int
		want gsferr.Code
	}{
		{"absent type", record.TypeHistory, 1, gsferr.ErrRecordTypeNotAvailable},
		{"zero", record.TypeComment, 0, gsferr.ErrInvalidRecordNumber},
		{"past the end", record.TypeComment, 3, gsferr.ErrInvalidRecordNumber},
		{"negative", record.TypeComment, -2, gsferr.ErrInvalidRecordNumber},
		{"unknown type", record.Type(42), 1, gsferr.ErrUnrecognizedRecordID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idx.Locate(tt.typ, tt.n)
			assert.Equal(t, tt.want, gsferr.CodeOf(err))

			_, err = idx.Time(tt.typ, tt.n)
			assert.Equal(t, tt.want, gsferr.CodeOf(err))
		})
	}

	_, err = idx.Count(record.Type(42))
	assert.Equal(t, gsferr.ErrUnrecognizedRecordID, gsferr.CodeOf(err))
}

func TestOpenMissingDataFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.gsf"), Options{})
	assert.Equal(t, gsferr.ErrIndexFileOpenError, gsferr.CodeOf(err))
}

func TestEntryTableCodec(t *testing.T) {
	entries := []Entry{
		{Addr: 0, Time: record.Timespec{}},
		{Addr: 24, Time: record.Timespec{Sec: 1, Nsec: 2}},
		{Addr: 1 << 33, Time: record.Timespec{Sec: -5, Nsec: 999999999}},
	}
	raw, err := packEntries(entries)
	require.NoError(t, err)
	assert.Len(t, raw, len(entries)*entryBlockSize)

	got, err := unpackEntries(raw)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	_, err = unpackEntries(raw[:len(raw)-1])
	assert.Equal(t, gsferr.ErrCorruptIndexFile, gsferr.CodeOf(err))

	swapped, err := packEntries([]Entry{entries[1], entries[0]})
	require.NoError(t, err)
	_, err = unpackEntries(swapped)
	assert.Equal(t, gsferr.ErrCorruptIndexFile, gsferr.CodeOf(err))

	_, err = unpackScale(make([]byte, scaleBlockSize), 3)
	assert.Equal(t, gsferr.ErrCorruptIndexFile, gsferr.CodeOf(err))
}
