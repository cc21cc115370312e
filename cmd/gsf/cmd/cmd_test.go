package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gsf/pkg/config"
	"github.com/ssargent/gsf/pkg/index"
	"github.com/ssargent/gsf/pkg/record"
	"github.com/ssargent/gsf/pkg/store"
)

// sampleFile writes a header, two comments and a ping.
func sampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.gsf")

	tbl := store.New(store.Options{})
	h, err := tbl.Open(path, store.Create)
	require.NoError(t, err)

	var sf record.ScaleFactors
	require.NoError(t, sf.Load(record.DepthArray, 0, 0.01, 0))

	writes := []struct {
		typ  record.Type
		recs *record.Records
	}{
		{record.TypeComment, &record.Records{Comment: record.Comment{Time: record.Timespec{Sec: 1700000000}, Comment: "start of line"}}},
		{record.TypeSwathBathymetryPing, &record.Records{Ping: record.SwathBathyPing{
			PingTime:     record.Timespec{Sec: 1700000001},
			NumberBeams:  2,
			Depth:        []float64{12.5, 13.25},
			ScaleFactors: sf,
		}}},
		{record.TypeComment, &record.Records{Comment: record.Comment{Time: record.Timespec{Sec: 1700000002}, Comment: "end of line"}}},
	}
	for _, wr := range writes {
		_, err := tbl.Write(h, record.DataID{Type: wr.typ, Checksum: true}, wr.recs)
		require.NoError(t, err)
	}
	require.NoError(t, tbl.Close(h))
	return path
}

func TestRunInfo(t *testing.T) {
	path := sampleFile(t)

	var out bytes.Buffer
	require.NoError(t, runInfo(&out, store.New(store.Options{}), path))

	text := out.String()
	assert.Contains(t, text, "Version:  GSF-v03.10")
	assert.Contains(t, text, "comment")
	assert.Contains(t, text, "swath bathymetry ping")
	assert.Contains(t, text, "2023-11-14T22:13:20Z .. 2023-11-14T22:13:22Z")
	assert.DirExists(t, path+index.DefaultSuffix)
}

func TestRunInfoMissingFile(t *testing.T) {
	err := runInfo(io.Discard, store.New(store.Options{}), filepath.Join(t.TempDir(), "nope.gsf"))
	assert.Error(t, err)
}

func TestRunDump(t *testing.T) {
	path := sampleFile(t)
	tbl := store.New(store.Options{})

	var out bytes.Buffer
	n, err := runDump(&out, tbl, path, record.Next, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Contains(t, out.String(), "header")
	assert.Contains(t, out.String(), "2023-11-14T22:13:21Z")

	out.Reset()
	n, err = runDump(&out, tbl, path, record.TypeComment, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, out.String(), "ping")

	n, err = runDump(io.Discard, tbl, path, record.Next, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Every dump closed its handle.
	assert.Zero(t, tbl.OpenCount())
}

func TestRunIndex(t *testing.T) {
	path := sampleFile(t)

	var out bytes.Buffer
	require.NoError(t, runIndex(&out, path, index.Options{}))
	assert.Contains(t, out.String(), "(rebuilt)")
	assert.Contains(t, out.String(), "Scale factor pings: 1")

	out.Reset()
	require.NoError(t, runIndex(&out, path, index.Options{}))
	assert.Contains(t, out.String(), "(current)")

	out.Reset()
	require.NoError(t, runIndex(&out, path, index.Options{Rebuild: true}))
	assert.Contains(t, out.String(), "(rebuilt)")
}

func TestRunComment(t *testing.T) {
	path := sampleFile(t)
	tbl := store.New(store.Options{})

	var out bytes.Buffer
	now := time.Unix(1700000100, 0)
	require.NoError(t, runComment(&out, tbl, path, "appended note", false, now))
	assert.Contains(t, out.String(), "Wrote 36 byte comment")

	h, err := tbl.Open(path, store.ReadOnlyIndex)
	require.NoError(t, err)
	defer tbl.Close(h)

	n, err := tbl.GetNumberRecords(h, record.TypeComment)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var recs record.Records
	id, _, err := tbl.Read(h, record.DataID{Type: record.TypeComment, Number: record.LastRecord}, &recs)
	require.NoError(t, err)
	assert.False(t, id.Checksum)
	assert.Equal(t, "appended note", recs.Comment.Comment)
	assert.Equal(t, record.TimespecOf(now), recs.Comment.Time)
}

func TestRunCommentCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.gsf")
	tbl := store.New(store.Options{})

	require.NoError(t, runComment(io.Discard, tbl, path, "first", true, time.Unix(1, 0)))

	n, err := runDump(io.Discard, tbl, path, record.Next, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPrintStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	store.RegisterMonitoring(reg)

	path := sampleFile(t)
	_, err := runDump(io.Discard, store.New(store.Options{}), path, record.Next, 0)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printStats(&out, reg))
	assert.Contains(t, out.String(), `gsf_records_read{type="comment"}`)
	assert.Contains(t, out.String(), "gsf_open_files 0")
}

func TestLoadEnv(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.MaxOpenFiles = 1
	cfg.Checksum = false
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	t.Run("explicit config", func(t *testing.T) {
		e, err := loadEnv(cfgPath, "", io.Discard)
		require.NoError(t, err)
		assert.Equal(t, 1, e.cfg.MaxOpenFiles)
		assert.False(t, e.cfg.Checksum)
		assert.Equal(t, zerolog.InfoLevel, e.log.GetLevel())
	})

	t.Run("level override", func(t *testing.T) {
		e, err := loadEnv(cfgPath, "debug", io.Discard)
		require.NoError(t, err)
		assert.Equal(t, zerolog.DebugLevel, e.log.GetLevel())
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := loadEnv(cfgPath, "loud", io.Discard)
		assert.Error(t, err)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := loadEnv(filepath.Join(t.TempDir(), "absent.yaml"), "", io.Discard)
		assert.Error(t, err)
	})
}

func TestExecuteDump(t *testing.T) {
	path := sampleFile(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), cfgPath))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--config", cfgPath, "dump", path, "--type", "comment", "--limit", "1"})
	t.Cleanup(func() {
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(os.Stderr)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "comment")
	assert.NotContains(t, out.String(), "header")
}
