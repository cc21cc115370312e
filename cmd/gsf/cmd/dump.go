package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
	"github.com/ssargent/gsf/pkg/store"
)

var (
	dumpType  string
	dumpLimit int
	dumpStats bool
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "List the records of a GSF file",
	Long: `List the records of a GSF file in file order: number, type, framed size,
checksum flag and time stamp.

Examples:
  gsf dump survey.gsf
  gsf dump survey.gsf --type comment
  gsf dump survey.gsf --type swath-bathymetry-ping --limit 10 --stats`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}

		want := record.Next
		if dumpType != "" {
			if want, err = record.ParseType(dumpType); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if _, err := runDump(out, e.table, args[0], want, dumpLimit); err != nil {
			return err
		}

		if dumpStats {
			reg := prometheus.NewRegistry()
			store.RegisterMonitoring(reg)
			return printStats(out, reg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpType, "type", "t", "", "only list records of this type")
	dumpCmd.Flags().IntVarP(&dumpLimit, "limit", "n", 0, "stop after this many records (0 lists all)")
	dumpCmd.Flags().BoolVar(&dumpStats, "stats", false, "print engine counters after the listing")
}

// runDump lists records of type want (record.Next for all) and returns how
// many it listed.
func runDump(w io.Writer, tbl *store.Table, path string, want record.Type, limit int) (int, error) {
	h, err := tbl.Open(path, store.ReadOnly)
	if err != nil {
		return 0, err
	}
	defer tbl.Close(h)

	buf := make([]byte, codec.FrameHeaderSize+codec.ChecksumSize+codec.MaxPayloadSize)
	n := 0
	for limit <= 0 || n < limit {
		id, size, err := tbl.ReadBuffer(h, record.DataID{Type: want}, nil, buf)
		if gsferr.IsEndOfFile(err) {
			break
		}
		if err != nil {
			return n, err
		}
		n++

		f, err := codec.DecodeFrame(buf[:size])
		if err != nil {
			return n, err
		}
		when := "-"
		if ts, ok := codec.PayloadTime(id.Type, buf[f.HeaderSize():size]); ok {
			when = formatTime(ts)
		}

		sum := " "
		if id.Checksum {
			sum = "c"
		}
		fmt.Fprintf(w, "%8d  %-26s %8d %s  %s\n", n, id.Type, size, sum, when)
	}
	return n, nil
}

// printStats writes every sample the gatherer holds, one per line.
func printStats(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}

			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, v))
		}
	}

	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
