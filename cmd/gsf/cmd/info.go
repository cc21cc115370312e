package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/gsf/pkg/record"
	"github.com/ssargent/gsf/pkg/store"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarize a GSF file",
	Long: `Print the format version, size and record counts of a GSF file, with
the time span covered by each record type. The file's index is built or
refreshed as a side effect.

Example:
  gsf info survey.gsf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		return runInfo(cmd.OutOrStdout(), e.table, args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(w io.Writer, tbl *store.Table, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat data file")
	}

	h, err := tbl.Open(path, store.ReadOnlyIndex)
	if err != nil {
		return err
	}
	defer tbl.Close(h)

	v, err := tbl.Version(h)
	if err != nil {
		return err
	}
	buildID, err := tbl.IndexBuildID(h)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "File:     %s\n", path)
	fmt.Fprintf(w, "Version:  %s\n", v)
	fmt.Fprintf(w, "Size:     %d bytes\n", fi.Size())
	fmt.Fprintf(w, "Index:    %s\n", buildID)
	fmt.Fprintf(w, "Records:\n")

	for _, typ := range record.Types {
		n, err := tbl.GetNumberRecords(h, typ)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}

		first, _, err := tbl.IndexTime(h, typ, 1)
		if err != nil {
			return err
		}
		last, _, err := tbl.IndexTime(h, typ, record.LastRecord)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-26s %8d  %s .. %s\n", typ, n, formatTime(first), formatTime(last))
	}
	return nil
}

func formatTime(ts record.Timespec) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Time().UTC().Format(time.RFC3339Nano)
}
