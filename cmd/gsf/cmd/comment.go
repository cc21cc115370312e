package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/gsf/pkg/record"
	"github.com/ssargent/gsf/pkg/store"
)

var commentChecksum bool

// commentCmd represents the comment command
var commentCmd = &cobra.Command{
	Use:   "comment <file> <text>...",
	Short: "Append a comment record to a GSF file",
	Long: `Append a time stamped comment record to a GSF file, creating the file
with a header when it does not exist. Whether the record carries a checksum
follows the configuration unless --checksum is given.

Example:
  gsf comment survey.gsf "patch test line 3 rerun"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}

		checksum := e.cfg.Checksum
		if cmd.Flags().Changed("checksum") {
			checksum = commentChecksum
		}
		return runComment(cmd.OutOrStdout(), e.table, args[0], strings.Join(args[1:], " "), checksum, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)

	commentCmd.Flags().BoolVar(&commentChecksum, "checksum", true, "protect the record with a checksum")
}

func runComment(w io.Writer, tbl *store.Table, path, text string, checksum bool, now time.Time) error {
	h, err := tbl.Open(path, store.Append)
	if err != nil {
		return err
	}

	recs := &record.Records{Comment: record.Comment{Time: record.TimespecOf(now), Comment: text}}
	n, err := tbl.Write(h, record.DataID{Type: record.TypeComment, Checksum: checksum}, recs)
	if err != nil {
		tbl.Close(h)
		return err
	}
	if err := tbl.Close(h); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %d byte comment to %s\n", n, path)
	return nil
}
