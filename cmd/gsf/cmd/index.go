package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/gsf/pkg/index"
	"github.com/ssargent/gsf/pkg/record"
)

var indexRebuild bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Build or refresh the direct access index of a GSF file",
	Long: `Build the index that direct access reads use, or refresh it when the
data file has changed since it was built. The index is stored next to the
data file under the configured suffix.

Examples:
  gsf index survey.gsf
  gsf index survey.gsf --rebuild`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}

		opts := e.cfg.StoreOptions(&e.log).Index
		opts.Rebuild = indexRebuild
		return runIndex(cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "rescan the data file even if the index is current")
}

func runIndex(w io.Writer, path string, opts index.Options) error {
	idx, err := index.Open(path, opts)
	if err != nil {
		return err
	}
	defer idx.Close()

	state := "current"
	if idx.Rebuilt() {
		state = "rebuilt"
	}

	fmt.Fprintf(w, "Index:    %s (%s)\n", idx.Path(), state)
	fmt.Fprintf(w, "Build:    %s\n", idx.BuildID())
	fmt.Fprintf(w, "Covers:   %d bytes\n", idx.FileSize())
	fmt.Fprintf(w, "Scale factor pings: %d\n", len(idx.ScaleFactorEntries()))

	for _, typ := range record.Types {
		n, err := idx.Count(typ)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintf(w, "  %-26s %8d\n", typ, n)
		}
	}
	return nil
}
