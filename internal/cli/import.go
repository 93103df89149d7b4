package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sharerapy/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import markdown reports from a directory",
	Long: `Create or update reports from markdown files with YAML front matter.

A file whose front matter id names an existing report updates it; any
other file creates a new report. Imported reports are indexed immediately.
Defaults to IMPORT_DIR when no directory is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.ImportDir
		if len(args) == 1 {
			dir = args[0]
		}
		res, err := application.Importer.ImportDir(cmd.Context(), dir)
		if err != nil {
			return err
		}
		printImportResult(cmd.OutOrStdout(), dir, res)
		if res.Failed > 0 {
			return fmt.Errorf("%d files failed to import", res.Failed)
		}
		return nil
	},
}

func printImportResult(w io.Writer, dir string, res *importer.Result) {
	fmt.Fprintf(w, "Imported %s: %d created, %d updated, %d failed\n", dir, res.Created, res.Updated, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Error)
	}
}
