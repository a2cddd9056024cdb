package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/contractsort/pkg/contractsort/organize"
	"github.com/cognicore/contractsort/pkg/contractsort/registry"
)

// sortSummaryFile is written beside the error folder.
const sortSummaryFile = "file_sorting_summary.xlsx"

var (
	sortThreshold int
	sortErrorDir  string
)

func init() {
	rootCmd.AddCommand(sortYearsCmd)
	sortYearsCmd.Flags().IntVar(&sortThreshold, "threshold", 0, "First year kept in place (default from config)")
	sortYearsCmd.Flags().StringVar(&sortErrorDir, "errors", "", "Error folder (default <input>/_errors)")
}

var sortYearsCmd = &cobra.Command{
	Use:   "sort-years <input-folder> <archive-folder>",
	Short: "Move documents dated before a year into an archive folder",
	Long: `Sort-years dates every pdf, docx and doc document under the input folder and
moves the ones older than the threshold year into the archive folder, keeping
their relative folder. Undated documents go to the error folder. A summary
workbook is written next to the error folder.

Examples:
  contractsort sort-years --threshold 2017 ./contracts ./pre-2017`,
	Args: cobra.ExactArgs(2),
	RunE: runSortYears,
}

func runSortYears(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	threshold := e.cfg.Processing.YearThreshold
	if sortThreshold > 0 {
		threshold = sortThreshold
	}
	opts := organize.Options{InputDir: args[0], ErrorDir: sortErrorDir}
	p := organize.New(opts, e.pipeline, e.text, organize.WithLogger(e.logger.Named("organize")))

	results, err := p.SortByYear(cmd.Context(), args[1], threshold)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Action]++
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Archived: %d\n", counts[organize.ActionArchived])
	fmt.Fprintf(out, "Kept: %d\n", counts[organize.ActionKept])
	fmt.Fprintf(out, "Errors: %d\n", counts[organize.ActionError])

	if len(results) == 0 {
		return nil
	}
	errDir := sortErrorDir
	if errDir == "" {
		errDir = filepath.Join(args[0], organize.ErrorFolderName)
	}
	path := filepath.Join(filepath.Dir(errDir), sortSummaryFile)
	if err := registry.WriteExcel(path, []registry.Sheet{organize.YearSheet(results)}); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	fmt.Fprintf(out, "Summary saved to: %s\n", path)
	return nil
}
