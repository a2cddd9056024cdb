package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/contractsort/pkg/contractsort/config"
	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/organize"
	"github.com/cognicore/contractsort/pkg/contractsort/registry"
)

var (
	queryMonths int
	exportOut   string
	// now is the clock of the query commands
	now = time.Now
)

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(querySummaryCmd)
	queryCmd.AddCommand(queryExpiringCmd)
	queryCmd.AddCommand(queryCategoryCmd)
	rootCmd.AddCommand(exportCmd)

	queryExpiringCmd.Flags().IntVar(&queryMonths, "months", 12, "Look-ahead in months of 30 days")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output workbook (default <folder>/backend_tracking_report_<timestamp>.xlsx)")
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the tracking registry of a processed folder",
	Long: `Query reads the tracking registry written by process and reports expirations
and retention categories.

Examples:
  contractsort query summary ./contracts
  contractsort query expiring --months 6 ./contracts
  contractsort query category ./contracts long_term`,
}

var querySummaryCmd = &cobra.Command{
	Use:   "summary <folder>",
	Short: "Show registry counters and retention categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadRegistry(args[0])
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), doc)
		return nil
	},
}

var queryExpiringCmd = &cobra.Command{
	Use:   "expiring <folder>",
	Short: "List documents expiring within N months",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadRegistry(args[0])
		if err != nil {
			return err
		}
		printExpiring(cmd.OutOrStdout(), doc.ExpiringWithin(now(), queryMonths), queryMonths)
		return nil
	},
}

var queryCategoryCmd = &cobra.Command{
	Use:   "category <folder> [category]",
	Short: "List tracked documents, optionally of one retention category",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadRegistry(args[0])
		if err != nil {
			return err
		}
		var category string
		if len(args) == 2 {
			category = args[1]
		}
		printCategory(cmd.OutOrStdout(), doc.ByCategory(category), category)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <folder>",
	Short: "Export the tracking registry to an Excel workbook",
	Long: `Export writes the tracked documents to a workbook with an All_Documents sheet,
an Expiring_90_Days sheet and one sheet per retention category.

Examples:
  contractsort export --out report.xlsx ./contracts`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	doc, err := loadRegistry(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(doc.ExpirationTracking) == 0 {
		fmt.Fprintln(out, "No documents with expiration dates to export")
		return nil
	}

	t := now()
	path := exportOut
	if path == "" {
		path = filepath.Join(args[0], fmt.Sprintf("backend_tracking_report_%s.xlsx", t.Format("20060102_150405")))
	}
	if err := registry.WriteExcel(path, doc.Workbook(t)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(out, "Report saved to: %s\n", path)
	return nil
}

// loadRegistry reads the registry of a processed folder without opening a writer.
func loadRegistry(folder string) (*registry.Document, error) {
	cfg, err := config.LoadApp(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	path := filepath.Join(folder, cfg.Registry.Filename)
	doc, exists, err := registry.Load(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: no tracking registry at %s, run process first", internalerr.ErrNotFound, path)
	}
	return doc, nil
}

func printSummary(w io.Writer, doc *registry.Document) {
	if doc.LastUpdated != nil {
		fmt.Fprintf(w, "Last updated: %s\n", doc.LastUpdated.Format(time.RFC3339))
	}
	organize.WriteRegistrySummary(w, doc.Summarize(now()))
}

func printExpiring(w io.Writer, docs []registry.Expiring, months int) {
	fmt.Fprintf(w, "Documents expiring in next %d months:\n", months)
	if len(docs) == 0 {
		fmt.Fprintf(w, "No documents expiring in next %d months\n", months)
		return
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s (%d days) - %s - %s\n", d.Expiration(), d.DaysUntilExpiration, d.Vendor, d.DocumentType)
		fmt.Fprintf(w, "  File: %s\n", d.Filename)
	}
}

func printCategory(w io.Writer, docs []registry.Entry, category string) {
	if category != "" {
		fmt.Fprintf(w, "Documents in category: %s\n", category)
	} else {
		fmt.Fprintln(w, "All documents by category:")
	}
	for _, d := range docs {
		exp := d.Expiration()
		if exp == "" {
			exp = "No expiration"
		}
		fmt.Fprintf(w, "%s - %s - %s - Expires: %s\n", d.Vendor, d.DocumentType, d.RetentionCategory, exp)
	}
}
