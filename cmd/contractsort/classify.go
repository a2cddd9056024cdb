package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/contractsort/pkg/contractsort/classify"
	"github.com/cognicore/contractsort/pkg/contractsort/execution"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/vendor"
)

var classifyVendor string

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyVendor, "vendor", "", "Vendor name (default derived from the parent folder)")
}

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Show how a single document would be classified",
	Long: `Classify prints the record and the signature analysis of one document as JSON
without moving it.

Examples:
  contractsort classify ./contracts/Acme/msa.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

// classification is the classify command output.
type classification struct {
	Record   model.DocumentRecord `json:"record"`
	Analysis execution.Analysis   `json:"signature_analysis"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	path := args[0]
	text, err := e.text.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	v := classifyVendor
	if v == "" {
		v = vendor.FromFolder(filepath.Base(filepath.Dir(path)))
	}
	filename := filepath.Base(path)
	out := classification{
		Record:   e.pipeline.Process(classify.Input{Path: path, Filename: filename, Vendor: v, Text: text}),
		Analysis: e.pipeline.Analyze(filename, text),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
