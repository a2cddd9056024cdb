package organize

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/naming"
	"github.com/cognicore/contractsort/pkg/contractsort/registry"
	"github.com/cognicore/contractsort/pkg/contractsort/textsource"
)

// DefaultYearThreshold is the first year that stays in place.
const DefaultYearThreshold = 2017

// yearSortExts are the formats considered by SortByYear.
var yearSortExts = map[string]bool{".pdf": true, ".docx": true, ".doc": true}

// Year sort actions.
const (
	ActionArchived = "archived"
	ActionKept     = "kept"
	ActionError    = "error"
)

// YearResult is one line of the year sort summary.
type YearResult struct {
	File    string
	Year    int // 0 when no date was found
	Action  string
	NewPath string
	Error   string
}

// SortByYear dates every document under the input folder with the
// best-single-date extractor. Documents dated before threshold move to
// archiveDir under their relative directory; undated ones go to the error
// folder.
func (p *Processor) SortByYear(ctx context.Context, archiveDir string, threshold int) ([]YearResult, error) {
	if info, err := os.Stat(p.opts.InputDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: input folder %s", internalerr.ErrNotFound, p.opts.InputDir)
	}
	if archiveDir == "" {
		return nil, fmt.Errorf("%w: archive folder required", internalerr.ErrInvalidInput)
	}
	if threshold == 0 {
		threshold = DefaultYearThreshold
	}
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("create archive folder: %w", err)
	}
	if err := os.MkdirAll(p.opts.ErrorDir, 0755); err != nil {
		return nil, fmt.Errorf("create error folder: %w", err)
	}

	files, err := p.yearSortFiles(archiveDir)
	if err != nil {
		return nil, err
	}
	p.logger.Info("year sort started", zap.Int("documents", len(files)), zap.Int("threshold", threshold))

	results := make([]YearResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := p.sortOne(path, archiveDir, threshold)
		if err != nil {
			f := p.fail(p.logger, path, err.Error())
			r = YearResult{File: filepath.Base(path), Action: ActionError, NewPath: f.ErrorPath, Error: err.Error()}
		}
		results = append(results, r)
	}
	return results, nil
}

func (p *Processor) yearSortFiles(archiveDir string) ([]string, error) {
	skip := map[string]bool{
		filepath.Clean(archiveDir):     true,
		filepath.Clean(p.opts.ErrorDir): true,
	}
	var files []string
	err := filepath.WalkDir(p.opts.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != p.opts.InputDir && skip[filepath.Clean(path)] {
				return filepath.SkipDir
			}
			return nil
		}
		if yearSortExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan input folder: %w", err)
	}
	return files, nil
}

func (p *Processor) sortOne(path, archiveDir string, threshold int) (YearResult, error) {
	filename := filepath.Base(path)
	date := p.pipeline.FileDate(p.text.Extract(path), filename)
	if date == "" {
		return YearResult{}, fmt.Errorf("no dates found")
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return YearResult{}, fmt.Errorf("bad file date %q: %w", date, err)
	}

	if year >= threshold {
		p.logger.Info("document kept", zap.String("file", filename), zap.Int("year", year))
		return YearResult{File: filename, Year: year, Action: ActionKept, NewPath: path}, nil
	}

	rel, err := filepath.Rel(p.opts.InputDir, filepath.Dir(path))
	if err != nil {
		return YearResult{}, err
	}
	destDir := filepath.Join(archiveDir, rel)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return YearResult{}, fmt.Errorf("create archive folder: %w", err)
	}
	target, err := naming.Reserve(filepath.Join(destDir, filename))
	if err != nil {
		return YearResult{}, fmt.Errorf("reserve archive name: %w", err)
	}
	sidecar, hasSidecar := textsource.Sidecar(path)
	if err := os.Rename(path, target); err != nil {
		os.Remove(target)
		return YearResult{}, fmt.Errorf("move document: %w", err)
	}
	if hasSidecar {
		if err := os.Rename(sidecar, target+".txt"); err != nil {
			p.logger.Warn("move text sidecar failed", zap.String("path", sidecar), zap.Error(err))
		}
	}

	p.logger.Info("document archived", zap.String("file", filename), zap.Int("year", year))
	return YearResult{File: filename, Year: year, Action: ActionArchived, NewPath: target}, nil
}

// YearSheet renders year sort results as a single report sheet.
func YearSheet(results []YearResult) registry.Sheet {
	s := registry.Sheet{
		Name:   "File_Sorting",
		Header: []string{"file", "year", "action", "new_path", "error"},
	}
	for _, r := range results {
		var year interface{} = r.Year
		if r.Action == ActionError {
			year = "ERROR"
		}
		s.Rows = append(s.Rows, []interface{}{r.File, year, r.Action, r.NewPath, r.Error})
	}
	return s
}
