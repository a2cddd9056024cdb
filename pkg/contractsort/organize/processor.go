// Package organize files vendor folders of contracts: it classifies each
// document, renames it, moves it into its status folder, writes a metadata
// sidecar and records it in the tracking registry.
package organize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/contractsort/pkg/contractsort/classify"
	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/metrics"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/naming"
	"github.com/cognicore/contractsort/pkg/contractsort/registry"
	"github.com/cognicore/contractsort/pkg/contractsort/sequence"
	"github.com/cognicore/contractsort/pkg/contractsort/textsource"
	"github.com/cognicore/contractsort/pkg/contractsort/vendor"
)

// ErrorFolderName is the default error folder under the input folder.
const ErrorFolderName = "_errors"

// supportedExts are the document formats picked up from vendor folders.
var supportedExts = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true, ".html": true, ".htm": true,
}

// Options controls a Processor.
type Options struct {
	InputDir         string
	ErrorDir         string // defaults to InputDir/_errors
	Workers          int
	NamingFormat     naming.Format
	CreateSubfolders bool
}

// Processor organizes the vendor folders under one input folder.
type Processor struct {
	opts     Options
	pipeline *classify.Pipeline
	text     textsource.Extractor
	counter  *sequence.Counter
	registry *registry.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithRegistry records every filed document in r.
func WithRegistry(r *registry.Registry) Option {
	return func(p *Processor) { p.registry = r }
}

// WithMetrics publishes batch metrics to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCounter shares an ordinal counter across processors, so that repeated
// batches in one process keep numbering.
func WithCounter(c *sequence.Counter) Option {
	return func(p *Processor) {
		if c != nil {
			p.counter = c
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New creates a processor.
func New(opts Options, pipeline *classify.Pipeline, text textsource.Extractor, options ...Option) *Processor {
	if opts.ErrorDir == "" {
		opts.ErrorDir = filepath.Join(opts.InputDir, ErrorFolderName)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.NamingFormat == "" {
		opts.NamingFormat = naming.FormatEnhanced
	}
	p := &Processor{
		opts:     opts,
		pipeline: pipeline,
		text:     text,
		counter:  sequence.NewCounter(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// job is one document awaiting processing.
type job struct {
	path       string
	folder     string // vendor folder name
	vendorPath string
}

// results accumulates batch outcomes from every worker.
type results struct {
	mu        sync.Mutex
	successes []Success
	failures  []Failure
	skipped   []string
}

func (r *results) skip(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, path)
}

func (r *results) success(s Success) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, s)
}

func (r *results) failure(f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

// Process files every document in every vendor folder. A failing document
// is moved to the error folder and never aborts the batch; only an
// unreadable input folder or a cancelled context stops it early.
func (p *Processor) Process(ctx context.Context) (*Batch, error) {
	if info, err := os.Stat(p.opts.InputDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: input folder %s", internalerr.ErrNotFound, p.opts.InputDir)
	}
	if err := os.MkdirAll(p.opts.ErrorDir, 0755); err != nil {
		return nil, fmt.Errorf("create error folder: %w", err)
	}

	batch := &Batch{ID: uuid.NewString(), Started: p.now()}
	logger := p.logger.With(zap.String("batch_id", batch.ID))

	jobs, err := p.collect(logger)
	if err != nil {
		return nil, err
	}
	logger.Info("batch started", zap.Int("documents", len(jobs)), zap.Int("workers", p.opts.Workers))

	res := &results{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for _, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p.processOne(gctx, logger, j, batch.ID, res)
			return nil
		})
	}
	_ = g.Wait()

	if p.registry != nil {
		regCtx := context.WithoutCancel(ctx)
		if err := p.registry.Flush(regCtx); err != nil {
			logger.Error("registry flush failed", zap.Error(err))
		}
		if doc, err := p.registry.Snapshot(regCtx); err == nil {
			batch.Registry = &doc
			p.metrics.SetRegistryDocuments(doc.TotalDocuments)
		}
	}

	batch.Successes = res.successes
	batch.Failures = res.failures
	batch.Skipped = res.skipped
	batch.Finished = p.now()
	logger.Info("batch finished",
		zap.Int("successful", len(batch.Successes)),
		zap.Int("errors", len(batch.Failures)),
		zap.Int("skipped", len(batch.Skipped)),
	)
	return batch, ctx.Err()
}

// collect lists documents under each vendor folder, creating status
// subfolders when enabled. Folders starting with '.' or '_' are skipped,
// as are the vendor's own status subfolders.
func (p *Processor) collect(logger *zap.Logger) ([]job, error) {
	entries, err := os.ReadDir(p.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}

	var jobs []job
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		vendorPath := filepath.Join(p.opts.InputDir, name)
		if p.opts.CreateSubfolders {
			if err := naming.EnsureSubfolders(vendorPath, name); err != nil {
				logger.Warn("create vendor subfolders failed", zap.String("folder", name), zap.Error(err))
			}
		}
		found, err := p.vendorDocuments(vendorPath, name)
		if err != nil {
			logger.Warn("scan vendor folder failed", zap.String("folder", name), zap.Error(err))
		}
		jobs = append(jobs, found...)
	}
	return jobs, nil
}

// vendorDocuments lists the unprocessed documents of one vendor folder.
func (p *Processor) vendorDocuments(vendorPath, folder string) ([]job, error) {
	skip := map[string]bool{
		naming.TargetFolder(vendorPath, folder, model.StatusFinal, true):      true,
		naming.TargetFolder(vendorPath, folder, model.StatusSupporting, true): true,
	}

	var jobs []job
	err := filepath.WalkDir(vendorPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != vendorPath && (skip[path] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsDocument(path) {
			jobs = append(jobs, job{path: path, folder: folder, vendorPath: vendorPath})
		}
		return nil
	})
	return jobs, err
}

// IsDocument reports whether path is a document this tool files. Text
// sidecars and error notes are not documents.
func IsDocument(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(strings.ToLower(name), ".error.txt") {
		return false
	}
	if !supportedExts[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	return !textsource.IsSidecar(path)
}

func (p *Processor) processOne(ctx context.Context, logger *zap.Logger, j job, batchID string, res *results) {
	start := p.now()
	s, err := p.file(ctx, logger, j, batchID)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// never touched: leave it for the next batch
		res.skip(j.path)
		logger.Debug("document skipped", zap.String("file", filepath.Base(j.path)), zap.Error(err))
		return
	}
	if err != nil {
		res.failure(p.fail(logger, j.path, err.Error()))
		p.metrics.ObserveError()
		return
	}
	res.success(s)
	p.metrics.ObserveDocument(s.Record, p.now().Sub(start))
}

// file classifies, renames and moves one document. An error means the
// document was not moved.
func (p *Processor) file(ctx context.Context, logger *zap.Logger, j job, batchID string) (Success, error) {
	if err := ctx.Err(); err != nil {
		return Success{}, err
	}
	filename := filepath.Base(j.path)
	text := p.text.Extract(j.path)

	rec := p.pipeline.Process(classify.Input{
		Path:     j.path,
		Filename: filename,
		Vendor:   vendor.FromFolder(j.folder),
		Text:     text,
	})
	cleanVendor := vendor.ForFilename(rec.Vendor())

	var (
		ordinal int
		newName string
	)
	if p.opts.NamingFormat == naming.FormatSimple {
		newName = naming.Simple(cleanVendor, filename, rec.FileDate)
	} else {
		ordinal = p.counter.Next(cleanVendor, rec.DocumentType)
		newName = naming.Enhanced(cleanVendor, rec.DocumentType, filename, ordinal)
	}

	targetDir := naming.TargetFolder(j.vendorPath, j.folder, rec.ExecutionStatus, p.opts.CreateSubfolders)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return Success{}, fmt.Errorf("create target folder: %w", err)
	}
	target, err := naming.Reserve(filepath.Join(targetDir, newName))
	if err != nil {
		return Success{}, fmt.Errorf("reserve target name: %w", err)
	}
	sidecar, hasSidecar := textsource.Sidecar(j.path)
	if err := os.Rename(j.path, target); err != nil {
		os.Remove(target)
		return Success{}, fmt.Errorf("move document: %w", err)
	}
	if hasSidecar {
		if err := os.Rename(sidecar, target+".txt"); err != nil {
			logger.Warn("move text sidecar failed", zap.String("path", sidecar), zap.Error(err))
		}
	}

	rec.Path = target
	rec.Filename = filepath.Base(target)

	var trackingID string
	if p.registry != nil {
		// the document is already filed, so the record must land even if
		// the batch is being cancelled
		trackingID, err = p.registry.Record(context.WithoutCancel(ctx), rec)
		if err != nil {
			logger.Error("registry update failed", zap.String("path", target), zap.Error(err))
		}
	}

	meta := p.metadata(rec, metadataInput{
		trackingID:   trackingID,
		batchID:      batchID,
		originalPath: j.path,
		folder:       j.folder,
		cleanVendor:  cleanVendor,
		ordinal:      ordinal,
	})
	if err := WriteMetadata(meta); err != nil {
		logger.Error("write metadata failed", zap.String("path", target), zap.Error(err))
	}

	logger.Info("document filed",
		zap.String("file", filename),
		zap.String("new_name", rec.Filename),
		zap.String("doc_type", string(rec.DocumentType)),
		zap.String("status", string(rec.ExecutionStatus)),
		zap.String("confidence", string(rec.SignatureConfidence)),
		zap.Int("evidence_count", len(rec.SignatureEvidence)),
	)

	return Success{
		OriginalPath: j.path,
		NewPath:      target,
		Vendor:       rec.Vendor(),
		TrackingID:   trackingID,
		Record:       rec,
	}, nil
}

// fail moves a document into the error folder beside a note with the
// reason. The document stays in place when even that move fails.
func (p *Processor) fail(logger *zap.Logger, path, reason string) Failure {
	f := Failure{Path: path, Reason: reason}

	target, err := naming.Reserve(filepath.Join(p.opts.ErrorDir, filepath.Base(path)))
	if err != nil {
		logger.Error("move to error folder failed", zap.String("path", path), zap.Error(err))
		return f
	}
	if err := os.Rename(path, target); err != nil {
		os.Remove(target)
		logger.Error("move to error folder failed", zap.String("path", path), zap.Error(err))
		return f
	}
	f.ErrorPath = target

	note := fmt.Sprintf("Error: %s\nTimestamp: %s\n", reason, p.now().Format(time.RFC3339))
	if err := os.WriteFile(target+".error.txt", []byte(note), 0644); err != nil {
		logger.Warn("write error note failed", zap.String("path", target), zap.Error(err))
	}

	logger.Error("document failed", zap.String("file", filepath.Base(path)), zap.String("reason", reason))
	return f
}
