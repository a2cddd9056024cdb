package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/config"
	"github.com/cognicore/contractsort/pkg/contractsort/metrics"
	"github.com/cognicore/contractsort/pkg/contractsort/naming"
	"github.com/cognicore/contractsort/pkg/contractsort/organize"
	"github.com/cognicore/contractsort/pkg/contractsort/registry"
	"github.com/cognicore/contractsort/pkg/contractsort/store"
	"github.com/cognicore/contractsort/pkg/contractsort/store/memstore"
	"github.com/cognicore/contractsort/pkg/contractsort/store/sqlite"
)

var (
	// process command flags
	procErrorDir string
	procWorkers  int
	procSimple   bool
	procFlat     bool
)

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&procErrorDir, "errors", "", "Error folder (default <input>/_errors)")
	processCmd.Flags().IntVar(&procWorkers, "workers", 0, "Concurrent documents (overrides config)")
	processCmd.Flags().BoolVar(&procSimple, "simple", false, "Use simple YYYYMMDD_Vendor_original names")
	processCmd.Flags().BoolVar(&procFlat, "no-subfolders", false, "Keep documents in the vendor folder")
}

var processCmd = &cobra.Command{
	Use:   "process <input-folder>",
	Short: "File every document of every vendor folder",
	Long: `Process classifies and files every document found in the vendor folders of
the input folder. Failed documents go to the error folder with a note.

Examples:
  # Enhanced names, final/supporting subfolders
  contractsort process ./contracts

  # Simple names, eight workers
  contractsort process --simple --workers 8 ./contracts`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := args[0]
	stack, err := e.openStack(ctx, input)
	if err != nil {
		return err
	}
	defer stack.close()

	batch, err := stack.processor.Process(ctx)
	if err != nil {
		return err
	}
	batch.Summarize(time.Now()).Write(cmd.OutOrStdout())
	return nil
}

// stack is the wired batch processor with the resources it owns.
type stack struct {
	processor *organize.Processor
	registry  *registry.Registry
	journal   store.Journal
	server    *http.Server
	logger    *zap.Logger
}

func (e *env) processorOptions(input string) organize.Options {
	opts := organize.Options{
		InputDir:         input,
		ErrorDir:         procErrorDir,
		Workers:          e.cfg.Processing.Workers,
		NamingFormat:     naming.Format(e.cfg.Processing.NamingFormat),
		CreateSubfolders: e.cfg.Processing.Subfolders(),
	}
	if procWorkers > 0 {
		opts.Workers = procWorkers
	}
	if procSimple {
		opts.NamingFormat = naming.FormatSimple
	}
	if procFlat {
		opts.CreateSubfolders = false
	}
	return opts
}

// openStack opens the registry in the input folder (with its journal when
// configured), starts the metrics endpoint and builds the processor.
func (e *env) openStack(ctx context.Context, input string) (*stack, error) {
	s := &stack{logger: e.logger}

	journal, err := openJournal(ctx, e.cfg.Registry)
	if err != nil {
		return nil, err
	}
	s.journal = journal

	regOpts := []registry.Option{registry.WithLogger(e.logger.Named("registry"))}
	if journal != nil {
		regOpts = append(regOpts, registry.WithJournal(journal))
	}
	s.registry, err = registry.Open(ctx, filepath.Join(input, e.cfg.Registry.Filename), regOpts...)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if e.cfg.Metrics.Addr != "" {
		s.server = serveMetrics(e.cfg.Metrics.Addr, reg, e.logger)
	}

	s.processor = organize.New(e.processorOptions(input), e.pipeline, e.text,
		organize.WithRegistry(s.registry),
		organize.WithMetrics(m),
		organize.WithLogger(e.logger.Named("organize")),
	)
	return s, nil
}

func (s *stack) close() {
	if s.registry != nil {
		if err := s.registry.Close(); err != nil {
			s.logger.Error("registry close failed", zap.Error(err))
		}
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Error("journal close failed", zap.Error(err))
		}
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}

func openJournal(ctx context.Context, cfg config.RegistryConfig) (store.Journal, error) {
	switch cfg.Journal {
	case config.JournalMemory:
		return memstore.New(), nil
	case config.JournalSQLite:
		j, err := sqlite.OpenSQLite(ctx, cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		return j, nil
	default:
		return nil, nil
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	return srv
}
