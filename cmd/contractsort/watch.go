package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDelay time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDelay, "delay", 2*time.Second, "Quiet period after the last new file before processing")
	watchCmd.Flags().IntVar(&procWorkers, "workers", 0, "Concurrent documents (overrides config)")
	watchCmd.Flags().BoolVar(&procSimple, "simple", false, "Use simple YYYYMMDD_Vendor_original names")
}

var watchCmd = &cobra.Command{
	Use:   "watch <input-folder>",
	Short: "Process vendor folders whenever new documents arrive",
	Long: `Watch processes the input folder once, then again each time files are created
in a vendor folder, after a quiet period. Documents are always filed into
final/supporting subfolders so that filed documents are not picked up again.

Examples:
  contractsort watch --delay 5s ./contracts`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	if !e.cfg.Processing.Subfolders() {
		return fmt.Errorf("watch requires processing.create_subfolders")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := args[0]
	stack, err := e.openStack(ctx, input)
	if err != nil {
		return err
	}
	defer stack.close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(input); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	for _, ent := range entries {
		if ent.IsDir() && isVendorFolder(ent.Name()) {
			if err := watcher.Add(filepath.Join(input, ent.Name())); err != nil {
				e.logger.Warn("watch vendor folder failed", zap.String("folder", ent.Name()), zap.Error(err))
			}
		}
	}

	var mu sync.Mutex
	run := func() {
		mu.Lock()
		defer mu.Unlock()
		batch, err := stack.processor.Process(ctx)
		if err != nil {
			e.logger.Error("batch failed", zap.Error(err))
			return
		}
		if len(batch.Successes)+len(batch.Failures) > 0 {
			batch.Summarize(time.Now()).Write(cmd.OutOrStdout())
		}
	}

	run()
	deb := newDebouncer(watchDelay, run)
	defer deb.stop()

	e.logger.Info("watching for new documents", zap.String("folder", input))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if filepath.Dir(ev.Name) == filepath.Clean(input) {
				// a new vendor folder
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && isVendorFolder(info.Name()) {
					if err := watcher.Add(ev.Name); err != nil {
						e.logger.Warn("watch vendor folder failed", zap.String("folder", ev.Name), zap.Error(err))
					}
					deb.trigger()
				}
				continue
			}
			if isVendorFolder(filepath.Base(filepath.Dir(ev.Name))) {
				deb.trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// isVendorFolder mirrors the processor's folder filter.
func isVendorFolder(name string) bool {
	return !strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "_")
}

// debouncer runs fn once after delay has passed without another trigger.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
	running sync.WaitGroup
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn()
}

// stop cancels a pending run and waits for one already in flight.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.running.Wait()
}
