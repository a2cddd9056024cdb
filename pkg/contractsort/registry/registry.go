// Package registry maintains the tracking registry of processed documents.
//
// All mutations funnel through a single goroutine that owns the registry
// document, so concurrent workers never interleave read-modify-write cycles
// on the registry file. Every record is optionally appended to a journal
// first; entries not yet folded into the file are replayed on Open.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/store"
)

// Registry is the single writer of one registry file.
type Registry struct {
	path       string
	journal    store.Journal
	logger     *zap.Logger
	now        func() time.Time
	ids        *IDGenerator
	flushEvery int

	ops       chan func(*state)
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

type state struct {
	doc     *Document
	pending int
	lastSeq int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithJournal appends every record to j before applying it.
func WithJournal(j store.Journal) Option {
	return func(r *Registry) { r.journal = j }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithFlushEvery writes the file after every n records. Zero writes only on
// Flush and Close. The default is 1.
func WithFlushEvery(n int) Option {
	return func(r *Registry) {
		if n >= 0 {
			r.flushEvery = n
		}
	}
}

// Open loads the registry at path (a missing file starts an empty registry),
// replays pending journal entries, and starts the writer.
func Open(ctx context.Context, path string, opts ...Option) (*Registry, error) {
	r := &Registry{
		path:       path,
		logger:     zap.NewNop(),
		now:        time.Now,
		ids:        NewIDGenerator(),
		flushEvery: 1,
		ops:        make(chan func(*state)),
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	doc, exists, err := Load(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		doc = NewDocument(path, r.now())
	}
	st := &state{doc: doc, lastSeq: doc.JournalSeq}

	replayed := 0
	if r.journal != nil {
		err := r.journal.Replay(ctx, func(e store.Entry) error {
			if e.Seq <= doc.JournalSeq {
				return nil
			}
			doc.Apply(e.TrackingID, e.Record, e.RecordedAt)
			st.lastSeq = e.Seq
			replayed++
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("replay journal: %w", err)
		}
	}
	if replayed > 0 {
		st.pending = replayed
		if err := r.flush(ctx, st); err != nil {
			return nil, err
		}
	}

	r.logger.Info("registry opened",
		zap.String("path", path),
		zap.Int("total_documents", doc.TotalDocuments),
		zap.Int("replayed", replayed),
	)

	go r.run(st)
	return r, nil
}

func (r *Registry) run(st *state) {
	defer close(r.done)
	for {
		select {
		case op := <-r.ops:
			op(st)
		case <-r.closing:
			r.closeErr = r.flush(context.Background(), st)
			return
		}
	}
}

// reply carries an op's results back from the writer goroutine.
type reply struct {
	id  string
	doc Document
	err error
}

// do runs fn on the writer goroutine and waits for its reply. replies is
// buffered so the writer never blocks on a caller that gave up.
func (r *Registry) do(ctx context.Context, fn func(*state) reply) reply {
	replies := make(chan reply, 1)
	select {
	case r.ops <- func(st *state) { replies <- fn(st) }:
	case <-r.closing:
		return reply{err: internalerr.ErrRegistryClosed}
	case <-ctx.Done():
		return reply{err: ctx.Err()}
	}
	select {
	case rep := <-replies:
		return rep
	case <-ctx.Done():
		return reply{err: ctx.Err()}
	}
}

// Record adds rec to the registry and returns its tracking ID. A non-nil
// error with a non-empty ID means the record was kept but the file could
// not be written.
func (r *Registry) Record(ctx context.Context, rec model.DocumentRecord) (string, error) {
	rep := r.do(ctx, func(st *state) reply {
		trackingID := r.ids.Next()
		at := r.now()

		if r.journal != nil {
			seq, err := r.journal.Append(ctx, store.Entry{TrackingID: trackingID, RecordedAt: at, Record: rec})
			if err != nil {
				return reply{err: fmt.Errorf("journal record: %w", err)}
			}
			st.lastSeq = seq
		}

		st.doc.Apply(trackingID, rec, at)
		st.pending++

		r.logger.Debug("registry updated",
			zap.String("tracking_id", trackingID),
			zap.String("retention_category", string(rec.RetentionCategory)),
			zap.Bool("has_expiration", rec.HasExpiration()),
		)

		if r.flushEvery > 0 && st.pending >= r.flushEvery {
			return reply{id: trackingID, err: r.flush(ctx, st)}
		}
		return reply{id: trackingID}
	})
	return rep.id, rep.err
}

// Snapshot returns a copy of the current registry document.
func (r *Registry) Snapshot(ctx context.Context) (Document, error) {
	rep := r.do(ctx, func(st *state) reply {
		return reply{doc: st.doc.Clone()}
	})
	return rep.doc, rep.err
}

// Flush writes pending changes to disk.
func (r *Registry) Flush(ctx context.Context) error {
	return r.do(ctx, func(st *state) reply {
		return reply{err: r.flush(ctx, st)}
	}).err
}

// Close flushes pending changes and stops the writer. The journal is left
// open for its owner to close.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.closing)
		<-r.done
	})
	return r.closeErr
}

func (r *Registry) flush(ctx context.Context, st *state) error {
	if st.pending == 0 {
		return nil
	}
	st.doc.JournalSeq = st.lastSeq
	if err := st.doc.Save(r.path); err != nil {
		return fmt.Errorf("write registry %s: %w", r.path, err)
	}
	if r.journal != nil && st.lastSeq > 0 {
		if err := r.journal.Truncate(ctx, st.lastSeq); err != nil {
			r.logger.Warn("journal compaction failed", zap.Error(err))
		}
	}
	r.logger.Debug("registry flushed", zap.String("path", r.path), zap.Int("records", st.pending))
	st.pending = 0
	return nil
}
