package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/store"
)

// Journal is an in-memory implementation of store.Journal. It survives
// registry restarts within a process but not process exit.
type Journal struct {
	mu      sync.RWMutex
	nextSeq int64
	entries []store.Entry
	closed  bool
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{nextSeq: 1}
}

// Close implements store.Journal.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

// Append implements store.Journal.
func (j *Journal) Append(ctx context.Context, e store.Entry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return 0, internalerr.ErrStoreClosed
	}
	e.Seq = j.nextSeq
	j.nextSeq++
	e.Record = copyRecord(e.Record)
	j.entries = append(j.entries, e)
	return e.Seq, nil
}

// Replay implements store.Journal.
func (j *Journal) Replay(ctx context.Context, fn func(store.Entry) error) error {
	j.mu.RLock()
	if j.closed {
		j.mu.RUnlock()
		return internalerr.ErrStoreClosed
	}
	snapshot := make([]store.Entry, len(j.entries))
	for i, e := range j.entries {
		e.Record = copyRecord(e.Record)
		snapshot[i] = e
	}
	j.mu.RUnlock()

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Truncate implements store.Journal.
func (j *Journal) Truncate(ctx context.Context, upTo int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return internalerr.ErrStoreClosed
	}
	kept := j.entries[:0]
	for _, e := range j.entries {
		if e.Seq > upTo {
			kept = append(kept, e)
		}
	}
	j.entries = kept
	return nil
}

// Len implements store.Journal.
func (j *Journal) Len(ctx context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return 0, internalerr.ErrStoreClosed
	}
	return len(j.entries), nil
}

func copyRecord(r model.DocumentRecord) model.DocumentRecord {
	r.SignatureEvidence = append([]string(nil), r.SignatureEvidence...)
	return r
}
