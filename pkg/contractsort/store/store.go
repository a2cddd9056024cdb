// Package store persists the registry's append-only record journal.
package store

import (
	"context"
	"time"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// Journal is an append-only log of processed records. Entries appended since
// the last compaction are replayed on startup, so a crash between two
// registry flushes loses nothing.
type Journal interface {
	Close() error

	// Append stores e and returns its sequence number. Sequence numbers
	// increase strictly; e.Seq is ignored.
	Append(ctx context.Context, e Entry) (int64, error)

	// Replay calls fn for every retained entry in sequence order.
	Replay(ctx context.Context, fn func(Entry) error) error

	// Truncate drops every entry with Seq <= upTo.
	Truncate(ctx context.Context, upTo int64) error

	// Len returns the number of retained entries.
	Len(ctx context.Context) (int, error)
}

// Entry is one journaled record.
type Entry struct {
	Seq        int64
	TrackingID string
	RecordedAt time.Time
	Record     model.DocumentRecord
}
