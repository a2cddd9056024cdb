package registry

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/store"
	"github.com/cognicore/contractsort/pkg/contractsort/store/memstore"
)

var clock = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func record(vendor string, docType model.DocumentType, expiration string) model.DocumentRecord {
	rec := model.DocumentRecord{
		Filename:     vendor + ".pdf",
		Path:         "/contracts/" + vendor + ".pdf",
		VendorRaw:    vendor,
		DocumentType: docType,
		DateRoles:    model.DateRoles{Expiration: expiration},
		ProcessedAt:  clock,
	}
	rec.RetentionCategory = model.DeriveRetention(string(docType), rec.HasExpiration())
	return rec
}

func open(t *testing.T, path string, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	r, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	return r
}

func TestRecordWritesRegistryFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	r := open(t, path)

	id, err := r.Record(ctx, record("Acme", model.TypeMSA, "2026-03-01"))
	require.NoError(t, err)
	assert.Len(t, id, 26)

	_, err = r.Record(ctx, record("Globex", model.TypeNDA, ""))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"registry_created", "last_updated", "total_documents",
		"documents_with_expiration", "retention_categories", "expiration_tracking"} {
		assert.Contains(t, raw, key)
	}

	doc, exists, err := Load(path)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, 2, doc.TotalDocuments)
	assert.Equal(t, 1, doc.DocumentsWithExpiration)
	assert.Equal(t, map[string]int{"long_term": 1, "indefinite": 1}, doc.RetentionCategories)
	require.Len(t, doc.ExpirationTracking, 1)

	e := doc.ExpirationTracking[0]
	assert.Equal(t, id, e.TrackingID)
	assert.Equal(t, "Acme", e.Vendor)
	assert.Equal(t, "2026-03-01", e.Expiration())
	assert.Nil(t, e.RenewalDate)
	assert.True(t, e.DestructionReviewRequired)
}

func TestTrackingSortedByExpiration(t *testing.T) {
	ctx := context.Background()
	r := open(t, filepath.Join(t.TempDir(), DefaultFilename))
	defer r.Close()

	for _, exp := range []string{"2027-01-01", "2025-07-01", "2026-01-01"} {
		_, err := r.Record(ctx, record("Acme", model.TypeMSA, exp))
		require.NoError(t, err)
	}

	doc, err := r.Snapshot(ctx)
	require.NoError(t, err)
	var got []string
	for _, e := range doc.ExpirationTracking {
		got = append(got, e.Expiration())
	}
	assert.Equal(t, []string{"2025-07-01", "2026-01-01", "2027-01-01"}, got)
}

func TestConcurrentRecordsAreNotLost(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	r := open(t, path)

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			exp := ""
			if i%2 == 0 {
				exp = "2026-01-01"
			}
			id, err := r.Record(ctx, record("Acme", model.TypeMSA, exp))
			assert.NoError(t, err)
			ids <- id
		}(i)
	}
	wg.Wait()
	close(ids)
	require.NoError(t, r.Close())

	unique := map[string]bool{}
	for id := range ids {
		unique[id] = true
	}
	assert.Len(t, unique, n)

	doc, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, n, doc.TotalDocuments)
	assert.Equal(t, n/2, doc.DocumentsWithExpiration)
	assert.Len(t, doc.ExpirationTracking, n/2)
}

func TestCancelledRecordsDoNotStallWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	r := open(t, path)

	const n = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			go cancel()
			id, err := r.Record(ctx, record("Acme", model.TypeMSA, ""))
			if err != nil {
				assert.ErrorIs(t, err, context.Canceled)
				return
			}
			assert.NotEmpty(t, id)
			mu.Lock()
			successes++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// The writer must still answer after every caller has gone.
	id, err := r.Record(context.Background(), record("Globex", model.TypeNDA, ""))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, r.Close())

	doc, _, err := Load(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.TotalDocuments, successes+1)
	assert.LessOrEqual(t, doc.TotalDocuments, n+1)
}

func TestReopenAccumulates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)

	r := open(t, path)
	_, err := r.Record(ctx, record("Acme", model.TypePO, ""))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r = open(t, path)
	_, err = r.Record(ctx, record("Acme", model.TypePO, ""))
	require.NoError(t, err)
	doc, err := r.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.Equal(t, 2, doc.TotalDocuments)
	assert.Equal(t, 2, doc.RetentionCategories["short_term"])
}

func TestJournalReplayAfterCrash(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	j := memstore.New()

	// Flush never happens, as if the process died before Close.
	r := open(t, path, WithJournal(j), WithFlushEvery(0))
	_, err := r.Record(ctx, record("Acme", model.TypeMSA, "2026-01-01"))
	require.NoError(t, err)
	_, err = r.Record(ctx, record("Globex", model.TypeNDA, ""))
	require.NoError(t, err)

	_, exists, err := Load(path)
	require.NoError(t, err)
	assert.False(t, exists, "registry file written before flush")

	n, err := j.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recovered := open(t, path, WithJournal(j))
	doc, err := recovered.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.TotalDocuments)

	n, err = j.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "journal should be compacted after replay")
	require.NoError(t, recovered.Close())

	// Replaying again must not double count.
	again := open(t, path, WithJournal(j))
	doc, err = again.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.TotalDocuments)
	require.NoError(t, again.Close())
}

type failingJournal struct{ store.Journal }

func (failingJournal) Append(context.Context, store.Entry) (int64, error) {
	return 0, errors.New("disk full")
}

func TestJournalFailureRejectsRecord(t *testing.T) {
	ctx := context.Background()
	r := open(t, filepath.Join(t.TempDir(), DefaultFilename), WithJournal(failingJournal{memstore.New()}))
	defer r.Close()

	id, err := r.Record(ctx, record("Acme", model.TypeMSA, ""))
	assert.Error(t, err)
	assert.Empty(t, id)

	doc, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.TotalDocuments)
}

func TestClosedRegistry(t *testing.T) {
	r := open(t, filepath.Join(t.TempDir(), DefaultFilename))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Record(context.Background(), record("Acme", model.TypeMSA, ""))
	assert.True(t, errors.Is(err, internalerr.ErrRegistryClosed))
}
