package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

func TestObserveDocument(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDocument(model.DocumentRecord{
		DocumentType:        model.TypeMSA,
		ExecutionStatus:     model.StatusFinal,
		SignatureConfidence: model.ConfidenceHigh,
	}, 20*time.Millisecond)
	m.ObserveDocument(model.DocumentRecord{
		DocumentType:        model.TypeMSA,
		ExecutionStatus:     model.StatusFinal,
		SignatureConfidence: model.ConfidenceMedium,
	}, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.DocumentsProcessed.WithLabelValues("MSA", "final")); got != 2 {
		t.Errorf("Expected 2 processed MSA documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.SignatureConfidence.WithLabelValues("high")); got != 1 {
		t.Errorf("Expected 1 high-confidence document, got %v", got)
	}
	if got := testutil.CollectAndCount(m.ProcessingDuration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}

func TestErrorsAndRegistryGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveError()
	m.ObserveError()
	m.SetRegistryDocuments(42)

	if got := testutil.ToFloat64(m.DocumentErrors); got != 2 {
		t.Errorf("Expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(m.RegistryDocuments); got != 42 {
		t.Errorf("Expected gauge 42, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDocument(model.DocumentRecord{}, time.Second)
	m.ObserveError()
	m.SetRegistryDocuments(1)
}
