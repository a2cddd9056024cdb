// Package metrics exposes Prometheus metrics for document batches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

const namespace = "contractsort"

// Metrics groups the batch collectors. A nil *Metrics records nothing.
type Metrics struct {
	// DocumentsProcessed counts classified documents.
	// Labels: doc_type, status (final, supporting)
	DocumentsProcessed *prometheus.CounterVec

	// SignatureConfidence counts documents by signature confidence.
	// Labels: confidence (none, medium, high)
	SignatureConfidence *prometheus.CounterVec

	// DocumentErrors counts documents moved to the error folder.
	DocumentErrors prometheus.Counter

	// ProcessingDuration tracks per-document processing time.
	ProcessingDuration prometheus.Histogram

	// RegistryDocuments is the registry's total document count.
	RegistryDocuments prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DocumentsProcessed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_processed_total",
				Help:      "Total number of documents classified and filed",
			},
			[]string{"doc_type", "status"},
		),
		SignatureConfidence: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signature_confidence_total",
				Help:      "Documents by signature evidence confidence",
			},
			[]string{"confidence"},
		),
		DocumentErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_errors_total",
				Help:      "Total number of documents that failed processing",
			},
		),
		ProcessingDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "document_processing_seconds",
				Help:      "Duration of per-document processing in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RegistryDocuments: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "documents",
				Help:      "Documents recorded in the tracking registry",
			},
		),
	}
}

// ObserveDocument records a successfully filed document.
func (m *Metrics) ObserveDocument(rec model.DocumentRecord, took time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsProcessed.WithLabelValues(string(rec.DocumentType), string(rec.ExecutionStatus)).Inc()
	m.SignatureConfidence.WithLabelValues(string(rec.SignatureConfidence)).Inc()
	m.ProcessingDuration.Observe(took.Seconds())
}

// ObserveError records a failed document.
func (m *Metrics) ObserveError() {
	if m == nil {
		return
	}
	m.DocumentErrors.Inc()
}

// SetRegistryDocuments publishes the registry size.
func (m *Metrics) SetRegistryDocuments(n int) {
	if m == nil {
		return
	}
	m.RegistryDocuments.Set(float64(n))
}
