package services

import "github.com/prometheus/client_golang/prometheus"

// Ingestion outcomes used as the "outcome" label.
const (
	outcomeStored    = "stored"
	outcomeDuplicate = "duplicate"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

var (
	ingestFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickset_ingest_files_total",
			Help: "Files processed by the ingestion pipeline, by outcome.",
		},
		[]string{"outcome"},
	)

	admissionWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pickset_admission_wait_seconds",
			Help:    "Time spent waiting for a queue's admission lock.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	selections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickset_selections_total",
			Help: "Selection attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(ingestFiles, admissionWait, selections)
}
