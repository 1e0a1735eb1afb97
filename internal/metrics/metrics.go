// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts tracks HTTP GET attempts, including retries.
	FetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_fetch_attempts_total",
		Help: "The total number of HTTP fetch attempts, retries included.",
	})
	// FetchRetries tracks attempts beyond the first for a single fetch.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_fetch_retries_total",
		Help: "The total number of fetch retries after a transient failure.",
	})
	// FetchFailures tracks fetches that exhausted all attempts.
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_fetch_failures_total",
		Help: "The total number of fetches that failed after retry exhaustion.",
	})
	// RecordsExtracted tracks normalized course records, labeled by site key.
	RecordsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_records_extracted_total",
		Help: "The total number of course records extracted, labeled by site.",
	}, []string{"site"})
	// AdapterFailures tracks adapters whose extraction failed wholesale.
	AdapterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_adapter_failures_total",
		Help: "The total number of adapter-level extraction failures, labeled by site.",
	}, []string{"site"})
	// AdapterSkips tracks adapters skipped by their policy gate.
	AdapterSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_adapter_skips_total",
		Help: "The total number of adapters skipped by policy, labeled by site.",
	}, []string{"site"})
)
