package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgov_transitions_total",
		Help: "Lifecycle operations by action and outcome.",
	}, []string{"action", "outcome"})

	dispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgov_dispatch_failures_total",
		Help: "Post-commit side effects that failed after all retries.",
	}, []string{"subscriber"})

	dispatchDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgov_dispatch_dropped_total",
		Help: "Post-commit events dropped because the dispatch queue was full.",
	})

	expirySweepDocuments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgov_expiry_sweep_documents_total",
		Help: "Documents whose expiry status was materialised by the sweep.",
	}, []string{"status"})
)
