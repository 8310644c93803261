package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

var (
	documentExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proposalgen_document_exports_total",
		Help: "Generated proposal documents by format and outcome.",
	}, []string{"format", "outcome"})

	clientLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proposalgen_client_lookups_total",
		Help: "Client lookups by result status.",
	}, []string{"status"})

	proposalSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proposalgen_proposal_saves_total",
		Help: "Stored proposal snapshots.",
	})
)

// HandleMetrics serves the Prometheus metrics of the default registry.
func HandleMetrics() func(*core.RequestEvent) error {
	return apis.WrapStdHandler(promhttp.Handler())
}
