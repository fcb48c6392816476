// Package metrics provides the centralized Prometheus metrics registry for the ranking service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "power_rankings"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Ranking run metrics
		registry.MustRegister(RunsTotal)
		registry.MustRegister(RunDuration)
		registry.MustRegister(SolverIterations)
		registry.MustRegister(NonConvergenceTotal)
		registry.MustRegister(DegenerateMetricsTotal)
		registry.MustRegister(TeamsRanked)
		registry.MustRegister(TeamsExcluded)
		registry.MustRegister(LastSuccessTimestamp)

		// Source metrics
		registry.MustRegister(SourceFetchesTotal)
		registry.MustRegister(SourceFetchDuration)
		registry.MustRegister(RecordsRejectedTotal)
		registry.MustRegister(TeamDirectoryLookupsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
