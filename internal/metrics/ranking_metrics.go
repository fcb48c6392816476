package metrics

import "github.com/prometheus/client_golang/prometheus"

// Run status label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of ranking runs by division and status",
	}, []string{"division", "status"})
	NonConvergenceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "solver_non_convergence_total",
		Help:      "Total number of runs whose strength solver hit the iteration ceiling",
	}, []string{"division"})
	DegenerateMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degenerate_metrics_total",
		Help:      "Total number of flat metric distributions normalized to 0.5",
	}, []string{"metric"})
)

// Gauge metrics
var (
	TeamsRanked = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "teams_ranked",
		Help:      "Number of teams in the last published table",
	}, []string{"division"})
	TeamsExcluded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "teams_excluded",
		Help:      "Number of teams excluded for lack of games in the last run",
	}, []string{"division"})
	LastSuccessTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last fully published recompute",
	})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of a single division run in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"division"})
	SolverIterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solver_iterations",
		Help:      "Iterations used by the strength solver",
		Buckets:   []float64{5, 10, 25, 50, 100, 200, 500},
	})
)

// RecordRun records the outcome of one division run.
func RecordRun(division string, durationSeconds float64, iterations int, converged bool, teamsRanked, teamsExcluded int) {
	RunsTotal.WithLabelValues(division, StatusSuccess).Inc()
	RunDuration.WithLabelValues(division).Observe(durationSeconds)
	SolverIterations.Observe(float64(iterations))
	if !converged {
		NonConvergenceTotal.WithLabelValues(division).Inc()
	}
	TeamsRanked.WithLabelValues(division).Set(float64(teamsRanked))
	TeamsExcluded.WithLabelValues(division).Set(float64(teamsExcluded))
}

// RecordRunFailure records a division run that did not publish.
func RecordRunFailure(division string) {
	RunsTotal.WithLabelValues(division, StatusFailure).Inc()
}

// RecordDegenerateMetric records a flat metric distribution.
func RecordDegenerateMetric(metric string) {
	DegenerateMetricsTotal.WithLabelValues(metric).Inc()
}

// MarkRecomputeSucceeded stamps the time of the last complete recompute.
func MarkRecomputeSucceeded() {
	LastSuccessTimestamp.SetToCurrentTime()
}
