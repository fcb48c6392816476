package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SourceFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Total number of match source fetches by source and status",
	}, []string{"source", "status"})
	SourceFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_fetch_duration_seconds",
		Help:      "Duration of match source fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
	RecordsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_rejected_total",
		Help:      "Total number of match records dropped by validation",
	}, []string{"source"})
	TeamDirectoryLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "team_directory_lookups_total",
		Help:      "Team directory lookups by cache result",
	}, []string{"result"})
)

// RecordSourceFetch records one fetch from a match source.
func RecordSourceFetch(source string, durationSeconds float64, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	SourceFetchesTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordRecordsRejected records match records dropped by validation.
func RecordRecordsRejected(source string, count int) {
	if count > 0 {
		RecordsRejectedTotal.WithLabelValues(source).Add(float64(count))
	}
}

// RecordDirectoryLookup records a team directory cache hit or miss.
func RecordDirectoryLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	TeamDirectoryLookupsTotal.WithLabelValues(result).Inc()
}
