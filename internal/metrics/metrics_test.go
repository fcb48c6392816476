package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := InitRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, GetRegistry())
}

func TestRecordRun(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(NonConvergenceTotal.WithLabelValues("u12-test"))
	RecordRun("u12-test", 0.2, 200, false, 14, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(RunsTotal.WithLabelValues("u12-test", StatusSuccess)))
	assert.Equal(t, before+1, testutil.ToFloat64(NonConvergenceTotal.WithLabelValues("u12-test")))
	assert.Equal(t, 14.0, testutil.ToFloat64(TeamsRanked.WithLabelValues("u12-test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(TeamsExcluded.WithLabelValues("u12-test")))

	RecordRun("u12-test", 0.1, 30, true, 15, 0)
	assert.Equal(t, before+1, testutil.ToFloat64(NonConvergenceTotal.WithLabelValues("u12-test")))
}

func TestRecordRunFailure(t *testing.T) {
	InitRegistry()
	RecordRunFailure("u14-test")
	assert.Equal(t, 1.0, testutil.ToFloat64(RunsTotal.WithLabelValues("u14-test", StatusFailure)))
}

func TestSourceMetrics(t *testing.T) {
	InitRegistry()

	RecordSourceFetch("csv-test", 0.01, nil)
	RecordSourceFetch("csv-test", 0.01, errors.New("boom"))
	RecordRecordsRejected("csv-test", 3)
	RecordRecordsRejected("csv-test", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("csv-test", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("csv-test", StatusFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(RecordsRejectedTotal.WithLabelValues("csv-test")))

	assert.NotPanics(t, func() {
		RecordDirectoryLookup(true)
		RecordDegenerateMetric("offense")
		MarkRecomputeSucceeded()
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordRun("handler-test", 0.1, 10, true, 3, 0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "power_rankings_runs_total")
}
