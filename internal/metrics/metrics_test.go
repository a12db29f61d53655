package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_HandlerExposesRegisteredMetrics(t *testing.T) {
	g := NewGateway()
	g.RequestsTotal.WithLabelValues("/databrowser/search/freva", "200").Inc()
	g.ZarrChunkBytes.Add(128)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	g.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "freva_gateway_requests_total")
	assert.Contains(t, body, "freva_gateway_zarr_chunk_bytes_total")
}

func TestWorker_HandlerExposesRegisteredMetrics(t *testing.T) {
	w := NewWorker()
	w.JobsSubmitted.WithLabelValues("finished").Inc()
	w.OpenDatasets.Set(3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "freva_worker_jobs_total")
	assert.Contains(t, body, "freva_worker_open_datasets")
}
