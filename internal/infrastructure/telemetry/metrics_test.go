package telemetry

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "gorm.io/driver/sqlite"
)

func TestMetrics_HTTPRequests(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTPRequest(http.MethodGet, "/api/products/:barcode", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/products/:barcode", 200, 30*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/products/:barcode", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTPRequest(http.MethodPost, "/api/orders/confirm/:orderId", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `marketplace_http_requests_total{method="POST",route="/api/orders/confirm/:orderId",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_RegisterDBStats(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	m := NewMetrics()
	require.NoError(t, m.RegisterDBStats(db, "marketplace"))
	assert.Error(t, m.RegisterDBStats(db, "marketplace"), "duplicate collector is rejected")

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "go_sql_open_connections" {
			found = true
		}
	}
	assert.True(t, found)
}
