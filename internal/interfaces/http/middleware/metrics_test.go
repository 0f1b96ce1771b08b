package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{method: method, route: route, status: status})
}

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(HTTPMetrics(observer))
	router.GET("/api/orders/:orderId", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.DELETE("/api/orders/:orderId", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

	for _, path := range []string{"/api/orders/a1", "/api/orders/b2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/orders/a1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, observer.seen, 4)
	assert.Equal(t, observation{http.MethodGet, "/api/orders/:orderId", http.StatusOK}, observer.seen[0])
	assert.Equal(t, observer.seen[0], observer.seen[1])
	assert.Equal(t, observation{http.MethodDelete, "/api/orders/:orderId", http.StatusUnprocessableEntity}, observer.seen[2])
	assert.Equal(t, observation{http.MethodGet, "", http.StatusNotFound}, observer.seen[3])
}
