package metrics

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

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.RequestStarted()
	assert.Equal(t, int64(1), r.Snapshot().InFlight)
	r.RequestFinished(200, 10*time.Millisecond)

	r.RequestStarted()
	r.RequestFinished(404, 20*time.Millisecond)
	r.RequestStarted()
	r.RequestFinished(500, 30*time.Millisecond)

	s := r.Snapshot()
	assert.Equal(t, int64(3), s.Requests)
	assert.Equal(t, int64(2), s.Errors)
	assert.Equal(t, int64(0), s.InFlight)
	assert.Equal(t, int64(1), s.Status2xx)
	assert.Equal(t, int64(1), s.Status4xx)
	assert.Equal(t, int64(1), s.Status5xx)
	assert.InDelta(t, 20.0, s.AvgResponseTimeMs, 0.01)
}

func TestRegistry_WebSocketCounters(t *testing.T) {
	r := NewRegistry()
	r.WSConnected()
	r.WSConnected()
	r.WSMessage()
	r.WSDisconnected()

	s := r.Snapshot()
	assert.Equal(t, int64(1), s.WSConnections)
	assert.Equal(t, int64(1), s.WSMessages)
}

func TestRegistry_ConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RequestStarted()
			r.RequestFinished(200, time.Millisecond)
		}()
	}
	wg.Wait()

	s := r.Snapshot()
	assert.Equal(t, int64(n), s.Requests)
	assert.Equal(t, int64(0), s.InFlight)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	r := gin.New()
	r.Use(Middleware(reg))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/metrics", Handler(reg))

	for _, path := range []string{"/ok", "/ok", "/boom"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status_2xx":2`)
	assert.Contains(t, w.Body.String(), `"status_5xx":1`)
}
