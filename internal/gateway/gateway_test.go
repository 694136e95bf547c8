package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCounter is an in-memory fixed-window counter.
type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemCounter() *memCounter { return &memCounter{counts: map[string]int64{}} }

func (c *memCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func limitedEngine(counter Counter, rule Rule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(counter, rule, testLogger()), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

// closeNotifyRecorder adds the http.CloseNotifier method the ReverseProxy
// path reaches through gin's writer; httptest.ResponseRecorder lacks it.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(&closeNotifyRecorder{w}, req)
	return w
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	rule := Rule{Name: "test", Limit: 3, Window: time.Minute, Message: "slow down"}
	r := limitedEngine(newMemCounter(), rule)

	for i := 0; i < 3; i++ {
		w := doGet(r, "/ping")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	rule := Rule{Name: "test", Limit: 2, Window: time.Minute, Message: "slow down"}
	r := limitedEngine(newMemCounter(), rule)

	doGet(r, "/ping")
	doGet(r, "/ping")
	w := doGet(r, "/ping")

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"slow down"}`, w.Body.String())
}

func TestRateLimit_FailsOpenOnCounterError(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("redis down")
	rule := Rule{Name: "test", Limit: 1, Window: time.Minute, Message: "slow down"}
	r := limitedEngine(counter, rule)

	for i := 0; i < 5; i++ {
		w := doGet(r, "/ping")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_GroupsAreIndependent(t *testing.T) {
	counter := newMemCounter()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/a", RateLimit(counter, Rule{Name: "a", Limit: 1, Window: time.Minute, Message: "a"}, testLogger()),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", RateLimit(counter, Rule{Name: "b", Limit: 1, Window: time.Minute, Message: "b"}, testLogger()),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	doGet(r, "/a")
	w := doGet(r, "/a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// The exhausted "a" budget must not affect "b".
	w = doGet(r, "/b")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDispatcher_ProxiesByPrefix(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"path":"` + r.URL.Path + `"}}`))
	}))
	defer backend.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	d := NewDispatcher([]Route{
		{Prefix: "/auth", Target: backend.URL, Rule: Rule{Name: "auth", Limit: 100, Window: time.Minute}},
	}, newMemCounter(), testLogger())
	require.NoError(t, d.Register(r))

	w := doGet(r, "/auth/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/auth/login")

	// Unrouted prefixes 404 at the gateway.
	w = doGet(r, "/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDispatcher_BackendDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	d := NewDispatcher([]Route{
		{Prefix: "/room", Target: "http://127.0.0.1:1", Rule: Rule{Name: "api", Limit: 100, Window: time.Minute}},
	}, newMemCounter(), testLogger())
	require.NoError(t, d.Register(r))

	w := doGet(r, "/room/info/abc")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Service Unavailable"}`, w.Body.String())
}

func TestDispatcher_InvalidTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := NewDispatcher([]Route{
		{Prefix: "/x", Target: "://bad", Rule: RuleAPI},
	}, newMemCounter(), testLogger())
	assert.Error(t, d.Register(gin.New()))
}

func TestGatewayHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Health("gateway"))

	w := doGet(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"gateway"`)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
