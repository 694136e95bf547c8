package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Route binds one path prefix to a backend service.
type Route struct {
	Prefix string
	Target string
	Rule   Rule
}

// Dispatcher is the edge reverse proxy. Requests are matched by path
// prefix against a static routing table; unmatched paths 404 at the
// gateway without touching any backend.
type Dispatcher struct {
	routes  []Route
	counter Counter
	log     *logrus.Logger
}

func NewDispatcher(routes []Route, counter Counter, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{routes: routes, counter: counter, log: log}
}

// Register mounts every route on the engine. Each route group carries
// its own rate limit; backend connection failure yields a 503 envelope.
func (d *Dispatcher) Register(r *gin.Engine) error {
	for _, route := range d.routes {
		target, err := url.Parse(route.Target)
		if err != nil {
			return err
		}
		proxy := d.newProxy(target)
		handler := func(c *gin.Context) {
			proxy.ServeHTTP(c.Writer, c.Request)
		}
		group := r.Group(route.Prefix, RateLimit(d.counter, route.Rule, d.log))
		group.Any("", handler)
		group.Any("/*any", handler)
	}
	return nil
}

func (d *Dispatcher) newProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = &http.Transport{
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		d.log.WithError(err).WithFields(logrus.Fields{
			"path":   r.URL.Path,
			"target": target.Host,
		}).Error("backend unreachable")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"error":"Service Unavailable"}`))
	}
	return proxy
}

// Health reports the gateway itself, not the backends.
func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"service": service,
				"status":  "ok",
				"time":    time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
}
