package metrics

import (
	"sync/atomic"
	"time"
)

// Registry aggregates request counters across concurrent handlers.
// Everything is atomic; there is no lock and no shared map mutation.
type Registry struct {
	startedAt time.Time

	requests    atomic.Int64
	errors      atomic.Int64
	inFlight    atomic.Int64
	totalTimeNs atomic.Int64

	status2xx atomic.Int64
	status4xx atomic.Int64
	status5xx atomic.Int64

	wsConnections atomic.Int64
	wsMessages    atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{startedAt: time.Now().UTC()}
}

func (r *Registry) RequestStarted() { r.inFlight.Add(1) }

func (r *Registry) RequestFinished(status int, elapsed time.Duration) {
	r.inFlight.Add(-1)
	r.requests.Add(1)
	r.totalTimeNs.Add(elapsed.Nanoseconds())

	switch {
	case status >= 500:
		r.status5xx.Add(1)
		r.errors.Add(1)
	case status >= 400:
		r.status4xx.Add(1)
		r.errors.Add(1)
	default:
		r.status2xx.Add(1)
	}
}

func (r *Registry) WSConnected()    { r.wsConnections.Add(1) }
func (r *Registry) WSDisconnected() { r.wsConnections.Add(-1) }
func (r *Registry) WSMessage()      { r.wsMessages.Add(1) }

// Snapshot is the read-side view served on /metrics.
type Snapshot struct {
	UptimeSeconds     float64 `json:"uptime_seconds"`
	Requests          int64   `json:"requests"`
	Errors            int64   `json:"errors"`
	InFlight          int64   `json:"in_flight"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	Status2xx         int64   `json:"status_2xx"`
	Status4xx         int64   `json:"status_4xx"`
	Status5xx         int64   `json:"status_5xx"`
	WSConnections     int64   `json:"ws_connections"`
	WSMessages        int64   `json:"ws_messages"`
}

func (r *Registry) Snapshot() Snapshot {
	reqs := r.requests.Load()
	s := Snapshot{
		UptimeSeconds: time.Since(r.startedAt).Seconds(),
		Requests:      reqs,
		Errors:        r.errors.Load(),
		InFlight:      r.inFlight.Load(),
		Status2xx:     r.status2xx.Load(),
		Status4xx:     r.status4xx.Load(),
		Status5xx:     r.status5xx.Load(),
		WSConnections: r.wsConnections.Load(),
		WSMessages:    r.wsMessages.Load(),
	}
	if reqs > 0 {
		s.AvgResponseTimeMs = float64(r.totalTimeNs.Load()) / float64(reqs) / 1e6
	}
	return s
}
