package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-wide request counters. It is safe for concurrent
// use.
type Collector struct {
	started         time.Time
	totalRequests   atomic.Uint64
	clientErrors    atomic.Uint64
	serverErrors    atomic.Uint64
	totalDurationMs atomic.Uint64
	maxDurationMs   atomic.Uint64
}

func New() *Collector {
	return &Collector{started: time.Now()}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	switch {
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	ms := uint64(duration.Milliseconds())
	c.totalDurationMs.Add(ms)
	for {
		cur := c.maxDurationMs.Load()
		if ms <= cur || c.maxDurationMs.CompareAndSwap(cur, ms) {
			break
		}
	}
}

type Snapshot struct {
	UptimeSeconds   int64   `json:"uptimeSeconds"`
	RequestsTotal   uint64  `json:"requestsTotal"`
	ClientErrors    uint64  `json:"clientErrorsTotal"`
	ServerErrors    uint64  `json:"serverErrorsTotal"`
	AvgDurationMs   float64 `json:"avgDurationMs"`
	MaxDurationMs   uint64  `json:"maxDurationMs"`
	TotalDurationMs uint64  `json:"totalDurationMs"`
}

func (c *Collector) Snapshot() Snapshot {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return Snapshot{
		UptimeSeconds:   int64(time.Since(c.started).Seconds()),
		RequestsTotal:   total,
		ClientErrors:    c.clientErrors.Load(),
		ServerErrors:    c.serverErrors.Load(),
		AvgDurationMs:   avg,
		MaxDurationMs:   c.maxDurationMs.Load(),
		TotalDurationMs: totalMs,
	}
}
