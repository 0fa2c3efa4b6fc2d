// Package metrics collects dispatch and request statistics and exposes them
// as Prometheus metrics and as an in-process snapshot.
// file: internal/metrics/collector.go
package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// OutcomeSuccess labels a dispatch that returned a payload.
const OutcomeSuccess = "ok"

// Snapshot is a point-in-time copy of the collector's counters.
type Snapshot struct {
	StartTime     time.Time     `json:"startTime"`
	Uptime        time.Duration `json:"uptime"`
	GoVersion     string        `json:"goVersion"`
	NumGoroutines int           `json:"numGoroutines"`

	MemoryAllocated uint64 `json:"memoryAllocated"`
	MemoryGCCount   uint32 `json:"memoryGCCount"`

	TotalRequests  int `json:"totalRequests"`
	FailedRequests int `json:"failedRequests"`

	TotalDispatches int            `json:"totalDispatches"`
	DispatchOutcome map[string]int `json:"dispatchOutcome"` // outcome label -> count.
	Faults          int            `json:"faults"`

	LastErrors []ErrorInfo `json:"lastErrors,omitempty"`
}

// ErrorInfo describes a recorded handler fault.
type ErrorInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Tool      string    `json:"tool"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack,omitempty"`
}

// Collector records statistics. All methods are safe for concurrent use; a
// nil *Collector ignores every call.
type Collector struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchFaults   *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec

	mu          sync.Mutex
	startTime   time.Time
	requests    int
	failed      int
	dispatches  int
	outcomes    map[string]int
	faults      int
	errorBuffer []ErrorInfo
	bufferSize  int
}

// NewCollector creates a collector with its own Prometheus registry. The
// last errorBufferSize faults are kept for Snapshot.
func NewCollector(errorBufferSize int) *Collector {
	if errorBufferSize < 0 {
		errorBufferSize = 0
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpforge_dispatch_total",
			Help: "Tool dispatches by tool and outcome kind.",
		}, []string{"tool", "kind"}),
		dispatchFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpforge_dispatch_faults_total",
			Help: "Recovered tool handler panics.",
		}, []string{"tool"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcpforge_dispatch_duration_seconds",
			Help:    "Tool dispatch latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpforge_requests_total",
			Help: "JSON-RPC requests by method and result.",
		}, []string{"method", "result"}),
		startTime:   time.Now(),
		outcomes:    make(map[string]int),
		errorBuffer: make([]ErrorInfo, 0, errorBufferSize),
		bufferSize:  errorBufferSize,
	}
	c.registry.MustRegister(
		c.dispatchTotal,
		c.dispatchFaults,
		c.dispatchDuration,
		c.requestTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDispatch records one tool dispatch. outcome is OutcomeSuccess or the
// failure kind name.
func (c *Collector) RecordDispatch(tool, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.dispatchTotal.WithLabelValues(tool, outcome).Inc()
	c.dispatchDuration.WithLabelValues(tool).Observe(d.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatches++
	c.outcomes[outcome]++
}

// RecordFault records a recovered handler panic.
func (c *Collector) RecordFault(tool, message, stack string) {
	if c == nil {
		return
	}
	c.dispatchFaults.WithLabelValues(tool).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults++
	if c.bufferSize == 0 {
		return
	}
	if len(c.errorBuffer) >= c.bufferSize {
		c.errorBuffer = c.errorBuffer[1:]
	}
	c.errorBuffer = append(c.errorBuffer, ErrorInfo{
		Timestamp: time.Now(),
		Tool:      tool,
		Message:   message,
		Stack:     stack,
	})
}

// RecordRequest records one JSON-RPC request.
func (c *Collector) RecordRequest(method string, success bool) {
	if c == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	c.requestTotal.WithLabelValues(method, result).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	if !success {
		c.failed++
	}
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		StartTime:       c.startTime,
		Uptime:          time.Since(c.startTime),
		GoVersion:       runtime.Version(),
		NumGoroutines:   runtime.NumGoroutine(),
		MemoryAllocated: mem.Alloc,
		MemoryGCCount:   mem.NumGC,
		TotalRequests:   c.requests,
		FailedRequests:  c.failed,
		TotalDispatches: c.dispatches,
		DispatchOutcome: make(map[string]int, len(c.outcomes)),
		Faults:          c.faults,
	}
	for k, v := range c.outcomes {
		s.DispatchOutcome[k] = v
	}
	if len(c.errorBuffer) > 0 {
		s.LastErrors = append([]ErrorInfo(nil), c.errorBuffer...)
	}
	return s
}
