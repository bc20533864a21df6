package monitoring

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"
)

const (
	defaultSampleInterval = 30 * time.Second

	maxHealthyMemory     = int64(500 * 1024 * 1024)
	maxHealthyGoroutines = 1000
)

// Stats is a point-in-time copy of the server counters
type Stats struct {
	StartedAt   time.Time `json:"startedAt"`
	SampledAt   time.Time `json:"sampledAt"`
	Uptime      string    `json:"uptime"`
	Healthy     bool      `json:"healthy"`
	MemoryBytes int64     `json:"memoryBytes"`
	HeapBytes   int64     `json:"heapBytes"`
	Goroutines  int       `json:"goroutines"`
	GCCycles    uint32    `json:"gcCycles"`

	HTTPRequests     int64 `json:"httpRequests"`
	HTTPServerErrors int64 `json:"httpServerErrors"`
	PreviewRenders   int64 `json:"previewRenders"`
	PreviewFailures  int64 `json:"previewFailures"`
	PreviewSockets   int64 `json:"previewSockets"`
	AverageRenderMS  int64 `json:"averageRenderMs"`
}

// Monitor counts requests and preview renders and samples runtime memory
type Monitor struct {
	interval time.Duration

	mu            sync.RWMutex
	stats         Stats
	averageRender time.Duration

	runMu   sync.Mutex
	ticker  *time.Ticker
	stopCh  chan struct{}
	running bool
}

// NewMonitor creates a monitor sampling memory every interval.
// A non-positive interval uses the default.
func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	m := &Monitor{
		interval: interval,
		stats:    Stats{StartedAt: time.Now()},
	}
	m.sample()
	return m
}

// Start begins periodic sampling until ctx is done or Stop is called
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return
	}

	m.running = true
	m.ticker = time.NewTicker(m.interval)
	m.stopCh = make(chan struct{})

	go m.loop(ctx, m.ticker, m.stopCh)
}

// Stop ends periodic sampling
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return
	}

	m.running = false
	m.ticker.Stop()
	close(m.stopCh)
}

// Running reports whether the sampling loop is active
func (m *Monitor) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.running
}

func (m *Monitor) loop(ctx context.Context, ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-stop:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample refreshes the memory figures
func (m *Monitor) sample() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.MemoryBytes = safeUint64ToInt64(mem.Alloc)
	m.stats.HeapBytes = safeUint64ToInt64(mem.HeapAlloc)
	m.stats.GCCycles = mem.NumGC
	m.stats.Goroutines = runtime.NumGoroutine()
	m.stats.SampledAt = time.Now()
}

// RecordHTTPRequest counts a served request by its status code
func (m *Monitor) RecordHTTPRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.HTTPRequests++
	if status >= 500 {
		m.stats.HTTPServerErrors++
	}
}

// RecordPreview counts a preview render and folds its duration into the
// moving average
func (m *Monitor) RecordPreview(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.PreviewRenders++
	if err != nil {
		m.stats.PreviewFailures++
	}

	if m.averageRender == 0 {
		m.averageRender = duration
		return
	}
	// Exponential moving average
	const alpha = 0.1
	m.averageRender = time.Duration(float64(m.averageRender)*(1-alpha) + float64(duration)*alpha)
}

// RecordSocket counts a preview socket opening (delta 1) or closing (delta -1)
func (m *Monitor) RecordSocket(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.PreviewSockets += int64(delta)
	if m.stats.PreviewSockets < 0 {
		m.stats.PreviewSockets = 0
	}
}

// Snapshot returns a copy of the current counters
func (m *Monitor) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.stats
	s.Uptime = time.Since(s.StartedAt).Round(time.Second).String()
	s.AverageRenderMS = m.averageRender.Milliseconds()
	s.Healthy = s.MemoryBytes < maxHealthyMemory && s.Goroutines < maxHealthyGoroutines
	return s
}

// IsHealthy reports whether the last sample is within the memory and
// goroutine limits
func (m *Monitor) IsHealthy() bool {
	return m.Snapshot().Healthy
}

// safeUint64ToInt64 caps val at the max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
