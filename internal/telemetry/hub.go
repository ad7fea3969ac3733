// Package telemetry aggregates capture statistics from the IQ producers and
// exposes them over HTTP, both as JSON diagnostics and as Prometheus metrics.
package telemetry

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/rjboer/GoAirspy/internal/logging"
)

// CaptureStats is one observation of a producer and its buffer.
type CaptureStats struct {
	Source          string    `json:"source"`
	Timestamp       time.Time `json:"timestamp"`
	BufferedSamples int       `json:"bufferedSamples"`
	BufferCapacity  int       `json:"bufferCapacity"`
	DroppedSamples  uint64    `json:"droppedSamples"`
	EOF             bool      `json:"eof"`
}

// Diagnostics is the payload served on the diagnostics endpoint.
type Diagnostics struct {
	Process struct {
		UptimeSeconds float64 `json:"uptimeSeconds"`
		NumGoroutine  int     `json:"numGoroutine"`
	} `json:"process"`
	Sources map[string]CaptureStats `json:"sources"`
}

// Hub collects capture statistics, keeps a bounded history, and fans out
// updates to subscribers.
type Hub struct {
	logger  logging.Logger
	started time.Time

	mu           sync.RWMutex
	latest       map[string]CaptureStats
	history      []CaptureStats
	historyLimit int
	subscribers  map[chan CaptureStats]struct{}
	metrics      *CaptureMetrics
}

// NewHub builds a hub keeping at most historyLimit observations.
func NewHub(historyLimit int, logger logging.Logger) *Hub {
	if historyLimit <= 0 {
		historyLimit = 500
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:       logger.With(logging.F("subsystem", "telemetry")),
		started:      time.Now(),
		latest:       make(map[string]CaptureStats),
		historyLimit: historyLimit,
		subscribers:  make(map[chan CaptureStats]struct{}),
	}
}

// AttachMetrics mirrors every reported observation into Prometheus metrics.
func (h *Hub) AttachMetrics(m *CaptureMetrics) {
	h.mu.Lock()
	h.metrics = m
	h.mu.Unlock()
}

// Report records a new observation, stamping the time if the caller did not.
func (h *Hub) Report(stats CaptureStats) {
	if stats.Timestamp.IsZero() {
		stats.Timestamp = time.Now()
	}

	h.mu.Lock()
	h.latest[stats.Source] = stats
	h.history = append(h.history, stats)
	if len(h.history) > h.historyLimit {
		h.history = h.history[len(h.history)-h.historyLimit:]
	}
	for ch := range h.subscribers {
		select {
		case ch <- stats:
		default:
		}
	}
	m := h.metrics
	h.mu.Unlock()

	if m != nil {
		m.Observe(stats)
	}
}

// Latest returns the most recent observation per source.
func (h *Hub) Latest() map[string]CaptureStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]CaptureStats, len(h.latest))
	for k, v := range h.latest {
		out[k] = v
	}
	return out
}

// History returns a copy of the stored observations.
func (h *Hub) History() []CaptureStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]CaptureStats, len(h.history))
	copy(out, h.history)
	return out
}

// Subscribe registers a listener for live updates. The returned cancel
// function removes the listener and closes the channel.
func (h *Hub) Subscribe() (chan CaptureStats, func()) {
	ch := make(chan CaptureStats, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		close(ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Watch polls probe on the given interval and reports each observation until
// the returned stop function is called.
func (h *Hub) Watch(interval time.Duration, probe func() CaptureStats) (stop func()) {
	if interval <= 0 {
		interval = time.Second
	}
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				h.Report(probe())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

func (h *Hub) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var d Diagnostics
	d.Process.UptimeSeconds = time.Since(h.started).Seconds()
	d.Process.NumGoroutine = runtime.NumGoroutine()
	d.Sources = h.Latest()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d)
}

func (h *Hub) handleLive(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.Subscribe()
	defer cancel()

	// send current state for immediate display
	for _, stats := range h.Latest() {
		writeEvent(w, stats)
	}
	flusher.Flush()

	for {
		select {
		case stats, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, stats)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, stats CaptureStats) {
	payload, _ := json.Marshal(stats)
	w.Write([]byte("data: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}
