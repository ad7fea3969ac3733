package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rjboer/GoAirspy/internal/logging"
)

func newTestHub() *Hub {
	return NewHub(10, logging.New(logging.Debug, logging.Text, io.Discard))
}

func TestReportTracksLatestPerSource(t *testing.T) {
	hub := newTestHub()
	hub.Report(CaptureStats{Source: "device", BufferedSamples: 100, BufferCapacity: 1000})
	hub.Report(CaptureStats{Source: "device", BufferedSamples: 250, BufferCapacity: 1000, DroppedSamples: 7})
	hub.Report(CaptureStats{Source: "file", BufferedSamples: 5, BufferCapacity: 64, EOF: true})

	latest := hub.Latest()
	if len(latest) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(latest))
	}
	if latest["device"].DroppedSamples != 7 {
		t.Errorf("device dropped = %d, want 7", latest["device"].DroppedSamples)
	}
	if !latest["file"].EOF {
		t.Error("file source should report EOF")
	}
	if latest["device"].Timestamp.IsZero() {
		t.Error("report should stamp the time")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	hub := newTestHub()
	for i := 0; i < 25; i++ {
		hub.Report(CaptureStats{Source: "device", BufferedSamples: i})
	}

	history := hub.History()
	if len(history) != 10 {
		t.Fatalf("history length = %d, want 10", len(history))
	}
	if history[len(history)-1].BufferedSamples != 24 {
		t.Fatalf("history should keep the newest entries, last = %d", history[len(history)-1].BufferedSamples)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	hub := newTestHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Report(CaptureStats{Source: "device", DroppedSamples: 3})

	select {
	case stats := <-ch:
		if stats.DroppedSamples != 3 {
			t.Fatalf("received dropped = %d, want 3", stats.DroppedSamples)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the update")
	}
}

func TestWatchPollsUntilStopped(t *testing.T) {
	hub := newTestHub()
	stop := hub.Watch(5*time.Millisecond, func() CaptureStats {
		return CaptureStats{Source: "device", BufferedSamples: 42}
	})

	deadline := time.Now().Add(time.Second)
	for len(hub.History()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watch never reported")
		}
		time.Sleep(time.Millisecond)
	}
	stop()
	stop() // stopping twice is fine

	if hub.Latest()["device"].BufferedSamples != 42 {
		t.Fatalf("unexpected observation: %+v", hub.Latest()["device"])
	}
}

func TestHandleDiagnostics(t *testing.T) {
	hub := newTestHub()
	hub.Report(CaptureStats{Source: "device", BufferedSamples: 12, BufferCapacity: 48})

	req := httptest.NewRequest(http.MethodGet, "/api/diagnostics", nil)
	rr := httptest.NewRecorder()
	hub.handleDiagnostics(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp Diagnostics
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Process.NumGoroutine == 0 {
		t.Fatal("expected goroutine count to be reported")
	}
	if resp.Sources["device"].BufferedSamples != 12 {
		t.Fatalf("unexpected source stats: %+v", resp.Sources["device"])
	}
}

func TestHandleDiagnosticsMethodNotAllowed(t *testing.T) {
	hub := newTestHub()
	req := httptest.NewRequest(http.MethodPost, "/api/diagnostics", nil)
	rr := httptest.NewRecorder()

	hub.handleDiagnostics(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCaptureMetricsExposition(t *testing.T) {
	hub := newTestHub()
	metrics := NewCaptureMetrics()
	hub.AttachMetrics(metrics)

	hub.Report(CaptureStats{Source: "device", BufferedSamples: 30, BufferCapacity: 60, DroppedSamples: 9})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`goairspy_dropped_samples{source="device"} 9`,
		`goairspy_buffer_fill_samples{source="device"} 30`,
		`goairspy_buffer_utilization_ratio{source="device"} 0.5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
