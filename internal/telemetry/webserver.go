package telemetry

import (
	"context"
	"log"
	"net/http"
	"time"
)

// WebServer exposes capture diagnostics, live updates, and Prometheus
// metrics over HTTP.
type WebServer struct {
	srv *http.Server
	hub *Hub
}

// NewWebServer builds an HTTP server around the hub. With a non-nil metrics
// set, /metrics serves the Prometheus exposition.
func NewWebServer(addr string, hub *Hub, metrics *CaptureMetrics) *WebServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/diagnostics", hub.handleDiagnostics)
	mux.HandleFunc("/api/live", hub.handleLive)
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	return &WebServer{
		hub: hub,
		srv: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start begins listening and shuts down when the context is canceled.
func (w *WebServer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	if err := w.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("telemetry server error: %v", err)
	}
}
