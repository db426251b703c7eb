package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/preston-bernstein/city-dashboard/internal/metrics"
)

// NewTelemetryRecorder builds an otel-backed recorder with its Prometheus
// handler and shuts the meter provider down when the test ends.
func NewTelemetryRecorder(t testing.TB) (*metrics.Recorder, http.Handler) {
	t.Helper()
	rec, handler, shutdown, err := metrics.Setup(context.Background(), metrics.TelemetryConfig{
		Enabled:     true,
		ServiceName: "city-dashboard-test",
	})
	if err != nil {
		t.Fatalf("metrics setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return rec, handler
}

// Scrape returns the exposition text served by a Prometheus handler.
func Scrape(t testing.TB, handler http.Handler) string {
	t.Helper()
	rr := Serve(handler, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("scrape returned %d", rr.Code)
	}
	return rr.Body.String()
}
