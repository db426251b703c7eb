package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/city-dashboard/internal/dashboard"
	"github.com/preston-bernstein/city-dashboard/internal/http/requestutil"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
)

// RefreshFunc runs one poll cycle on demand.
type RefreshFunc func(ctx context.Context) dashboard.CycleReport

// RefreshResponse summarizes an on-demand cycle.
type RefreshResponse struct {
	Status     string `json:"status"`
	DurationMS int64  `json:"durationMs"`
	Processing string `json:"processing"`
	Analyzer   string `json:"analyzer"`
	Sample     string `json:"sample"`
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	refresh RefreshFunc
	token   string
	logger  *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token rejects every request.
func NewAdminHandler(refresh RefreshFunc, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		refresh: refresh,
		token:   token,
		logger:  logger,
	}
}

// Refresh runs a poll cycle immediately and reports each branch's outcome.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost, h.logger) {
		return
	}
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}
	if h.refresh == nil {
		writeError(w, r, http.StatusServiceUnavailable, "refresh not configured", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	report := h.refresh(r.Context())
	resp := RefreshResponse{
		Status:     "ok",
		DurationMS: report.Duration.Milliseconds(),
		Processing: outcome(report.Processing),
		Analyzer:   outcome(report.Analyzer),
		Sample:     "unavailable",
	}
	if report.Sample.Available() {
		resp.Sample = report.Sample.Kind.Label()
	}
	status := http.StatusOK
	if report.Err() != nil {
		resp.Status = "degraded"
		status = http.StatusBadGateway
	}
	logging.Info(logger, "admin refresh complete",
		slog.String("status", resp.Status),
		slog.Int64(logging.FieldDurationMS, resp.DurationMS),
	)
	writeJSON(w, status, resp, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := requestutil.BearerToken(r)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func outcome(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
