package handlers

import (
	"log/slog"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/preston-bernstein/city-dashboard/internal/board"
	"github.com/preston-bernstein/city-dashboard/internal/dashboard"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
)

// SlotReader exposes the current board contents.
type SlotReader interface {
	Snapshot() map[string]board.Slot
	Get(slot string) (board.Slot, bool)
	Has(slot string) bool
}

// MessageSource exposes live banner messages.
type MessageSource interface {
	Active() []board.Message
}

// DashboardResponse is the body of GET /dashboard.
type DashboardResponse struct {
	Slots         map[string]board.Slot `json:"slots"`
	Messages      []board.Message       `json:"messages"`
	BannerVisible bool                  `json:"bannerVisible"`
	Status        dashboard.Status      `json:"status"`
	Ready         bool                  `json:"ready"`
}

// SlotResponse is the body of GET /dashboard/slots/{id}.
type SlotResponse struct {
	ID string `json:"id"`
	board.Slot
}

// Handler serves the dashboard state and probes.
type Handler struct {
	board    SlotReader
	banner   MessageSource
	logger   *slog.Logger
	statusFn func() dashboard.Status
}

// NewHandler constructs a Handler. banner and statusFn may be nil.
func NewHandler(slots SlotReader, banner MessageSource, logger *slog.Logger, statusFn func() dashboard.Status) *Handler {
	return &Handler{
		board:    slots,
		banner:   banner,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the poll loop has produced fresh data.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// Dashboard returns every written slot, live banner messages and loop status.
func (h *Handler) Dashboard(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	resp := DashboardResponse{
		Slots:    h.board.Snapshot(),
		Messages: []board.Message{},
	}
	if h.banner != nil {
		resp.Messages = h.banner.Active()
		resp.BannerVisible = len(resp.Messages) > 0
	}
	if h.statusFn != nil {
		resp.Status = h.statusFn()
		resp.Ready = resp.Status.IsReady()
	}
	logging.Debug(loggerFromContext(r, h.logger), "served dashboard", slog.Int(logging.FieldCount, len(resp.Slots)))
	writeJSON(w, nethttp.StatusOK, resp, h.logger)
}

// Slot returns a single slot by id. Registered slots that have not been
// written yet return an empty value.
func (h *Handler) Slot(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	// Expect path: /dashboard/slots/{id}
	raw := strings.TrimPrefix(r.URL.Path, "/dashboard/slots/")
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		writeError(w, r, nethttp.StatusBadRequest, "invalid slot id", h.logger)
		return
	}
	if !h.board.Has(id) {
		writeError(w, r, nethttp.StatusNotFound, "slot not found", h.logger)
		return
	}
	slot, _ := h.board.Get(id)
	writeJSON(w, nethttp.StatusOK, SlotResponse{ID: id, Slot: slot}, h.logger)
}
