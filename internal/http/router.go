package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/city-dashboard/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux. A nil admin handler leaves /admin unrouted.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/dashboard", handler.Dashboard)
	mux.HandleFunc("/dashboard/slots/", handler.Slot)
	if admin != nil {
		mux.HandleFunc("/admin/refresh", admin.Refresh)
	}
	return mux
}
