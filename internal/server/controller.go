package server

import (
	"context"

	"github.com/preston-bernstein/city-dashboard/internal/dashboard"
)

// Controller defines the minimal poll loop behavior needed by the server.
type Controller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() dashboard.Status
}
