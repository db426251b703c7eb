package upstream

import (
	"context"
	"encoding/json"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
)

// StatsClient fetches a service's /stats document.
// Implementations never panic and report every failure as a *FetchError.
type StatsClient interface {
	FetchStats(ctx context.Context, endpoint domain.ServiceEndpoint) (domain.StatsResult, error)
}

// EventClient fetches one sample record of the given kind.
type EventClient interface {
	FetchEvent(ctx context.Context, endpoint domain.ServiceEndpoint, kind domain.EventKind, index int) (json.RawMessage, error)
}

// Client combines all upstream capabilities.
type Client interface {
	StatsClient
	EventClient
}
