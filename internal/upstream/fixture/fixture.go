package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/upstream"
)

const eventsPerKind = 10

// Client serves a deterministic city dataset without any backend, for local runs and demos.
type Client struct {
	now func() time.Time
}

// New creates a fixture client with a time source.
func New() *Client {
	return &Client{now: time.Now}
}

// FetchStats returns canned stats for the "processing" and "analyzer" endpoints.
func (c *Client) FetchStats(ctx context.Context, endpoint domain.ServiceEndpoint) (domain.StatsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &upstream.FetchError{Upstream: endpoint.Name(), Kind: upstream.FailureTransport, Err: err}
	}
	switch endpoint.Name() {
	case "processing":
		return domain.StatsResult{
			domain.FieldTemperatureReadings: float64(eventsPerKind),
			domain.FieldTrafficReadings:     float64(eventsPerKind),
			domain.FieldMaxTemperature:      34.5,
			domain.FieldMaxTrafficDensity:   88.0,
			domain.FieldLastUpdated:         c.now().UTC().Format(time.RFC3339),
		}, nil
	case "analyzer":
		return domain.StatsResult{
			domain.FieldTemperatureCount: float64(eventsPerKind),
			domain.FieldTrafficCount:     float64(eventsPerKind),
		}, nil
	default:
		return nil, &upstream.FetchError{
			Upstream:   endpoint.Name(),
			Kind:       upstream.FailureHTTPStatus,
			StatusCode: 404,
			Message:    "no fixture stats for " + endpoint.Name(),
		}
	}
}

// FetchEvent returns a synthetic record for indexes in [0, 10) and a 404-style failure otherwise.
func (c *Client) FetchEvent(ctx context.Context, endpoint domain.ServiceEndpoint, kind domain.EventKind, index int) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &upstream.FetchError{Upstream: endpoint.Name(), Kind: upstream.FailureTransport, Err: err}
	}
	if index < 0 || index >= eventsPerKind {
		return nil, &upstream.FetchError{
			Upstream:   endpoint.Name(),
			Kind:       upstream.FailureHTTPStatus,
			StatusCode: 404,
			Message:    fmt.Sprintf("No message at index %d!", index),
		}
	}

	var record map[string]any
	switch kind {
	case domain.KindTemperature:
		record = map[string]any{"sensor_id": fmt.Sprintf("temp-%02d", index), "temperature": 18.0 + float64(index)*1.5}
	case domain.KindTraffic:
		record = map[string]any{"sensor_id": fmt.Sprintf("traffic-%02d", index), "density": 10 + index*7}
	default:
		return nil, &upstream.FetchError{Upstream: endpoint.Name(), Kind: upstream.FailureHTTPStatus, StatusCode: 404, Message: "unknown event kind " + string(kind)}
	}
	record["timestamp"] = c.now().UTC().Format(time.RFC3339)
	return json.Marshal(record)
}
