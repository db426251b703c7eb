package upstream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
	"github.com/preston-bernstein/city-dashboard/internal/metrics"
)

// instrumentedClient wraps a Client with per-upstream metrics and failure logs.
type instrumentedClient struct {
	inner   Client
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewInstrumentedClient records every call made through inner. A nil recorder or logger disables that side.
func NewInstrumentedClient(inner Client, logger *slog.Logger, recorder *metrics.Recorder) Client {
	return &instrumentedClient{
		inner:   inner,
		logger:  logger,
		metrics: recorder,
	}
}

func (c *instrumentedClient) FetchStats(ctx context.Context, endpoint domain.ServiceEndpoint) (domain.StatsResult, error) {
	start := time.Now()
	res, err := c.inner.FetchStats(ctx, endpoint)
	c.observe(ctx, endpoint.Name(), time.Since(start), err)
	return res, err
}

func (c *instrumentedClient) FetchEvent(ctx context.Context, endpoint domain.ServiceEndpoint, kind domain.EventKind, index int) (json.RawMessage, error) {
	start := time.Now()
	payload, err := c.inner.FetchEvent(ctx, endpoint, kind, index)
	c.observe(ctx, eventUpstream(endpoint, kind), time.Since(start), err,
		slog.String(logging.FieldKind, string(kind)),
		slog.Int(logging.FieldIndex, index),
	)
	return payload, err
}

func (c *instrumentedClient) observe(ctx context.Context, upstream string, elapsed time.Duration, err error, args ...any) {
	c.metrics.RecordFetch(upstream, elapsed, err)

	args = append(args, slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()))
	if err != nil {
		args = append(args, slog.String(logging.FieldFailure, string(KindOf(err))), "error", err)
		logWithUpstream(ctx, c.logger, slog.LevelWarn, upstream, "upstream fetch failed", args...)
		return
	}
	logWithUpstream(ctx, c.logger, slog.LevelDebug, upstream, "upstream fetch ok", args...)
}

func eventUpstream(endpoint domain.ServiceEndpoint, kind domain.EventKind) string {
	return endpoint.Name() + "." + kind.Label()
}
