package upstream

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
	"github.com/preston-bernstein/city-dashboard/internal/metrics"
)

const defaultIndexRange = 10

// Picker returns a value in [0, n). It is the fetcher's only source of randomness.
type Picker func(n int) int

// SampleConfig tunes sample selection.
type SampleConfig struct {
	// IndexRange bounds the random record index; <= 0 uses 10.
	IndexRange int
	// Picker defaults to math/rand/v2.IntN.
	Picker Picker
}

// SampleFetcher pulls one random analyzer record per call, falling back to the
// other dataset exactly once.
type SampleFetcher struct {
	client     EventClient
	endpoint   domain.ServiceEndpoint
	indexRange int
	pick       Picker
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// NewSampleFetcher constructs a SampleFetcher against the analyzer endpoint.
func NewSampleFetcher(client EventClient, endpoint domain.ServiceEndpoint, cfg SampleConfig, logger *slog.Logger, recorder *metrics.Recorder) *SampleFetcher {
	if cfg.IndexRange <= 0 {
		cfg.IndexRange = defaultIndexRange
	}
	if cfg.Picker == nil {
		cfg.Picker = rand.IntN
	}
	return &SampleFetcher{
		client:     client,
		endpoint:   endpoint,
		indexRange: cfg.IndexRange,
		pick:       cfg.Picker,
		logger:     logger,
		metrics:    recorder,
	}
}

// FetchSample never returns an error: a total failure yields domain.Unavailable.
func (f *SampleFetcher) FetchSample(ctx context.Context) domain.SampleEvent {
	first := domain.EventKinds[f.pickIn(len(domain.EventKinds))]
	index := f.pickIn(f.indexRange)
	kinds := [2]domain.EventKind{first, first.Other()}

	var (
		attempt int
		event   domain.SampleEvent
	)
	op := func() error {
		kind := kinds[attempt]
		attempt++
		payload, err := f.client.FetchEvent(ctx, f.endpoint, kind, index)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		event = domain.SampleEvent{Kind: kind, Index: index, Payload: payload}
		return nil
	}

	// Zero delay, one retry: the alternate dataset is tried immediately and the
	// next poll cycle is the only further retry.
	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1), ctx)
	err := backoff.RetryNotify(op, policy, func(err error, _ time.Duration) {
		f.metrics.RecordSampleFallback(string(first))
		logging.Debug(f.logger, "sample fetch falling back",
			slog.String(logging.FieldKind, string(kinds[1])),
			slog.Int(logging.FieldIndex, index),
			"error", err,
		)
	})
	if err != nil {
		f.metrics.RecordSampleUnavailable()
		logging.Warn(f.logger, "sample event unavailable",
			slog.Int(logging.FieldIndex, index),
			slog.Int("attempts", attempt),
			"error", err,
		)
		return domain.Unavailable(index, err.Error())
	}
	return event
}

func (f *SampleFetcher) pickIn(n int) int {
	v := f.pick(n)
	if v < 0 || v >= n {
		return 0
	}
	return v
}
