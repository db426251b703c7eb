package server

import (
	"log/slog"

	"github.com/preston-bernstein/city-dashboard/internal/config"
	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/metrics"
	"github.com/preston-bernstein/city-dashboard/internal/upstream"
	"github.com/preston-bernstein/city-dashboard/internal/upstream/fixture"
	"github.com/preston-bernstein/city-dashboard/internal/upstream/httpclient"
)

// clientFactory assembles the upstream client with the shared instrumentation wrapper.
type clientFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newClientFactory(logger *slog.Logger, recorder *metrics.Recorder) clientFactory {
	return clientFactory{logger: logger, metrics: recorder}
}

func (f clientFactory) build(cfg config.Config) upstream.Client {
	return f.wrap(selectClient(cfg))
}

func (f clientFactory) wrap(base upstream.Client) upstream.Client {
	return upstream.NewInstrumentedClient(base, f.logger, f.metrics)
}

func selectClient(cfg config.Config) upstream.Client {
	if cfg.Source == config.SourceFixture {
		return fixture.New()
	}
	return httpclient.NewClient(httpclient.Config{Timeout: cfg.HTTPTimeout})
}

// buildEndpoints validates both backend locations.
func buildEndpoints(cfg config.Config) (processing, analyzer domain.ServiceEndpoint, err error) {
	processing, err = domain.NewServiceEndpoint(upstreamName(cfg.Processing.Name, "processing"), cfg.Processing.URL)
	if err != nil {
		return processing, analyzer, err
	}
	analyzer, err = domain.NewServiceEndpoint(upstreamName(cfg.Analyzer.Name, "analyzer"), cfg.Analyzer.URL)
	return processing, analyzer, err
}

func upstreamName(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return raw
}
