package config

import "time"

// envPrefix scopes environment overrides; nested keys use a double underscore
// (DASHBOARD_PROCESSING__URL -> processing.url).
const envPrefix = "DASHBOARD_"

const (
	keyPort             = "port"
	keyPollInterval     = "poll_interval"
	keyOverlapPolicy    = "overlap_policy"
	keyHTTPTimeout      = "http_timeout"
	keyBannerTTL        = "banner_ttl"
	keySampleIndexRange = "sample_index_range"
	keyProcessingURL    = "processing.url"
	keyAnalyzerURL      = "analyzer.url"
	keyMetricsOn        = "metrics.enabled"
	keyMetricsPort      = "metrics.port"
	keyOtelEndpoint     = "metrics.otlp_endpoint"
	keyOtelService      = "metrics.service_name"
	keyOtelInsecure     = "metrics.otlp_insecure"
	keyLogLevel         = "log.level"
	keyLogFormat        = "log.format"
	keyAdminToken       = "admin_token"
	keySource           = "source"
)

// Upstream sources.
const (
	SourceHTTP    = "http"
	SourceFixture = "fixture"
)

// Overlap policies for poll cycles that outlive the interval.
const (
	OverlapAllow = "allow"
	OverlapSkip  = "skip"
)

const (
	defaultPort = "4000"
	// Matches the refresh cadence of the browser dashboard this service replaces.
	defaultPollInterval = 4 * Duration(time.Second)
	// Kept below the poll interval so a cycle normally joins before the next tick.
	defaultHTTPTimeout      = 3 * Duration(time.Second)
	defaultBannerTTL        = 7 * Duration(time.Second)
	defaultSampleIndexRange = 10
	defaultOverlapPolicy    = OverlapAllow
	defaultProcessingURL    = "http://localhost/processing"
	defaultAnalyzerURL      = "http://localhost/analyzer"
	defaultMetricsPort      = "9090"
	defaultServiceName      = "city-dashboard"
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
	defaultSource           = SourceHTTP
)
