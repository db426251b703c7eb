package config

import "strings"

// Config holds runtime configuration for the dashboard.
type Config struct {
	Port             string
	PollInterval     Duration
	OverlapPolicy    string
	HTTPTimeout      Duration
	BannerTTL        Duration
	SampleIndexRange int
	Processing       UpstreamConfig
	Analyzer         UpstreamConfig
	Metrics          MetricsConfig
	Log              LogConfig
	Source           string // http or fixture
	AdminToken       string // empty disables POST /admin/refresh
}

// UpstreamConfig locates one backend service.
type UpstreamConfig struct {
	Name string
	URL  string
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg, err := LoadFile("")
	if err != nil {
		// Only a config file can fail to load; without one the env source is infallible.
		return fromSource(source{})
	}
	return cfg
}

// LoadFile layers environment variables over the TOML or YAML file at path.
// An empty path skips the file.
func LoadFile(path string) (Config, error) {
	src, err := newSource(path)
	if err != nil {
		return Config{}, err
	}
	return fromSource(src), nil
}

func fromSource(src source) Config {
	return Config{
		Port:             src.stringOr(keyPort, defaultPort),
		PollInterval:     src.durationOr(keyPollInterval, defaultPollInterval),
		OverlapPolicy:    overlapPolicy(src.stringOr(keyOverlapPolicy, defaultOverlapPolicy)),
		HTTPTimeout:      src.durationOr(keyHTTPTimeout, defaultHTTPTimeout),
		BannerTTL:        src.durationOr(keyBannerTTL, defaultBannerTTL),
		SampleIndexRange: src.intOr(keySampleIndexRange, defaultSampleIndexRange),
		Processing: UpstreamConfig{
			Name: "processing",
			URL:  src.stringOr(keyProcessingURL, defaultProcessingURL),
		},
		Analyzer: UpstreamConfig{
			Name: "analyzer",
			URL:  src.stringOr(keyAnalyzerURL, defaultAnalyzerURL),
		},
		Metrics: loadMetrics(src),
		Log: LogConfig{
			Level:  src.stringOr(keyLogLevel, defaultLogLevel),
			Format: src.stringOr(keyLogFormat, defaultLogFormat),
		},
		Source:     sourceName(src.stringOr(keySource, defaultSource)),
		AdminToken: src.stringOr(keyAdminToken, ""),
	}
}

func sourceName(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), SourceFixture) {
		return SourceFixture
	}
	return SourceHTTP
}

func overlapPolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case OverlapSkip:
		return OverlapSkip
	case OverlapAllow:
		return OverlapAllow
	default:
		return defaultOverlapPolicy
	}
}
