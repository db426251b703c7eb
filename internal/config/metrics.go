package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

func loadMetrics(src source) MetricsConfig {
	return MetricsConfig{
		Enabled:      src.boolOr(keyMetricsOn, true),
		Port:         src.stringOr(keyMetricsPort, defaultMetricsPort),
		OtlpEndpoint: src.stringOr(keyOtelEndpoint, ""),
		ServiceName:  src.stringOr(keyOtelService, defaultServiceName),
		OtlpInsecure: src.boolOr(keyOtelInsecure, true),
	}
}
