package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

// source resolves keys from a koanf tree; a zero source yields every default.
type source struct {
	ko *koanf.Koanf
}

func newSource(path string) (source, error) {
	ko := koanf.New(".")

	if path != "" {
		if err := ko.Load(file.Provider(path), parserFor(path)); err != nil {
			return source{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := ko.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return source{}, fmt.Errorf("config: load env: %w", err)
	}
	return source{ko: ko}, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

func (s source) raw(key string) string {
	if s.ko == nil || !s.ko.Exists(key) {
		return ""
	}
	return strings.TrimSpace(s.ko.String(key))
}

func (s source) stringOr(key, defaultValue string) string {
	if val := s.raw(key); val != "" {
		return val
	}
	return defaultValue
}

func (s source) durationOr(key string, defaultValue time.Duration) time.Duration {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func (s source) intOr(key string, defaultValue int) int {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}

func (s source) boolOr(key string, defaultValue bool) bool {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}
	if raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") {
		return true
	}
	if raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no") {
		return false
	}
	return defaultValue
}
