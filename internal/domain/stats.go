package domain

import (
	"encoding/json"
	"strconv"
)

// StatsResult is a backend /stats body. Its shape is service specific and is
// not validated; readers default missing fields.
type StatsResult map[string]any

// Number returns the numeric value at key, or 0 when absent or not numeric.
func (s StatsResult) Number(key string) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Text returns the string value at key, or "" when absent.
func (s StatsResult) Text(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Sum adds the numeric values of keys, defaulting each to 0.
func (s StatsResult) Sum(keys ...string) float64 {
	var total float64
	for _, k := range keys {
		total += s.Number(k)
	}
	return total
}

// Processing service fields.
const (
	FieldTemperatureReadings = "num_temperature_readings"
	FieldTrafficReadings     = "num_traffic_readings"
	FieldMaxTemperature      = "max_temperature"
	FieldMaxTrafficDensity   = "max_traffic_density"
	FieldLastUpdated         = "last_updated"
)

// Analyzer service fields.
const (
	FieldTemperatureCount = "num_temperature"
	FieldTrafficCount     = "num_traffic"
)
