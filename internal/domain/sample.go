package domain

import "encoding/json"

// EventKind names one of the analyzer's sample datasets.
type EventKind string

const (
	KindTemperature EventKind = "TemperatureEvent"
	KindTraffic     EventKind = "TrafficEvent"
)

// EventKinds lists every kind in selection order.
var EventKinds = [...]EventKind{KindTemperature, KindTraffic}

// Other returns the alternate dataset.
func (k EventKind) Other() EventKind {
	if k == KindTemperature {
		return KindTraffic
	}
	return KindTemperature
}

// Label is the short lower-case name used in slot ids and metrics.
func (k EventKind) Label() string {
	switch k {
	case KindTemperature:
		return "temperature"
	case KindTraffic:
		return "traffic"
	default:
		return string(k)
	}
}

// SampleEvent is one analyzer record tagged with the dataset it came from,
// or the Unavailable sentinel when no dataset answered.
type SampleEvent struct {
	Kind    EventKind       `json:"kind,omitempty"`
	Index   int             `json:"index"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

// Unavailable builds the sentinel returned when every attempt failed.
func Unavailable(index int, reason string) SampleEvent {
	return SampleEvent{Index: index, Reason: reason}
}

// Available reports whether the event carries a payload.
func (e SampleEvent) Available() bool {
	return e.Kind != ""
}
