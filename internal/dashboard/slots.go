package dashboard

import "github.com/preston-bernstein/city-dashboard/internal/domain"

// Display slot ids.
const (
	SlotTotalEvents       = "totalEvents"
	SlotFailedEvents      = "failedEvents"
	SlotSuccessEvents     = "successEvents"
	SlotLastUpdated       = "lastUpdated"
	SlotMaxTemperature    = "maxTemperature"
	SlotMaxTrafficDensity = "maxTrafficDensity"
	SlotProcessingStats   = "processing-stats"

	SlotTotalAnalyzed = "totalAnalyzed"
	SlotTempEvents    = "tempEvents"
	SlotTrafficEvents = "trafficEvents"
	SlotAnalyzerStats = "analyzer-stats"

	SlotRandomEvent      = "randomEvent"
	SlotRandomEventKind  = "randomEventKind"
	SlotEventTemperature = "event-temperature"
	SlotEventTraffic     = "event-traffic"
)

// ErrorPlaceholder replaces values whose source fetch failed.
const ErrorPlaceholder = "Error"

// Slots lists every slot the dashboard writes.
func Slots() []string {
	return []string{
		SlotTotalEvents, SlotFailedEvents, SlotSuccessEvents, SlotLastUpdated,
		SlotMaxTemperature, SlotMaxTrafficDensity, SlotProcessingStats,
		SlotTotalAnalyzed, SlotTempEvents, SlotTrafficEvents, SlotAnalyzerStats,
		SlotRandomEvent, SlotRandomEventKind, SlotEventTemperature, SlotEventTraffic,
	}
}

// EventSlot is the per-kind slot for a sample payload.
func EventSlot(kind domain.EventKind) string {
	return "event-" + kind.Label()
}
