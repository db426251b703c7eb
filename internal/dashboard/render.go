package dashboard

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/timeutil"
)

// Sink receives formatted display values. Unknown slots must be ignored.
type Sink interface {
	SetText(slot, value string)
}

const unavailableEventText = "Failed to fetch event data"

// RenderLastUpdated stamps the cycle start time.
func RenderLastUpdated(sink Sink, at time.Time) {
	sink.SetText(SlotLastUpdated, timeutil.FormatDisplay(at))
}

// RenderProcessing writes the processing slot group, or placeholders on failure.
func RenderProcessing(sink Sink, stats domain.StatsResult, err error) {
	if err != nil {
		for _, slot := range []string{SlotTotalEvents, SlotFailedEvents, SlotSuccessEvents} {
			sink.SetText(slot, ErrorPlaceholder)
		}
		return
	}
	total := stats.Sum(domain.FieldTemperatureReadings, domain.FieldTrafficReadings)
	sink.SetText(SlotTotalEvents, formatNumber(total))
	sink.SetText(SlotSuccessEvents, formatNumber(total))
	sink.SetText(SlotFailedEvents, "0")
	sink.SetText(SlotMaxTemperature, formatNumber(stats.Number(domain.FieldMaxTemperature)))
	sink.SetText(SlotMaxTrafficDensity, formatNumber(stats.Number(domain.FieldMaxTrafficDensity)))
	sink.SetText(SlotProcessingStats, prettyJSON(stats))
}

// RenderAnalyzer writes the analyzer slot group, or placeholders on failure.
func RenderAnalyzer(sink Sink, stats domain.StatsResult, err error) {
	if err != nil {
		for _, slot := range []string{SlotTotalAnalyzed, SlotTempEvents, SlotTrafficEvents} {
			sink.SetText(slot, ErrorPlaceholder)
		}
		return
	}
	sink.SetText(SlotTotalAnalyzed, formatNumber(stats.Sum(domain.FieldTemperatureCount, domain.FieldTrafficCount)))
	sink.SetText(SlotTempEvents, formatNumber(stats.Number(domain.FieldTemperatureCount)))
	sink.SetText(SlotTrafficEvents, formatNumber(stats.Number(domain.FieldTrafficCount)))
	sink.SetText(SlotAnalyzerStats, prettyJSON(stats))
}

// RenderSample writes the random event slots. Unavailable renders an error document.
func RenderSample(sink Sink, ev domain.SampleEvent) {
	if !ev.Available() {
		sink.SetText(SlotRandomEvent, prettyJSON(map[string]string{"error": unavailableEventText}))
		return
	}
	payload := prettyRaw(ev.Payload)
	sink.SetText(SlotRandomEvent, payload)
	sink.SetText(SlotRandomEventKind, ev.Kind.Label())
	sink.SetText(EventSlot(ev.Kind), payload)
}

// formatNumber drops trailing zeros: 8, 12.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func prettyJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func prettyRaw(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
