package timeutil

import "time"

// DisplayLayout is the wall-clock format shown in the lastUpdated slot and banner messages.
const DisplayLayout = "2006-01-02 15:04:05"

// FormatDisplay formats t in its current location.
func FormatDisplay(t time.Time) string {
	return t.Format(DisplayLayout)
}

// ParseDisplay parses a DisplayLayout string in loc; nil means UTC.
func ParseDisplay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DisplayLayout, value, loc)
}
