package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// ISODateLayout is the wire format for calendar dates (YYYY-MM-DD).
	ISODateLayout = "2006-01-02"
	// DisplayDateLayout is the day-month-year format used on rendered letters.
	DisplayDateLayout = "02-01-2006"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseISODate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(ISODateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatISODate renders t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// FormatDisplayDate renders t as DD-MM-YYYY.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
