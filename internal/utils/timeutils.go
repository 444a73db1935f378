package utils

import (
	"fmt"
	"strings"
	"time"
)

// FailureTimestampLayout is the month/day/year hour:minute format used by the plant's
// maintenance exports.
const FailureTimestampLayout = "01/02/2006 15:04"

var timestampLayouts = []string{
	FailureTimestampLayout,
	"1/2/2006 15:04",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts the maintenance export layout or RFC3339. Values without a zone
// are interpreted in UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q: expected %s or RFC3339", value, FailureTimestampLayout)
}

// HoursBetween returns end-start in hours. Unlike a duration it keeps the sign, so a start
// after end yields a negative value.
func HoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}
