package kobodb

import (
	"strings"
	"time"
)

// Timestamp layouts seen in device databases across firmware versions.
// A trailing "Z" is normalized to an explicit UTC offset before parsing.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a device timestamp string. Naive timestamps are
// interpreted as UTC. Returns false for unparseable input; callers decide
// whether that drops the row or substitutes a default.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
