package sources

import (
	"math"
	"strings"
	"time"
)

// DefaultLayouts covers the formats job boards put into feeds and datetime
// attributes.
var DefaultLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
}

// ParseDate tries each layout in order and returns nil when none matches.
func ParseDate(value string, layouts ...string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}

	return nil
}

// FromEpoch converts unix seconds to a UTC time. Zero and invalid values yield nil.
func FromEpoch(epoch float64) *time.Time {
	if epoch <= 0 || math.IsNaN(epoch) || math.IsInf(epoch, 0) {
		return nil
	}
	sec, frac := math.Modf(epoch)
	t := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	return &t
}
