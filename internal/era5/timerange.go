package era5

import (
	"fmt"
	"time"
)

// Accepted literal formats for -start-time and -end-time.
var boundLayouts = []string{"2006-01-02 15:04", "20060102_1504"}

// ParseBound parses a user-supplied time bound. A literal matching neither
// accepted format is the one fatal input of a merge run.
func ParseBound(s string) (time.Time, error) {
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("time bound %q matches neither %q nor %q", s, boundLayouts[0], boundLayouts[1])
}

// TimeRange is an optional inclusive time window. Nil bounds are open.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls within the range, inclusive on both ends.
// A start after the end yields an empty range, not an error.
func (r TimeRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (r TimeRange) IsOpen() bool {
	return r.Start == nil && r.End == nil
}
