// Package era5 implements the timestep-alignment and merge engine for
// single-timestep ERA5 files produced by the download and split workflows.
package era5

import (
	"strings"
	"time"
)

// Key identifies one physical instant in the form YYYYMMDD_HHMM. Files from
// the pressure-level, surface-level and precipitation pipelines that carry the
// same key describe the same timestep.
type Key string

// KeyStatus tells how a key was derived from a filename.
type KeyStatus int

const (
	// KeyParsed means both the 8-digit date and 4-digit time tokens were
	// found in the filename.
	KeyParsed KeyStatus = iota
	// KeyFallback means the tokens were missing and the key is a
	// best-effort stem with any kind suffix stripped. Fallback keys
	// usually fail Time() and are excluded from grouping.
	KeyFallback
)

const keyLayout = "20060102_1504"

var kindSuffixes = []string{"_pl", "_sl", "_tp"}

// ExtractKey derives a timestep key from a file stem (basename without
// extension). It never fails: when no date and time tokens are present the
// stem itself, minus a trailing kind suffix, is returned with KeyFallback.
func ExtractKey(stem string) (Key, KeyStatus) {
	var date, clock string
	for _, part := range strings.Split(stem, "_") {
		switch {
		case len(part) == 8 && isDigits(part):
			date = part
		case len(part) == 4 && isDigits(part):
			clock = part
		}
	}
	if date != "" && clock != "" {
		return Key(date + "_" + clock), KeyParsed
	}
	for _, suffix := range kindSuffixes {
		if strings.HasSuffix(stem, suffix) {
			return Key(strings.TrimSuffix(stem, suffix)), KeyFallback
		}
	}
	return Key(stem), KeyFallback
}

// Time parses the key as a UTC date-time. Keys that do not parse are not
// usable for grouping.
func (k Key) Time() (time.Time, error) {
	return time.Parse(keyLayout, string(k))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
