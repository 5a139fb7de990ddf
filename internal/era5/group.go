package era5

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the pipeline a single-timestep file came from.
type Kind string

const (
	PressureLevel Kind = "pl"
	SingleLevel   Kind = "sl"
	Precipitation Kind = "tp"
)

// kindOrder fixes the scan order; it affects diagnostics only, the grouping
// itself is a pure join on key.
var kindOrder = []Kind{PressureLevel, SingleLevel, Precipitation}

// Group collects the files of one timestep across the three pipelines.
type Group struct {
	Key   Key
	Paths map[Kind]string
}

// Complete reports whether all three kinds are present. Only complete groups
// are ever merged; partial data is never silently combined.
func (g *Group) Complete() bool {
	for _, k := range kindOrder {
		if g.Paths[k] == "" {
			return false
		}
	}
	return true
}

// Assemble scans the three kind directories for *.nc files, derives timestep
// keys, filters by the time range and joins files with equal keys into
// groups. Groups come back in first-seen order. Files whose key does not
// parse as a date-time are dropped with info-level visibility only. A second
// file of the same kind and key silently replaces the first (last seen wins).
func Assemble(log *slog.Logger, dirs map[Kind]string, r TimeRange) ([]*Group, error) {
	byKey := make(map[Key]*Group)
	var ordered []*Group

	for _, kind := range kindOrder {
		paths, err := filepath.Glob(filepath.Join(dirs[kind], "*.nc"))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		for _, path := range paths {
			base := filepath.Base(path)
			stem := strings.TrimSuffix(base, filepath.Ext(base))
			key, status := ExtractKey(stem)
			if status == KeyFallback {
				log.Info("filename has no date/time tokens, using fallback key", "file", base, "key", key)
			}
			t, err := key.Time()
			if err != nil {
				log.Info("skipping file with unparseable timestep key", "file", base, "key", key)
				continue
			}
			if !r.Contains(t) {
				continue
			}
			g := byKey[key]
			if g == nil {
				g = &Group{Key: key, Paths: make(map[Kind]string)}
				byKey[key] = g
				ordered = append(ordered, g)
			}
			g.Paths[kind] = path
		}
	}
	return ordered, nil
}
