package era5

import (
	"fmt"
	"log/slog"
	"os"
)

// MergeRecorder receives provenance for each successfully merged timestep.
type MergeRecorder interface {
	RecordMerge(key string, variables int, path string) error
}

// Merger drives the scan → group → flatten → write cycle. It holds no state
// across groups; each combined record is independent.
type Merger struct {
	Log      *slog.Logger
	Output   string
	Recorder MergeRecorder // optional
}

// Summary reports the outcome of one merge run.
type Summary struct {
	Found  int
	Merged int
}

// Run merges all complete groups found under the three kind directories.
// Incomplete groups and per-group processing failures are logged and
// skipped; they never abort the batch.
func (m *Merger) Run(plDir, slDir, tpDir string, r TimeRange) (Summary, error) {
	var sum Summary

	if err := os.MkdirAll(m.Output, 0o755); err != nil {
		return sum, fmt.Errorf("output directory: %w", err)
	}

	dirs := map[Kind]string{
		PressureLevel: plDir,
		SingleLevel:   slDir,
		Precipitation: tpDir,
	}
	groups, err := Assemble(m.Log, dirs, r)
	if err != nil {
		return sum, err
	}
	sum.Found = len(groups)
	m.Log.Info("grouped timesteps", "groups", len(groups), "rangeLimited", !r.IsOpen())

	for _, g := range groups {
		if !g.Complete() {
			m.Log.Warn("skipping incomplete group", "key", g.Key, "missing", missingKinds(g))
			continue
		}
		if err := m.mergeGroup(g); err != nil {
			m.Log.Error("could not merge group", "key", g.Key, "err", err)
			continue
		}
		sum.Merged++
	}

	m.Log.Info("merge finished", "merged", sum.Merged, "found", sum.Found)
	return sum, nil
}

func (m *Merger) mergeGroup(g *Group) error {
	m.Log.Info("merging", "key", g.Key)

	f, err := Flatten(g)
	if err != nil {
		return err
	}
	path, err := WriteCombined(m.Output, g.Key, f)
	if err != nil {
		return err
	}
	m.Log.Info("wrote combined record", "path", path, "variables", len(f.Vars))

	// Best effort: a count mismatch keeps the artifact.
	if _, err := VerifyCombined(path, len(f.Vars)); err != nil {
		m.Log.Warn("verification failed", "key", g.Key, "err", err)
	}
	if m.Recorder != nil {
		if err := m.Recorder.RecordMerge(string(g.Key), len(f.Vars), path); err != nil {
			m.Log.Warn("could not record merge", "key", g.Key, "err", err)
		}
	}
	return nil
}

func missingKinds(g *Group) []string {
	var missing []string
	for _, k := range kindOrder {
		if g.Paths[k] == "" {
			missing = append(missing, string(k))
		}
	}
	return missing
}
