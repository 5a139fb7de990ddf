// Package workflow drives the monthly download → split → cleanup pipelines
// that produce the single-timestep files the merge tool consumes.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/rtm0/era5pipe/internal/cds"
	"github.com/rtm0/era5pipe/internal/era5"
	"github.com/rtm0/era5pipe/internal/splitter"
)

// Downloader turns a request spec into a file on disk. The archive client
// is a black box to the workflows.
type Downloader interface {
	Retrieve(ctx context.Context, dataset string, req cds.Request, dest string) error
}

// Manifest records finished month stages so reruns can skip them.
type Manifest interface {
	StageDone(month, stage string) (bool, error)
	MarkStage(month, stage, path string) error
}

const (
	stageDownloaded = "downloaded"
	stageSplit      = "split"
)

// PL is the pressure-level workflow: one monthly NetCDF per month, split
// into per-timestep files under pl/, the month file removed afterwards.
type PL struct {
	Log      *slog.Logger
	CDS      Downloader
	Split    *splitter.Splitter
	Manifest Manifest // optional
	BaseDir  string
}

func (w *PL) plDir() string { return filepath.Join(w.BaseDir, "pl") }

// Run processes the given months. With more than one month the download of
// month N+1 overlaps the split of month N: two units of work joined before
// the next iteration, never more than one download and one split in flight.
// A failure in either branch surfaces only after both are joined.
func (w *PL) Run(ctx context.Context, months []Month) error {
	if len(months) == 0 {
		return nil
	}
	if err := os.MkdirAll(w.plDir(), 0o755); err != nil {
		return err
	}

	if len(months) == 1 {
		file, err := w.download(ctx, months[0])
		if err != nil {
			return err
		}
		return w.splitAndClean(ctx, months[0], file)
	}

	prevFile, err := w.download(ctx, months[0])
	if err != nil {
		return err
	}
	for i := 1; i < len(months); i++ {
		prev, cur := months[i-1], months[i]
		// The handoff between iterations is this explicit value, not
		// shared state captured by both branches.
		file := prevFile

		var nextFile string
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			f, err := w.download(gctx, cur)
			if err != nil {
				return err
			}
			nextFile = f
			return nil
		})
		g.Go(func() error {
			return w.splitAndClean(gctx, prev, file)
		})
		if err := g.Wait(); err != nil {
			return err
		}
		prevFile = nextFile
	}
	return w.splitAndClean(ctx, months[len(months)-1], prevFile)
}

// download fetches one month's file unless it is already present or its
// split stage is already recorded. It returns the path of the file to
// split, or "" when there is nothing left to do for the month.
func (w *PL) download(ctx context.Context, m Month) (string, error) {
	if w.Manifest != nil {
		done, err := w.Manifest.StageDone(m.String(), stageSplit)
		if err != nil {
			return "", err
		}
		if done {
			w.Log.Info("month already split, skipping download", "month", m)
			return "", nil
		}
	}

	dest := filepath.Join(w.BaseDir, fmt.Sprintf("era5_%s.nc", m))
	if fi, err := os.Stat(dest); err == nil {
		w.Log.Info("month file already exists, skipping download", "month", m, "file", dest, "bytes", fi.Size())
		return dest, nil
	}

	w.Log.Info("downloading pressure-level month", "month", m, "dest", dest)
	if err := w.CDS.Retrieve(ctx, cds.PressureLevelDataset, cds.PressureLevelRequest(m.Year, m.Month), dest); err != nil {
		return "", fmt.Errorf("download %s: %w", m, err)
	}
	if w.Manifest != nil {
		if err := w.Manifest.MarkStage(m.String(), stageDownloaded, dest); err != nil {
			w.Log.Warn("could not record download", "month", m, "err", err)
		}
	}
	return dest, nil
}

// splitAndClean splits one month file into pl/ and removes the original on
// full success. On a split failure the month file is kept for manual
// inspection.
func (w *PL) splitAndClean(ctx context.Context, m Month, file string) error {
	if file == "" {
		return nil
	}
	if _, err := w.Split.SplitMonth(ctx, file, w.plDir(), era5.PressureLevel, m.Year, m.Month); err != nil {
		w.Log.Warn("split failed, keeping original month file", "month", m, "file", file)
		return fmt.Errorf("split %s: %w", m, err)
	}
	if err := os.Remove(file); err != nil {
		return fmt.Errorf("cleanup %s: %w", file, err)
	}
	w.Log.Info("removed original month file", "month", m, "file", file)
	if w.Manifest != nil {
		if err := w.Manifest.MarkStage(m.String(), stageSplit, file); err != nil {
			w.Log.Warn("could not record split", "month", m, "err", err)
		}
	}
	return nil
}
