// Package splitter breaks a monthly ERA5 NetCDF file into per-timestep
// files by shelling out to the cdo tool once per timestep.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rtm0/era5pipe/internal/era5"
)

// CDOCommand is the command used for launching cdo. It is looked up in the
// system path on each invocation.
var CDOCommand = "cdo"

// stepsPerDay matches the four synoptic hours retrieved per day.
const stepsPerDay = 4

// Splitter invokes cdo to extract single timesteps.
type Splitter struct {
	Log *slog.Logger
	// Timeout bounds each cdo invocation; zero means no limit.
	Timeout time.Duration
}

// StepsInMonth returns the number of timesteps a monthly file holds.
func StepsInMonth(year int, month time.Month) int {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return days * stepsPerDay
}

// TimestepTime maps a 1-based timestep index within a month to its instant:
// four steps per day at 00, 06, 12 and 18 hours.
func TimestepTime(year int, month time.Month, step int) time.Time {
	day := (step-1)/stepsPerDay + 1
	hour := ((step - 1) % stepsPerDay) * 6
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// SplitMonth extracts every timestep of srcFile into outDir, naming each
// output era5_{YYYYMMDD_HHMM}_{kind}.nc. Individual timestep failures are
// counted and reported at the end; a missing cdo binary aborts immediately.
// Returns the number of files written.
func (s *Splitter) SplitMonth(ctx context.Context, srcFile, outDir string, kind era5.Kind, year int, month time.Month) (int, error) {
	steps := StepsInMonth(year, month)
	s.Log.Info("splitting month file", "src", srcFile, "kind", kind, "steps", steps)

	written := 0
	failed := 0
	for step := 1; step <= steps; step++ {
		when := TimestepTime(year, month, step)
		dest := filepath.Join(outDir, fmt.Sprintf("era5_%s_%s.nc", when.Format("20060102_1504"), kind))
		if err := s.extract(ctx, srcFile, dest, step); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return written, fmt.Errorf("cdo is not installed: %w", err)
			}
			if ctx.Err() != nil {
				return written, ctx.Err()
			}
			s.Log.Error("could not extract timestep", "src", srcFile, "step", step, "err", err)
			failed++
			continue
		}
		written++
	}

	s.Log.Info("split finished", "src", srcFile, "written", written, "failed", failed)
	if failed > 0 {
		return written, fmt.Errorf("%d of %d timesteps failed", failed, steps)
	}
	return written, nil
}

func (s *Splitter) extract(ctx context.Context, src, dest string, step int) error {
	tctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(tctx, CDOCommand, fmt.Sprintf("seltimestep,%d", step), src, dest)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		// Do not leave a truncated output behind.
		os.Remove(dest)
		return err
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("cdo reported success but %s does not exist", dest)
	}
	return nil
}
