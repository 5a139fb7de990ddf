// Command era5merge combines per-timestep pressure-level, surface-level and
// precipitation NetCDF files into one flattened record per timestep.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/rtm0/era5pipe/internal/era5"
	"github.com/rtm0/era5pipe/internal/manifest"
)

var (
	plPath       = flag.String("pl-path", "pl", "directory with per-timestep pressure-level files")
	slPath       = flag.String("sl-path", "sl", "directory with per-timestep surface-level files")
	tpPath       = flag.String("tp-path", "tp", "directory with per-timestep precipitation files")
	outputPath   = flag.String("output-path", "data", "directory for combined era5_<key>.nc records")
	startTime    = flag.String("start-time", "", `only merge timesteps at or after this bound ("2006-01-02 15:04" or "20060102_1504")`)
	endTime      = flag.String("end-time", "", "only merge timesteps at or before this bound (same formats)")
	manifestPath = flag.String("manifest", "", "optional SQLite manifest recording merged keys")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var r era5.TimeRange
	if *startTime != "" {
		t, err := era5.ParseBound(*startTime)
		if err != nil {
			logger.Error("Could not parse -start-time", "err", err)
			os.Exit(1)
		}
		r.Start = &t
	}
	if *endTime != "" {
		t, err := era5.ParseBound(*endTime)
		if err != nil {
			logger.Error("Could not parse -end-time", "err", err)
			os.Exit(1)
		}
		r.End = &t
	}

	m := &era5.Merger{Log: logger, Output: *outputPath}
	if *manifestPath != "" {
		db, err := manifest.Open(*manifestPath)
		if err != nil {
			logger.Error("Could not open manifest", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		m.Recorder = db
	}

	era5.Inspect(logger, *plPath, *slPath, *tpPath)

	sum, err := m.Run(*plPath, *slPath, *tpPath, r)
	if err != nil {
		logger.Error("Merge run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("done", "found", sum.Found, "merged", sum.Merged, "skipped", sum.Found-sum.Merged)
}
