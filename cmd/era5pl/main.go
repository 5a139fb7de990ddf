// Command era5pl downloads monthly ERA5 pressure-level files from the
// climate archive and splits them into per-timestep files under pl/.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/rtm0/era5pipe/internal/cds"
	"github.com/rtm0/era5pipe/internal/manifest"
	"github.com/rtm0/era5pipe/internal/splitter"
	"github.com/rtm0/era5pipe/internal/workflow"
)

const defaultAPIURL = "https://cds.climate.copernicus.eu/api/v2"

var (
	baseDir    = flag.String("base-dir", "data", "working directory for downloads and split files")
	startYear  = flag.Int("start-year", 2018, "first year to fetch")
	startMonth = flag.Int("start-month", 1, "first month to fetch (1-12)")
	endYear    = flag.Int("end-year", 2018, "last year to fetch")
	endMonth   = flag.Int("end-month", 12, "last month to fetch (1-12)")
)

func main() {
	flag.Parse()
	godotenv.Load()

	logger, closeLog, err := newLogger(*baseDir, "era5pl")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	apiURL := os.Getenv("CDSAPI_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	key := os.Getenv("CDSAPI_KEY")
	if key == "" {
		logger.Error("CDSAPI_KEY is not set")
		os.Exit(1)
	}

	cli, err := cds.NewClient(logger, apiURL, key)
	if err != nil {
		logger.Error("Could not create archive client", "err", err)
		os.Exit(1)
	}

	man, err := manifest.Open(filepath.Join(*baseDir, "manifest.db"))
	if err != nil {
		logger.Error("Could not open manifest", "err", err)
		os.Exit(1)
	}
	defer man.Close()

	w := &workflow.PL{
		Log:      logger,
		CDS:      cli,
		Split:    &splitter.Splitter{Log: logger},
		Manifest: man,
		BaseDir:  *baseDir,
	}

	months := workflow.MonthRange(*startYear, time.Month(*startMonth), *endYear, time.Month(*endMonth))
	if len(months) == 0 {
		logger.Error("Empty month range", "start", fmt.Sprintf("%04d-%02d", *startYear, *startMonth), "end", fmt.Sprintf("%04d-%02d", *endYear, *endMonth))
		os.Exit(1)
	}
	logger.Info("starting pressure-level run", "months", len(months), "first", months[0], "last", months[len(months)-1])

	if err := w.Run(context.Background(), months); err != nil {
		logger.Error("Run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("done")
}

// newLogger logs to stdout and to a timestamped file under <base>/logs/.
func newLogger(base, tool string) (*slog.Logger, func(), error) {
	logsDir := filepath.Join(base, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, nil, err
	}
	name := fmt.Sprintf("%s_%s.log", tool, time.Now().UTC().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(logsDir, name))
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, f), nil))
	return logger, func() { f.Close() }, nil
}
