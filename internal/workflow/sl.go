package workflow

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtm0/era5pipe/internal/cds"
	"github.com/rtm0/era5pipe/internal/era5"
	"github.com/rtm0/era5pipe/internal/splitter"
)

// SL is the surface-level workflow: one monthly zip per month, whose NetCDF
// members are classified by name and split into sl/ and tp/. Months are
// processed sequentially.
type SL struct {
	Log      *slog.Logger
	CDS      Downloader
	Split    *splitter.Splitter
	Manifest Manifest // optional
	BaseDir  string
}

func (w *SL) slDir() string        { return filepath.Join(w.BaseDir, "sl") }
func (w *SL) tpDir() string        { return filepath.Join(w.BaseDir, "tp") }
func (w *SL) downloadsDir() string { return filepath.Join(w.BaseDir, "downloads") }

// Run processes the given months in order.
func (w *SL) Run(ctx context.Context, months []Month) error {
	for _, d := range []string{w.slDir(), w.tpDir(), w.downloadsDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	for _, m := range months {
		if err := w.processMonth(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (w *SL) processMonth(ctx context.Context, m Month) error {
	if w.Manifest != nil {
		done, err := w.Manifest.StageDone("sl_"+m.String(), stageSplit)
		if err != nil {
			return err
		}
		if done {
			w.Log.Info("surface month already organized, skipping", "month", m)
			return nil
		}
	}

	zipPath := filepath.Join(w.downloadsDir(), fmt.Sprintf("era5_sl_%s.zip", m))
	if _, err := os.Stat(zipPath); err != nil {
		w.Log.Info("downloading surface-level month", "month", m, "dest", zipPath)
		if err := w.CDS.Retrieve(ctx, cds.SingleLevelDataset, cds.SingleLevelRequest(m.Year, m.Month), zipPath); err != nil {
			return fmt.Errorf("download %s: %w", m, err)
		}
		if w.Manifest != nil {
			if err := w.Manifest.MarkStage("sl_"+m.String(), stageDownloaded, zipPath); err != nil {
				w.Log.Warn("could not record download", "month", m, "err", err)
			}
		}
	} else {
		w.Log.Info("surface month archive already exists, skipping download", "month", m, "file", zipPath)
	}

	if err := w.organize(ctx, zipPath, m); err != nil {
		return err
	}
	if w.Manifest != nil {
		if err := w.Manifest.MarkStage("sl_"+m.String(), stageSplit, zipPath); err != nil {
			w.Log.Warn("could not record split", "month", m, "err", err)
		}
	}
	return nil
}

// organize extracts the month archive and routes each NetCDF member by
// name: accumulated fields become precipitation files, instantaneous fields
// become surface-level files. The archive and scratch area are removed once
// every member is placed.
func (w *SL) organize(ctx context.Context, zipPath string, m Month) error {
	extractDir := filepath.Join(w.downloadsDir(), "temp_extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(extractDir)

	members, err := unzip(zipPath, extractDir)
	if err != nil {
		return fmt.Errorf("extract %s: %w", zipPath, err)
	}

	processed := 0
	for _, member := range members {
		if filepath.Ext(member) != ".nc" {
			continue
		}
		name := filepath.Base(member)
		switch {
		case strings.Contains(name, "stepType-accum"):
			if _, err := w.Split.SplitMonth(ctx, member, w.tpDir(), era5.Precipitation, m.Year, m.Month); err != nil {
				return fmt.Errorf("split precipitation member %s: %w", name, err)
			}
			processed++
		case strings.Contains(name, "stepType-instant"):
			if _, err := w.Split.SplitMonth(ctx, member, w.slDir(), era5.SingleLevel, m.Year, m.Month); err != nil {
				return fmt.Errorf("split surface member %s: %w", name, err)
			}
			processed++
		default:
			w.Log.Warn("unrecognized archive member", "month", m, "member", name)
		}
	}
	w.Log.Info("organized surface month", "month", m, "members", processed)

	if err := os.Remove(zipPath); err != nil {
		return fmt.Errorf("cleanup %s: %w", zipPath, err)
	}
	return nil
}

// unzip extracts an archive into dir and returns the extracted paths.
func unzip(zipPath, dir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Flatten the archive layout and refuse path escapes.
		name := filepath.Base(f.Name)
		if name == "." || name == ".." || name == "/" {
			continue
		}
		dest := filepath.Join(dir, name)

		src, err := f.Open()
		if err != nil {
			return nil, err
		}
		w, err := os.Create(dest)
		if err != nil {
			src.Close()
			return nil, err
		}
		_, err = io.Copy(w, src)
		src.Close()
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		out = append(out, dest)
	}
	return out, nil
}
