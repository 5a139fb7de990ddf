package splitter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rtm0/era5pipe/internal/era5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCDO installs a stand-in for cdo that copies its input to its output,
// restoring the real command when the test ends.
func fakeCDO(t *testing.T) {
	t.Helper()
	script := filepath.Join(t.TempDir(), "cdo")
	body := "#!/bin/sh\n# args: seltimestep,N input output\ncp \"$2\" \"$3\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	prev := CDOCommand
	CDOCommand = script
	t.Cleanup(func() { CDOCommand = prev })
}

func TestTimestepTime(t *testing.T) {
	tests := []struct {
		step      int
		day, hour int
	}{
		{1, 1, 0},
		{2, 1, 6},
		{3, 1, 12},
		{4, 1, 18},
		{5, 2, 0},
		{112, 28, 18},
	}
	for _, tt := range tests {
		got := TimestepTime(2018, time.February, tt.step)
		if got.Day() != tt.day || got.Hour() != tt.hour {
			t.Errorf("TimestepTime(step=%d) = %v, want day %d hour %d", tt.step, got, tt.day, tt.hour)
		}
	}
}

func TestStepsInMonth(t *testing.T) {
	if got := StepsInMonth(2018, time.February); got != 112 {
		t.Errorf("StepsInMonth(2018-02) = %d, want 112", got)
	}
	if got := StepsInMonth(2020, time.February); got != 116 {
		t.Errorf("StepsInMonth(2020-02) = %d, want 116", got)
	}
	if got := StepsInMonth(2018, time.January); got != 124 {
		t.Errorf("StepsInMonth(2018-01) = %d, want 124", got)
	}
}

func TestSplitMonth(t *testing.T) {
	fakeCDO(t)

	base := t.TempDir()
	src := filepath.Join(base, "era5_201802.nc")
	if err := os.WriteFile(src, []byte("month data"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(base, "pl")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	s := &Splitter{Log: testLogger()}
	written, err := s.SplitMonth(context.Background(), src, outDir, era5.PressureLevel, 2018, time.February)
	if err != nil {
		t.Fatal(err)
	}
	if written != 112 {
		t.Errorf("wrote %d files, want 112", written)
	}

	for _, name := range []string{
		"era5_20180201_0000_pl.nc",
		"era5_20180201_0600_pl.nc",
		"era5_20180228_1800_pl.nc",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing split file %s: %v", name, err)
		}
	}
}

func TestSplitMonthMissingBinary(t *testing.T) {
	prev := CDOCommand
	CDOCommand = "definitely-not-a-real-command"
	t.Cleanup(func() { CDOCommand = prev })

	base := t.TempDir()
	src := filepath.Join(base, "era5_201802.nc")
	if err := os.WriteFile(src, []byte("month data"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Splitter{Log: testLogger()}
	if _, err := s.SplitMonth(context.Background(), src, base, era5.PressureLevel, 2018, time.February); err == nil {
		t.Fatal("expected error when cdo is missing")
	}
}
