package cds

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetrieveHappyPath(t *testing.T) {
	var polls atomic.Int32
	payload := []byte("netcdf bytes")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /resources/"+PressureLevelDataset, func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "1234" || pass != "secret" {
			t.Errorf("missing or wrong basic auth: %q %q", user, pass)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["data_format"] != "netcdf" {
			t.Errorf("data_format = %v", req["data_format"])
		}
		json.NewEncoder(w).Encode(map[string]any{"state": "queued", "request_id": "req-1"})
	})
	mux.HandleFunc("GET /tasks/req-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			json.NewEncoder(w).Encode(map[string]any{"state": "running", "request_id": "req-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"state":      "completed",
			"request_id": "req-1",
			"location":   "/download/result.nc",
		})
	})
	mux.HandleFunc("GET /download/result.nc", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(testLogger(), srv.URL, "1234:secret")
	if err != nil {
		t.Fatal(err)
	}
	c.PollInterval = time.Millisecond

	dest := filepath.Join(t.TempDir(), "era5_201802.nc")
	if err := c.Retrieve(context.Background(), PressureLevelDataset, PressureLevelRequest(2018, time.February), dest); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded %q, want %q", got, payload)
	}
	if polls.Load() < 2 {
		t.Errorf("expected at least two polls, got %d", polls.Load())
	}
}

func TestRetrieveFailedTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /resources/"+SingleLevelDataset, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"state":      "failed",
			"request_id": "req-2",
			"error":      map[string]any{"reason": "bad request", "message": "no such variable"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(testLogger(), srv.URL, "1234:secret")
	if err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "era5_sl_201802.zip")
	err = c.Retrieve(context.Background(), SingleLevelDataset, SingleLevelRequest(2018, time.February), dest)
	if err == nil {
		t.Fatal("expected error for failed task")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("failed retrieval must not leave a file behind")
	}
}

func TestNewClientRejectsBadKey(t *testing.T) {
	if _, err := NewClient(testLogger(), "http://example.org", "no-colon"); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestDaysOfMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2018, time.February, 28},
		{2020, time.February, 29},
		{2018, time.April, 30},
		{2018, time.December, 31},
	}
	for _, tt := range tests {
		days := DaysOfMonth(tt.year, tt.month)
		if len(days) != tt.want {
			t.Errorf("DaysOfMonth(%d, %v) has %d entries, want %d", tt.year, tt.month, len(days), tt.want)
		}
		if days[0] != "01" {
			t.Errorf("first day = %q", days[0])
		}
	}
}
