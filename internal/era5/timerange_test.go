package era5

import (
	"testing"
	"time"
)

func TestParseBound(t *testing.T) {
	want := time.Date(2018, 2, 1, 6, 0, 0, 0, time.UTC)

	for _, s := range []string{"2018-02-01 06:00", "20180201_0600"} {
		got, err := ParseBound(s)
		if err != nil {
			t.Fatalf("ParseBound(%q) error: %v", s, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseBound(%q) = %v, want %v", s, got, want)
		}
	}

	for _, s := range []string{"2018/02/01 06:00", "20180201", "not a time", ""} {
		if _, err := ParseBound(s); err == nil {
			t.Errorf("ParseBound(%q) should fail", s)
		}
	}
}

func TestTimeRangeContains(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2018, 2, 1, hour, 0, 0, 0, time.UTC)
	}
	start, end := at(6), at(12)
	r := TimeRange{Start: &start, End: &end}

	// Inclusive on both ends.
	for _, h := range []int{6, 12} {
		if !r.Contains(at(h)) {
			t.Errorf("range should contain %02d:00", h)
		}
	}
	for _, h := range []int{0, 18} {
		if r.Contains(at(h)) {
			t.Errorf("range should not contain %02d:00", h)
		}
	}

	if !(TimeRange{}).Contains(at(0)) {
		t.Error("open range should contain everything")
	}

	// Start after end: empty intersection, not an error.
	inverted := TimeRange{Start: &end, End: &start}
	for _, h := range []int{0, 6, 9, 12, 18} {
		if inverted.Contains(at(h)) {
			t.Errorf("inverted range should contain nothing, contained %02d:00", h)
		}
	}
}
