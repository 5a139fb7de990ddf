package era5

import "testing"

func TestExtractKey(t *testing.T) {
	tests := []struct {
		stem   string
		key    Key
		status KeyStatus
	}{
		{"era5_20180201_0000_pl", "20180201_0000", KeyParsed},
		{"era5_20180201_0600_sl", "20180201_0600", KeyParsed},
		{"era5_20180201_1200_tp", "20180201_1200", KeyParsed},
		{"era5_20180215_1800", "20180215_1800", KeyParsed},
		{"20180201_0000", "20180201_0000", KeyParsed},
		// Last matching token wins.
		{"era5_20180101_20180201_0000_pl", "20180201_0000", KeyParsed},
		// No tokens: suffix-stripping fallback.
		{"monthly_mean_pl", "monthly_mean", KeyFallback},
		{"some_file_sl", "some_file", KeyFallback},
		{"rain_tp", "rain", KeyFallback},
		// No tokens, no suffix: stem unchanged.
		{"whatever", "whatever", KeyFallback},
		{"era5_month_avg", "era5_month_avg", KeyFallback},
	}
	for _, tt := range tests {
		key, status := ExtractKey(tt.stem)
		if key != tt.key || status != tt.status {
			t.Errorf("ExtractKey(%q) = (%q, %v), want (%q, %v)", tt.stem, key, status, tt.key, tt.status)
		}
	}
}

func TestKeyTime(t *testing.T) {
	tm, err := Key("20180201_0600").Time()
	if err != nil {
		t.Fatalf("Time() error: %v", err)
	}
	if tm.Year() != 2018 || tm.Month() != 2 || tm.Day() != 1 || tm.Hour() != 6 || tm.Minute() != 0 {
		t.Errorf("unexpected time %v", tm)
	}

	for _, bad := range []Key{"monthly_mean", "era5_month_avg", "20181301_0000", "20180201_2500"} {
		if _, err := bad.Time(); err == nil {
			t.Errorf("Time() on %q should fail", bad)
		}
	}
}
