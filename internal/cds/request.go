package cds

import (
	"fmt"
	"time"
)

// Request is the JSON body of a CDS retrieval.
type Request map[string]any

// Dataset identifiers used by the workflows.
const (
	PressureLevelDataset = "reanalysis-era5-pressure-levels"
	SingleLevelDataset   = "reanalysis-era5-single-levels"
)

// The four synoptic hours retrieved for every day.
var synopticHours = []string{"00:00", "06:00", "12:00", "18:00"}

var pressureLevelVariables = []string{
	"geopotential",
	"relative_humidity",
	"temperature",
	"u_component_of_wind",
	"v_component_of_wind",
}

var singleLevelVariables = []string{
	"10m_u_component_of_wind",
	"10m_v_component_of_wind",
	"2m_temperature",
	"mean_sea_level_pressure",
	"total_precipitation",
}

var pressureLevels = []string{
	"50", "100", "150", "200", "250", "300",
	"400", "500", "600", "700", "850", "925", "1000",
}

// PressureLevelRequest builds the monthly pressure-level retrieval: five
// upper-air variables on the fixed 13-level stack, four times per day, every
// day of the month.
func PressureLevelRequest(year int, month time.Month) Request {
	return Request{
		"product_type":    []string{"reanalysis"},
		"variable":        pressureLevelVariables,
		"year":            []string{fmt.Sprintf("%04d", year)},
		"month":           []string{fmt.Sprintf("%02d", month)},
		"day":             DaysOfMonth(year, month),
		"time":            synopticHours,
		"pressure_level":  pressureLevels,
		"data_format":     "netcdf",
		"download_format": "unarchived",
	}
}

// SingleLevelRequest builds the monthly surface retrieval: five single-level
// variables, same synoptic hours.
func SingleLevelRequest(year int, month time.Month) Request {
	return Request{
		"product_type":    []string{"reanalysis"},
		"variable":        singleLevelVariables,
		"year":            []string{fmt.Sprintf("%04d", year)},
		"month":           []string{fmt.Sprintf("%02d", month)},
		"day":             DaysOfMonth(year, month),
		"time":            synopticHours,
		"data_format":     "netcdf",
		"download_format": "unarchived",
	}
}

// DaysOfMonth lists every day of a month as zero-padded strings.
func DaysOfMonth(year int, month time.Month) []string {
	n := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := make([]string, n)
	for i := range days {
		days[i] = fmt.Sprintf("%02d", i+1)
	}
	return days
}
