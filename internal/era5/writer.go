package era5

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// OutputName returns the deterministic artifact name for a timestep.
func OutputName(key Key) string {
	return fmt.Sprintf("era5_%s.nc", key)
}

// WriteCombined persists one combined record to outputDir. The file carries
// every flat variable on the shared latitude/longitude grid plus provenance
// attributes. Nothing is written unless the group flattened fully in memory,
// so no partial record ever reaches disk.
func WriteCombined(outputDir string, key Key, f *Flattened) (string, error) {
	path := filepath.Join(outputDir, OutputName(key))
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	attrs, err := combinedAttrs(key, f)
	if err != nil {
		cw.Close()
		return "", err
	}
	if err := cw.AddGlobalAttrs(attrs); err != nil {
		cw.Close()
		return "", fmt.Errorf("attributes for %s: %w", path, err)
	}

	coords := []struct {
		name   string
		values any
	}{
		{"latitude", f.Lat},
		{"longitude", f.Lon},
	}
	for _, c := range coords {
		v := api.Variable{Values: c.values, Dimensions: []string{c.name}}
		if err := cw.AddVar(c.name, v); err != nil {
			cw.Close()
			return "", fmt.Errorf("coordinate %q in %s: %w", c.name, path, err)
		}
	}
	for _, fv := range f.Vars {
		v := api.Variable{Values: fv.Values, Dimensions: fv.Dims}
		if err := cw.AddVar(fv.Name, v); err != nil {
			cw.Close()
			return "", fmt.Errorf("variable %q in %s: %w", fv.Name, path, err)
		}
	}
	if err := cw.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// VerifyCombined reopens a written record and counts its data variables.
// This is a best-effort check: a mismatch is reported to the caller but the
// artifact is kept.
func VerifyCombined(path string, want int) (int, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reopen %s: %w", path, err)
	}
	defer nc.Close()

	got := len(dataVars(nc))
	if got != want {
		return got, fmt.Errorf("%s holds %d data variables, expected %d", path, got, want)
	}
	return got, nil
}

func combinedAttrs(key Key, f *Flattened) (api.AttributeMap, error) {
	varNames := make([]string, len(f.Vars))
	for i, fv := range f.Vars {
		varNames[i] = fv.Name
	}
	levels := make([]string, len(PressureLevels))
	for i, p := range PressureLevels {
		levels[i] = strconv.Itoa(p)
	}

	keys := []string{
		"description",
		"total_variables",
		"pressure_levels",
		"pl_variables",
		"sl_variables",
		"tp_variables",
		"variable_list",
		"datetime",
	}
	values := map[string]interface{}{
		"description":     "Merged ERA5 data (pl + sl + tp)",
		"total_variables": int32(len(f.Vars)),
		"pressure_levels": strings.Join(levels, ", "),
		"pl_variables":    strings.Join(f.Source.PL, ", "),
		"sl_variables":    strings.Join(f.Source.SL, ", "),
		"tp_variables":    strings.Join(f.Source.TP, ", "),
		"variable_list":   strings.Join(varNames, ", "),
		"datetime":        string(key),
	}
	om, err := util.NewOrderedMap(keys, values)
	if err != nil {
		return nil, err
	}
	return om, nil
}
