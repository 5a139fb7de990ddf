package era5

import (
	"fmt"
	"strconv"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// PressureLevels is the fixed ordered list of atmospheric levels, in hPa,
// assumed present in every pressure-level source file. Level index i in a
// 4-D payload is taken to be PressureLevels[i]; the file's own level
// coordinate is not consulted.
var PressureLevels = []int{50, 100, 150, 200, 250, 300, 400, 500, 600, 700, 850, 925, 1000}

// Coordinate axes are never treated as data variables.
var coordNames = map[string]bool{
	"latitude":  true,
	"longitude": true,
	"time":      true,
	"level":     true,
}

// FlatVariable is one named 2-D slice of the combined record. Variables that
// did not match the expected dimensionality keep their original payload and
// dimensions.
type FlatVariable struct {
	Name   string
	Values any
	Dims   []string
}

var gridDims = []string{"latitude", "longitude"}

// SourceVars records which variable names each source file contributed.
type SourceVars struct {
	PL []string
	SL []string
	TP []string
}

// Flattened is the in-memory form of one combined record: the ordered flat
// variable list plus the shared grid coordinates taken from the
// pressure-level source.
type Flattened struct {
	Vars   []FlatVariable
	Lat    any
	Lon    any
	Source SourceVars
}

// Flatten reads a complete group and produces the ordered flat variable
// list: pressure-level variables first (source order, then level order),
// then surface-level, then precipitation. All three source files are closed
// before Flatten returns, whatever the outcome.
func Flatten(g *Group) (*Flattened, error) {
	if !g.Complete() {
		return nil, fmt.Errorf("group %s is incomplete", g.Key)
	}

	out := &Flattened{}

	pl, err := netcdf.Open(g.Paths[PressureLevel])
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", g.Paths[PressureLevel], err)
	}
	defer pl.Close()

	if out.Lat, err = coordValues(pl, "latitude"); err != nil {
		return nil, err
	}
	if out.Lon, err = coordValues(pl, "longitude"); err != nil {
		return nil, err
	}

	out.Source.PL, err = flattenPressure(pl, out)
	if err != nil {
		return nil, err
	}
	if out.Source.SL, err = flattenSurface(g.Paths[SingleLevel], out); err != nil {
		return nil, err
	}
	if out.Source.TP, err = flattenSurface(g.Paths[Precipitation], out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenPressure splits every 4-D pressure-level variable into one 2-D
// variable per level, named {var}{hPa}.
func flattenPressure(nc api.Group, out *Flattened) ([]string, error) {
	var names []string
	for _, name := range dataVars(nc) {
		names = append(names, name)
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		if len(v.Dimensions) != 4 {
			// Dimensionality is a soft hint; pass through unchanged.
			out.Vars = append(out.Vars, FlatVariable{Name: name, Values: v.Values, Dims: v.Dimensions})
			continue
		}
		grids, ok := levelGrids(v)
		if !ok {
			out.Vars = append(out.Vars, FlatVariable{Name: name, Values: v.Values, Dims: v.Dimensions})
			continue
		}
		if len(grids) > len(PressureLevels) {
			return nil, fmt.Errorf("variable %q has %d levels, expected at most %d", name, len(grids), len(PressureLevels))
		}
		for i, grid := range grids {
			out.Vars = append(out.Vars, FlatVariable{
				Name:   name + strconv.Itoa(PressureLevels[i]),
				Values: grid,
				Dims:   gridDims,
			})
		}
	}
	return names, nil
}

// flattenSurface drops the singleton time dimension of every 3-D variable,
// keeping raw names.
func flattenSurface(path string, out *Flattened) ([]string, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	var names []string
	for _, name := range dataVars(nc) {
		names = append(names, name)
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		if len(v.Dimensions) == 3 {
			if grid, ok := surfaceGrid(v); ok {
				out.Vars = append(out.Vars, FlatVariable{Name: name, Values: grid, Dims: gridDims})
				continue
			}
		}
		out.Vars = append(out.Vars, FlatVariable{Name: name, Values: v.Values, Dims: v.Dimensions})
	}
	return names, nil
}

// dataVars lists the non-coordinate variables of a file in file order.
func dataVars(nc api.Group) []string {
	var names []string
	for _, name := range nc.ListVariables() {
		if !coordNames[name] {
			names = append(names, name)
		}
	}
	return names
}
