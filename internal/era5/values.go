package era5

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Numeric payloads arrive either as floats or as packed int16 with
// scale_factor/add_offset attributes. Flattening normalizes everything to
// float32 grids; unpacking is applied to integer payloads only, and cells
// holding a _FillValue/missing_value sentinel become NaN.

// levelGrids interprets a 4-D (time, level, lat, lon) payload with a
// singleton time dimension as one 2-D grid per level. ok is false when the
// payload has an unexpected Go type; such variables pass through untouched.
func levelGrids(v *api.Variable) ([][][]float32, bool) {
	scale, offset := packing(v.Attributes)
	fills := fillValues(v.Attributes)
	switch d := v.Values.(type) {
	case [][][][]float32:
		if len(d) == 0 {
			return nil, false
		}
		return d[0], true
	case [][][][]float64:
		if len(d) == 0 {
			return nil, false
		}
		out := make([][][]float32, len(d[0]))
		for i, plane := range d[0] {
			out[i] = gridFromFloat64(plane)
		}
		return out, true
	case [][][][]int16:
		if len(d) == 0 {
			return nil, false
		}
		out := make([][][]float32, len(d[0]))
		for i, plane := range d[0] {
			out[i] = gridFromInt16(plane, scale, offset, fills)
		}
		return out, true
	default:
		return nil, false
	}
}

// surfaceGrid interprets a 3-D (time, lat, lon) payload with a singleton time
// dimension as a single 2-D grid.
func surfaceGrid(v *api.Variable) ([][]float32, bool) {
	scale, offset := packing(v.Attributes)
	fills := fillValues(v.Attributes)
	switch d := v.Values.(type) {
	case [][][]float32:
		if len(d) == 0 {
			return nil, false
		}
		return d[0], true
	case [][][]float64:
		if len(d) == 0 {
			return nil, false
		}
		return gridFromFloat64(d[0]), true
	case [][][]int16:
		if len(d) == 0 {
			return nil, false
		}
		return gridFromInt16(d[0], scale, offset, fills), true
	default:
		return nil, false
	}
}

func gridFromFloat64(plane [][]float64) [][]float32 {
	out := make([][]float32, len(plane))
	for i, row := range plane {
		out[i] = make([]float32, len(row))
		for j, x := range row {
			out[i][j] = float32(x)
		}
	}
	return out
}

func gridFromInt16(plane [][]int16, scale, offset float64, fills []int16) [][]float32 {
	out := make([][]float32, len(plane))
	for i, row := range plane {
		out[i] = make([]float32, len(row))
		for j, x := range row {
			if isFill(x, fills) {
				out[i][j] = float32(math.NaN())
				continue
			}
			out[i][j] = float32(float64(x)*scale + offset)
		}
	}
	return out
}

func isFill(x int16, fills []int16) bool {
	for _, f := range fills {
		if x == f {
			return true
		}
	}
	return false
}

// packing reads the CF packing attributes, defaulting to the identity.
func packing(am api.AttributeMap) (scale, offset float64) {
	return attrFloat(am, "scale_factor", 1), attrFloat(am, "add_offset", 0)
}

// fillValues lists the packed sentinels that mark masked cells.
func fillValues(am api.AttributeMap) []int16 {
	var fills []int16
	for _, key := range []string{"_FillValue", "missing_value"} {
		if f, ok := attrInt16(am, key); ok {
			fills = append(fills, f)
		}
	}
	return fills
}

func attrInt16(am api.AttributeMap, key string) (int16, bool) {
	if am == nil {
		return 0, false
	}
	v, has := am.Get(key)
	if !has {
		return 0, false
	}
	switch x := v.(type) {
	case int16:
		return x, true
	case int32:
		return int16(x), true
	case []int16:
		if len(x) > 0 {
			return x[0], true
		}
	case []int32:
		if len(x) > 0 {
			return int16(x[0]), true
		}
	}
	return 0, false
}

func attrFloat(am api.AttributeMap, key string, def float64) float64 {
	if am == nil {
		return def
	}
	v, has := am.Get(key)
	if !has {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case []float64:
		if len(x) > 0 {
			return x[0]
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0])
		}
	}
	return def
}

// coordValues reads the values of a named coordinate variable.
func coordValues(nc api.Group, name string) (any, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", name, err)
	}
	return vg.Values()
}
