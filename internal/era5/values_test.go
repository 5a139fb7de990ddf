package era5

import (
	"math"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

func packingAttrs(t *testing.T, scale, offset float64) api.AttributeMap {
	t.Helper()
	om, err := util.NewOrderedMap(
		[]string{"scale_factor", "add_offset"},
		map[string]interface{}{"scale_factor": scale, "add_offset": offset},
	)
	if err != nil {
		t.Fatal(err)
	}
	return om
}

func packedAttrs(t *testing.T, scale, offset float64, fill int16) api.AttributeMap {
	t.Helper()
	om, err := util.NewOrderedMap(
		[]string{"scale_factor", "add_offset", "_FillValue"},
		map[string]interface{}{"scale_factor": scale, "add_offset": offset, "_FillValue": fill},
	)
	if err != nil {
		t.Fatal(err)
	}
	return om
}

func TestSurfaceGridUnpacksInt16(t *testing.T) {
	v := &api.Variable{
		Values:     [][][]int16{{{10, 20}, {30, 40}}},
		Dimensions: []string{"time", "latitude", "longitude"},
		Attributes: packingAttrs(t, 0.5, 100),
	}
	grid, ok := surfaceGrid(v)
	if !ok {
		t.Fatal("surfaceGrid rejected int16 payload")
	}
	want := [][]float32{{105, 110}, {115, 120}}
	for i := range want {
		for j := range want[i] {
			if grid[i][j] != want[i][j] {
				t.Errorf("grid[%d][%d] = %v, want %v", i, j, grid[i][j], want[i][j])
			}
		}
	}
}

func TestSurfaceGridMasksFillValues(t *testing.T) {
	v := &api.Variable{
		Values:     [][][]int16{{{-32767, 20}}},
		Dimensions: []string{"time", "latitude", "longitude"},
		Attributes: packedAttrs(t, 0.5, 100, -32767),
	}
	grid, ok := surfaceGrid(v)
	if !ok {
		t.Fatal("surfaceGrid rejected int16 payload")
	}
	if !math.IsNaN(float64(grid[0][0])) {
		t.Errorf("fill cell decoded to %v, want NaN", grid[0][0])
	}
	if grid[0][1] != 110 {
		t.Errorf("data cell decoded to %v, want 110", grid[0][1])
	}
}

func TestLevelGridsMaskFillValues(t *testing.T) {
	v := &api.Variable{
		Values: [][][][]int16{{
			{{10, -32767}},
			{{30, 40}},
		}},
		Dimensions: []string{"time", "level", "latitude", "longitude"},
		Attributes: packedAttrs(t, 0.5, 100, -32767),
	}
	grids, ok := levelGrids(v)
	if !ok {
		t.Fatal("levelGrids rejected int16 payload")
	}
	if !math.IsNaN(float64(grids[0][0][1])) {
		t.Errorf("fill cell decoded to %v, want NaN", grids[0][0][1])
	}
	if grids[1][0][1] != 120 {
		t.Errorf("data cell decoded to %v, want 120", grids[1][0][1])
	}
}

func TestSurfaceGridPassesFloatsThrough(t *testing.T) {
	v := &api.Variable{
		Values:     [][][]float64{{{1.5, 2.5}}},
		Dimensions: []string{"time", "latitude", "longitude"},
	}
	grid, ok := surfaceGrid(v)
	if !ok {
		t.Fatal("surfaceGrid rejected float64 payload")
	}
	if grid[0][0] != 1.5 || grid[0][1] != 2.5 {
		t.Errorf("grid = %v", grid)
	}
}

func TestLevelGridsDropTime(t *testing.T) {
	v := &api.Variable{
		Values: [][][][]float32{{
			{{1, 2}, {3, 4}},
			{{5, 6}, {7, 8}},
		}},
		Dimensions: []string{"time", "level", "latitude", "longitude"},
	}
	grids, ok := levelGrids(v)
	if !ok {
		t.Fatal("levelGrids rejected float32 payload")
	}
	if len(grids) != 2 {
		t.Fatalf("got %d level grids, want 2", len(grids))
	}
	if grids[1][0][1] != 6 {
		t.Errorf("grids[1][0][1] = %v, want 6", grids[1][0][1])
	}
}

func TestGridHelpersRejectUnknownShapes(t *testing.T) {
	v := &api.Variable{Values: []float32{1, 2, 3}, Dimensions: []string{"x"}}
	if _, ok := surfaceGrid(v); ok {
		t.Error("surfaceGrid accepted a 1-D payload")
	}
	if _, ok := levelGrids(v); ok {
		t.Error("levelGrids accepted a 1-D payload")
	}
}
