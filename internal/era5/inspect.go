package era5

import (
	"log/slog"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf"
)

// Inspect logs file counts per kind directory and the variable shapes of the
// first file of each kind. Purely informational.
func Inspect(log *slog.Logger, plDir, slDir, tpDir string) {
	dirs := map[Kind]string{
		PressureLevel: plDir,
		SingleLevel:   slDir,
		Precipitation: tpDir,
	}
	for _, kind := range kindOrder {
		paths, err := filepath.Glob(filepath.Join(dirs[kind], "*.nc"))
		if err != nil {
			log.Warn("could not list directory", "kind", kind, "dir", dirs[kind], "err", err)
			continue
		}
		sort.Strings(paths)
		log.Info("input files", "kind", kind, "dir", dirs[kind], "count", len(paths))
		if len(paths) == 0 {
			continue
		}
		inspectFile(log, kind, paths[0])
	}
}

func inspectFile(log *slog.Logger, kind Kind, path string) {
	nc, err := netcdf.Open(path)
	if err != nil {
		log.Warn("could not open sample file", "kind", kind, "file", path, "err", err)
		return
	}
	defer nc.Close()

	for _, name := range dataVars(nc) {
		v, err := nc.GetVariable(name)
		if err != nil {
			log.Warn("could not read variable", "file", path, "var", name, "err", err)
			continue
		}
		log.Info("sample variable", "kind", kind, "var", name, "dims", v.Dimensions, "shape", shapeOf(v.Values))
	}
}

// shapeOf walks nested slices to report a payload's shape.
func shapeOf(v any) []int {
	var shape []int
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return shape
}
