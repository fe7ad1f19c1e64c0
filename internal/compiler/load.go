package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// CompileSource compiles models from CUE source. filename is used in
// error positions only.
func CompileSource(filename string, src []byte) ([]SchemaSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileModels(v)
}

// CompileFiles compiles models declared across the given CUE files. The
// files are unified first, so a model may be split over several of them.
func CompileFiles(paths ...string) ([]SchemaSpec, error) {
	if len(paths) == 0 {
		return []SchemaSpec{}, nil
	}

	ctx := cuecontext.New()
	var unified cue.Value
	for i, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		v := ctx.CompileBytes(src, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		if i == 0 {
			unified = v
			continue
		}
		unified = unified.Unify(v)
	}
	return CompileModels(unified)
}

// CompileDir loads the CUE package in dir and compiles its models.
func CompileDir(dir string) ([]SchemaSpec, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileModels(v)
}
