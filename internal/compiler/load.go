package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/dragsort/internal/ir"
)

// Sentinel errors for LoadDir, so callers can map them to their own codes.
var (
	ErrCUELoad  = errors.New("loading CUE files")
	ErrCUEBuild = errors.New("building CUE value")
)

// LoadDir loads the CUE package in dir and builds it into a single value.
func LoadDir(dir string) (cue.Value, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("%w: no CUE instances in %s", ErrCUELoad, dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrCUELoad, inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrCUEBuild, err)
	}
	return value, nil
}

// LoadCatalogue loads and compiles the catalogue in dir, stopping at the first error.
func LoadCatalogue(dir string) (*ir.Catalogue, error) {
	value, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return CompileCatalogue(value)
}
