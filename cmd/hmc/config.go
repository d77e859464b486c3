package main

import (
	"fmt"
	"os"

	"github.com/nozzle/hmc"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of the sampler settings. Zero fields keep
// their defaults.
type fileConfig struct {
	Variant     string      `yaml:"variant"`
	Iterations  int         `yaml:"iterations"`
	Steps       int         `yaml:"steps"`
	StepSize    float64     `yaml:"step_size"`
	StepSizeMin float64     `yaml:"step_size_min"`
	StepSizeMax float64     `yaml:"step_size_max"`
	GroupSize   int         `yaml:"group_size"`
	StdMin      *float64    `yaml:"std_min"`
	StdMax      float64     `yaml:"std_max"`
	Seed        *uint32     `yaml:"seed"`
	Mass        [][]float64 `yaml:"mass"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// massMatrix converts rows to a symmetric matrix, or nil for no rows.
func (fc fileConfig) massMatrix() (mat.Symmetric, error) {
	n := len(fc.Mass)
	if n == 0 {
		return nil, nil
	}
	for i, row := range fc.Mass {
		if len(row) != n {
			return nil, fmt.Errorf("mass row %d has %d entries, want %d", i, len(row), n)
		}
	}
	m := mat.NewSymDense(n, nil)
	for i, row := range fc.Mass {
		for j, v := range row {
			if v != fc.Mass[j][i] {
				return nil, fmt.Errorf("mass matrix is not symmetric at (%d, %d)", i, j)
			}
			m.SetSym(i, j, v)
		}
	}
	return m, nil
}

func (fc fileConfig) apply(std *hmc.Config, sc *hmc.ShortcutConfig) error {
	m, err := fc.massMatrix()
	if err != nil {
		return err
	}
	std.Mass, sc.Mass = m, m

	if fc.StepSize != 0 {
		std.StepSize = fc.StepSize
	}
	if fc.StepSizeMin != 0 {
		sc.StepSizeMin = fc.StepSizeMin
	}
	if fc.StepSizeMax != 0 {
		sc.StepSizeMax = fc.StepSizeMax
	}
	if fc.GroupSize != 0 {
		sc.GroupSize = fc.GroupSize
	}
	if fc.StdMin != nil {
		sc.StdMin = *fc.StdMin
	}
	if fc.StdMax != 0 {
		sc.StdMax = fc.StdMax
	}
	if fc.Seed != nil {
		std.Seed, sc.Seed = *fc.Seed, *fc.Seed
	}
	return nil
}
