package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nozzle/hmc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hmc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
variant: shortcut
iterations: 200
step_size: 0.05
step_size_min: 0.001
group_size: 3
std_min: 0
seed: 7
mass:
  - [2, 0.5]
  - [0.5, 1]
`)
	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "shortcut", fc.Variant)
	assert.Equal(t, 200, fc.Iterations)

	std, sc := hmc.DefaultConfig(), hmc.DefaultShortcutConfig()
	require.NoError(t, fc.apply(&std, &sc))

	assert.Equal(t, 0.05, std.StepSize)
	assert.Equal(t, 0.001, sc.StepSizeMin)
	assert.Equal(t, 0.1, sc.StepSizeMax, "unset fields keep defaults")
	assert.Equal(t, 3, sc.GroupSize)
	assert.Equal(t, 0.0, sc.StdMin)
	assert.Equal(t, uint32(7), std.Seed)
	assert.Equal(t, uint32(7), sc.Seed)
	require.NotNil(t, std.Mass)
	assert.Equal(t, 0.5, std.Mass.At(1, 0))
}

func TestMassMatrixErrors(t *testing.T) {
	_, err := fileConfig{Mass: [][]float64{{1, 2}, {3, 1}}}.massMatrix()
	assert.Error(t, err)

	_, err = fileConfig{Mass: [][]float64{{1, 0}, {0}}}.massMatrix()
	assert.Error(t, err)

	m, err := fileConfig{}.massMatrix()
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	chains := []hmc.Chain{
		{Thetas: [][]float64{{1, 2}, {3, 4}}},
		{Thetas: [][]float64{{5, 6}}},
	}
	require.NoError(t, saveCSV(path, chains))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0,1,2\n0,3,4\n1,5,6\n", string(data))
}

func TestSampleCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "samples.csv")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"sample", "--dim", "2", "--iters", "10", "--steps", "5",
		"--variant", "shortcut", "--chains", "2", "--output", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
