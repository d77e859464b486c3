package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/nozzle/hmc"
	"github.com/nozzle/hmc/model"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type sampleOptions struct {
	configFile string
	output     string
	variant    string
	dim        int
	mean       float64
	std        float64
	iters      int
	steps      int
	chains     int
	verbose    bool

	config   hmc.Config
	shortcut hmc.ShortcutConfig
}

func newSampleCmd() *cobra.Command {
	o := &sampleOptions{
		config:   hmc.DefaultConfig(),
		shortcut: hmc.DefaultShortcutConfig(),
	}
	var seed uint32

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw samples from an isotropic Gaussian target",
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.configFile != "" {
				fc, err := loadFileConfig(o.configFile)
				if err != nil {
					return err
				}
				if err := fc.apply(&o.config, &o.shortcut); err != nil {
					return err
				}
				o.fileDefaults(cmd, fc)
			}
			o.overlayFlags(cmd, seed)
			return o.run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.configFile, "config", "", "YAML config file")
	f.StringVarP(&o.output, "output", "o", "samples.csv", "Output CSV file")
	f.StringVar(&o.variant, "variant", "standard", "Sampler variant: standard or shortcut")
	f.IntVar(&o.dim, "dim", 1, "Target dimension")
	f.Float64Var(&o.mean, "mean", 0, "Target mean in every dimension")
	f.Float64Var(&o.std, "std", 1, "Target standard deviation in every dimension")
	f.IntVar(&o.iters, "iters", 1000, "Metropolis iterations per chain")
	f.IntVar(&o.steps, "steps", 20, "Leapfrog steps per iteration")
	f.IntVar(&o.chains, "chains", 1, "Independent chains to run")
	f.Float64Var(&o.config.StepSize, "step-size", o.config.StepSize, "Leapfrog step size (standard)")
	f.Float64Var(&o.shortcut.StepSizeMin, "step-min", o.shortcut.StepSizeMin, "Smallest step size (shortcut)")
	f.Float64Var(&o.shortcut.StepSizeMax, "step-max", o.shortcut.StepSizeMax, "Largest step size (shortcut)")
	f.IntVar(&o.shortcut.GroupSize, "group-size", o.shortcut.GroupSize, "Stability window length (shortcut)")
	f.Float64Var(&o.shortcut.StdMin, "std-min", o.shortcut.StdMin, "Lower energy spread threshold (shortcut)")
	f.Float64Var(&o.shortcut.StdMax, "std-max", o.shortcut.StdMax, "Upper energy spread threshold (shortcut)")
	f.Uint32Var(&seed, "seed", 42, "Random seed of the first chain")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

// fileDefaults takes run-shape settings from the config file unless the
// matching flag was given.
func (o *sampleOptions) fileDefaults(cmd *cobra.Command, fc fileConfig) {
	f := cmd.Flags()
	if fc.Variant != "" && !f.Changed("variant") {
		o.variant = fc.Variant
	}
	if fc.Iterations != 0 && !f.Changed("iters") {
		o.iters = fc.Iterations
	}
	if fc.Steps != 0 && !f.Changed("steps") {
		o.steps = fc.Steps
	}
}

// overlayFlags reapplies flags given on the command line, which win over the
// config file.
func (o *sampleOptions) overlayFlags(cmd *cobra.Command, seed uint32) {
	f := cmd.Flags()
	get := func(name string) float64 {
		v, _ := f.GetFloat64(name)
		return v
	}
	if f.Changed("step-size") {
		o.config.StepSize = get("step-size")
	}
	if f.Changed("step-min") {
		o.shortcut.StepSizeMin = get("step-min")
	}
	if f.Changed("step-max") {
		o.shortcut.StepSizeMax = get("step-max")
	}
	if f.Changed("std-min") {
		o.shortcut.StdMin = get("std-min")
	}
	if f.Changed("std-max") {
		o.shortcut.StdMax = get("std-max")
	}
	if f.Changed("group-size") {
		o.shortcut.GroupSize, _ = f.GetInt("group-size")
	}
	if f.Changed("seed") || o.configFile == "" {
		o.config.Seed, o.shortcut.Seed = seed, seed
	}
}

func (o *sampleOptions) run(ctx context.Context) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	o.config.Logger = logger
	o.shortcut.Logger = logger

	if o.chains < 1 {
		return fmt.Errorf("--chains must be at least 1, got %d", o.chains)
	}

	samplers := make([]hmc.Runner, o.chains)
	for i := range samplers {
		s, err := o.newSampler(uint32(i))
		if err != nil {
			return err
		}
		samplers[i] = s
	}

	logger.Info("sampling", "variant", o.variant, "dim", o.dim, "chains", o.chains,
		"iterations", o.iters, "steps", o.steps)
	chains, err := hmc.SampleChains(ctx, samplers, o.iters, o.steps, 0)
	if err != nil {
		return err
	}

	for i, s := range samplers {
		logger.Info("chain finished", "chain", i, "acceptance_rate", s.Stats().AcceptanceRate())
	}

	if err := saveCSV(o.output, chains); err != nil {
		return fmt.Errorf("saving output: %w", err)
	}
	logger.Debug("saved samples", "file", o.output)
	return nil
}

func (o *sampleOptions) newSampler(chain uint32) (hmc.Runner, error) {
	mean := make([]float64, o.dim)
	for i := range mean {
		mean[i] = o.mean
	}
	var cov mat.Symmetric
	if o.std != 1 {
		d := make([]float64, o.dim)
		for i := range d {
			d[i] = o.std * o.std
		}
		cov = mat.NewDiagDense(o.dim, d)
	}
	target, err := model.NewGaussian(mean, cov)
	if err != nil {
		return nil, err
	}

	switch o.variant {
	case "standard":
		config := o.config
		config.Seed += chain
		return hmc.New(target, config)
	case "shortcut":
		config := o.shortcut
		config.Seed += chain
		return hmc.NewShortcut(target, config)
	default:
		return nil, fmt.Errorf("unknown variant %q", o.variant)
	}
}

// saveCSV writes one row per kept sample. With several chains the chain
// index leads each row.
func saveCSV(filename string, chains []hmc.Chain) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for c, chain := range chains {
		for _, row := range chain.Thetas {
			record := make([]string, 0, len(row)+1)
			if len(chains) > 1 {
				record = append(record, strconv.Itoa(c))
			}
			for _, val := range row {
				record = append(record, strconv.FormatFloat(val, 'g', -1, 64))
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
