// Command hmc draws Hamiltonian Monte Carlo samples from a Gaussian target
// and writes them as CSV.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	// Interrupts skip chains that have not started yet.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hmc",
		Short:         "Hamiltonian Monte Carlo sampler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSampleCmd())
	return root
}
