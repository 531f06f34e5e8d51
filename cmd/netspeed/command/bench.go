package command

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/netspeed/pkg/benchmark"
	"github.com/danpilch/netspeed/pkg/collectors/network"
)

func newBenchCommand(env *environment) *cobra.Command {
	opts := benchmark.DefaultOptions()
	var procMount string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure how long each counter source takes to read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Clock = env.clock
			results, err := benchmark.Run(cmd.Context(), env.sources(procMount).Sources(), opts)
			if err != nil {
				return err
			}
			benchmark.RenderResults(cmd.OutOrStdout(), results, benchmark.MeasureOverhead())
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "Measured reads per source")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", opts.Warmup, "Discarded reads per source before measuring")
	cmd.Flags().StringVar(&procMount, "procfs", network.DefaultProcMount, "procfs mount point used by the netdev source")

	return cmd
}
