package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tracesim/benchmarks"
)

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseUint(v, 0, 64); err == nil {
			return n
		}
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "tracesim [trace-file...]",
		Short: "Trace-driven branch predictor and cache hierarchy simulator.",
		Long: `tracesim replays retired-instruction, branch, memory, region-of-interest ` +
			`and allocation events through a tournament branch predictor and a ` +
			`multi-level cache hierarchy, then reports prediction accuracy and ` +
			`per-level hit, miss, load and eviction counts. Use "-" to read a ` +
			`trace from stdin. Several trace files are replayed concurrently and ` +
			`merged in arrival order.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.workload == "" {
				return fmt.Errorf("no trace file or --workload given")
			}
			opts.traces = args
			opts.maxSet = cmd.Flags().Changed("max-instructions")
			opts.warmupSet = cmd.Flags().Changed("warmup")
			opts.roiSet = cmd.Flags().Changed("roi-gated")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return run(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configPath, "config", envOr("TRACESIM_CONFIG", ""),
		"simulation config JSON file (env TRACESIM_CONFIG)")
	flags.StringVar(&opts.saveConfig, "save-config", "",
		"write the effective config to this JSON file")
	flags.StringVar(&opts.predictor, "predictor", "",
		"predictor kind override: tournament or bimodal")
	flags.Uint64Var(&opts.maxInstructions, "max-instructions",
		envUint("TRACESIM_MAX_INSTRUCTIONS", 0),
		"finish after this many instructions, 0 for unlimited (env TRACESIM_MAX_INSTRUCTIONS)")
	flags.Uint64Var(&opts.warmup, "warmup", 0,
		"instructions to skip before simulating")
	flags.BoolVar(&opts.roiGated, "roi-gated", false,
		"wait for ROI_BEGIN before counting")
	flags.StringVar(&opts.allocTrace, "alloc-trace", "",
		"write MALLOC/FREE pairs seen in the region of interest to this file")
	flags.StringVar(&opts.sqlite, "sqlite", envOr("TRACESIM_SQLITE", ""),
		"also export the report to <name>.sqlite3 (env TRACESIM_SQLITE)")
	flags.StringVar(&opts.workload, "workload", "",
		"run a built-in synthetic workload instead of a trace")
	flags.BoolVar(&opts.host, "host-stats", false,
		"include host memory and CPU usage in the report")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0,
		"log verbosity: 1 lifecycle, 2 every access")

	rootCmd.AddCommand(newWorkloadsCmd())

	return rootCmd
}

func newWorkloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workloads",
		Short: "List the built-in synthetic workloads.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, w := range benchmarks.GetWorkloads() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", w.Name, w.Description)
			}
		},
	}
}
