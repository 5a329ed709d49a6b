// Command benchmark runs the tracesim synthetic workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results in JSON format
//	-config     Simulation config JSON file (default: built-in config)
//	-policy     Override the replacement policy of every cache level
//	-predictor  Override the predictor kind
//	-check      Exit with status 1 if a workload misses its expectation
//
// Example:
//
//	# Run all workloads with human-readable output
//	go run ./cmd/benchmark
//
//	# Compare FIFO against LRU in a spreadsheet
//	go run ./cmd/benchmark -csv -policy fifo > fifo.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/tracesim/benchmarks"
	"github.com/sarchlab/tracesim/timing/core"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	configPath := flag.String("config", "", "Simulation config JSON file")
	policy := flag.String("policy", "", "Replacement policy for every cache level (lru or fifo)")
	predictorKind := flag.String("predictor", "", "Predictor kind (tournament or bimodal)")
	check := flag.Bool("check", false, "Fail if a workload misses its expectation")
	flag.Parse()

	sim := core.DefaultConfig()
	if *configPath != "" {
		loaded, err := core.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		sim = loaded
	}
	if *policy != "" {
		for i := range sim.Hierarchy.Levels {
			sim.Hierarchy.Levels[i].Policy = *policy
		}
	}
	if *predictorKind != "" {
		sim.Predictor.Kind = *predictorKind
	}
	if err := sim.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Create harness and add workloads
	harness := benchmarks.NewHarness(benchmarks.HarnessConfig{Sim: sim, Output: os.Stdout})
	workloads := benchmarks.GetWorkloads()
	harness.AddWorkloads(workloads)

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("tracesim Workload Harness")
		fmt.Println("=========================")
		fmt.Printf("Predictor: %s\n", sim.Predictor.Kind)
		for _, l := range sim.Hierarchy.Levels {
			fmt.Printf("%s: %d bytes, %d-way, %dB lines, %s\n",
				l.Name, l.Size, l.Associativity, l.BlockSize, l.Policy)
		}
		fmt.Println("")
	}

	// Run workloads
	results, err := harness.RunAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	if *check {
		failed := false
		for i, r := range results {
			if err := workloads[i].Check(r); err != nil {
				fmt.Fprintf(os.Stderr, "FAIL %v\n", err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	}
}
