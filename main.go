// Package main provides the entry point for tracesim.
// tracesim is a trace-driven branch predictor and cache hierarchy
// simulator built on Akita hooks.
//
// For the full CLI, use: go run ./cmd/tracesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tracesim - Trace-Driven Predictor and Cache Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tracesim [options] <trace-file...>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --config            Path to simulation configuration JSON file")
	fmt.Println("  --workload          Run a built-in synthetic workload")
	fmt.Println("  --max-instructions  Finish after this many instructions")
	fmt.Println("  --sqlite            Export the report to a SQLite database")
	fmt.Println("  -v                  Log verbosity")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tracesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tracesim' instead.")
	}
}
