// Package main provides the tracesim command line. It replays a text trace
// or a synthetic workload through the branch predictor and the cache
// hierarchy and prints the final report.
package main

import (
	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// A missing .env file is fine; flags and the environment still apply.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
