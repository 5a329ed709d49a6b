// Package main provides a profiling wrapper for tracesim to identify
// performance bottlenecks in the predictor and cache models.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/tracesim/benchmarks"
	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/timing/core"
	"github.com/sarchlab/tracesim/trace"
)

var (
	workload    = flag.String("workload", "", "synthetic workload to run (default: the core set)")
	tracePath   = flag.String("trace", "", "profile a text trace instead of synthetic workloads")
	repeat      = flag.Int("repeat", 10, "number of times to replay the events")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	top         = flag.Int("top", 10, "number of hottest functions to summarise")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 0, "max instructions per replay (0 = unlimited)")
)

func main() {
	flag.Parse()

	if *repeat < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	streams, err := loadStreams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading events: %v\n", err)
		os.Exit(1)
	}

	// The profile is teed into memory so it can be summarised afterwards.
	var profBuf bytes.Buffer
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(io.MultiWriter(f, &profBuf)); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	instrCount, events, err := replayAll(ctx, streams)
	elapsed := time.Since(start)

	if *cpuProfile != "" {
		pprof.StopCPUProfile()
	}

	if err != nil {
		fmt.Printf("\nStopped early after %v: %v\n", elapsed, err)
	}

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Streams: %d x %d replays\n", len(streams), *repeat)
	fmt.Printf("Events dispatched: %d\n", events)
	fmt.Printf("Instructions counted: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Events/second: %.0f\n", float64(events)/elapsed.Seconds())
	}

	if profBuf.Len() > 0 {
		if err := printSummary(os.Stdout, profBuf.Bytes(), *top); err != nil {
			fmt.Fprintf(os.Stderr, "Error summarising CPU profile: %v\n", err)
		}
	}
}

type namedStream struct {
	name   string
	events []event.Event
}

// loadStreams materialises the events once so that parsing and generation
// stay out of the profile.
func loadStreams() ([]namedStream, error) {
	if *tracePath != "" {
		f, err := os.Open(*tracePath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		events, err := readAll(trace.NewReader(f))
		if err != nil {
			return nil, err
		}
		return []namedStream{{name: *tracePath, events: events}}, nil
	}

	workloads := benchmarks.GetCoreWorkloads()
	if *workload != "" {
		workloads = nil
		for _, w := range benchmarks.GetWorkloads() {
			if w.Name == *workload {
				workloads = append(workloads, w)
			}
		}
		if len(workloads) == 0 {
			return nil, fmt.Errorf("unknown workload %q", *workload)
		}
	}

	streams := make([]namedStream, 0, len(workloads))
	for _, w := range workloads {
		streams = append(streams, namedStream{name: w.Name, events: w.Events()})
	}
	return streams, nil
}

func readAll(r *trace.Reader) ([]event.Event, error) {
	var events []event.Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

func replayAll(ctx context.Context, streams []namedStream) (instructions, events uint64, err error) {
	config := core.DefaultConfig()
	config.MaxInstructions = *instruction

	for i := 0; i < *repeat; i++ {
		for _, s := range streams {
			c, err := core.NewCore(config)
			if err != nil {
				return instructions, events, err
			}

			if err := c.Run(ctx, event.NewSliceSource(s.events)); err != nil {
				return instructions, events, fmt.Errorf("%s: %w", s.name, err)
			}

			r := c.Finish()
			instructions += r.Instructions
			events += uint64(len(s.events))
		}
	}

	return instructions, events, nil
}
