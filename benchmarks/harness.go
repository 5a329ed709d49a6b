package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/tracesim/report"
	"github.com/sarchlab/tracesim/timing/core"
)

// WorkloadResult holds the outcome of a single workload run.
type WorkloadResult struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload exercises
	Description string `json:"description"`

	// Events is the number of events dispatched
	Events int `json:"events"`

	// Instructions is the number of instructions counted
	Instructions uint64 `json:"instructions"`

	// Branch predictor stats
	BranchPredictions     uint64  `json:"branch_predictions"`
	BranchCorrect         uint64  `json:"branch_correct"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent"`

	// L1 stats (the first level of the hierarchy)
	L1Hits           uint64  `json:"l1_hits"`
	L1Misses         uint64  `json:"l1_misses"`
	L1Evictions      uint64  `json:"l1_evictions"`
	L1HitRatePercent float64 `json:"l1_hit_rate_percent"`

	UnmatchedFrees uint64 `json:"unmatched_frees"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`

	// Report is the full report of the run
	Report report.Report `json:"-"`
}

// HarnessConfig configures the workload harness.
type HarnessConfig struct {
	// Sim is the simulation config each workload starts from. Nil selects
	// core.DefaultConfig.
	Sim *core.Config

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// Harness runs workloads and prints their results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new workload harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Sim == nil {
		config.Sim = core.DefaultConfig()
	}
	return &Harness{config: config}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes every workload. It stops at the first failing run.
func (h *Harness) RunAll(ctx context.Context) ([]WorkloadResult, error) {
	results := make([]WorkloadResult, 0, len(h.workloads))

	for _, w := range h.workloads {
		result, err := h.Run(ctx, w)
		if err != nil {
			return results, fmt.Errorf("%s: %w", w.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Run executes a single workload on a fresh core.
func (h *Harness) Run(ctx context.Context, w Workload) (WorkloadResult, error) {
	config := h.config.Sim.Clone()
	if w.Configure != nil {
		w.Configure(config)
	}

	c, err := core.NewCore(config, core.WithRunID(w.Name))
	if err != nil {
		return WorkloadResult{}, err
	}

	events := w.Events()
	src := newCountingSource(events)

	start := time.Now()
	if err := c.Run(ctx, src); err != nil {
		return WorkloadResult{}, err
	}
	r := c.Finish()
	wallTime := time.Since(start)

	result := WorkloadResult{
		Name:                  w.Name,
		Description:           w.Description,
		Events:                src.consumed,
		Instructions:          r.Instructions,
		BranchPredictions:     r.Branches,
		BranchCorrect:         r.Correct,
		BranchAccuracyPercent: r.Accuracy,
		UnmatchedFrees:        r.UnmatchedFrees,
		WallTime:              wallTime,
		Report:                r,
	}

	if len(r.Levels) > 0 {
		l1 := r.Levels[0]
		result.L1Hits = l1.Hits
		result.L1Misses = l1.Misses
		result.L1Evictions = l1.Evictions
		result.L1HitRatePercent = l1.HitRate()
	}

	return result, nil
}

// Check compares result against the workload's expectation.
func (w Workload) Check(result WorkloadResult) error {
	e := w.Expect

	if e.MinAccuracy > 0 && result.BranchAccuracyPercent < e.MinAccuracy {
		return fmt.Errorf("%s: accuracy %.2f%% below %.2f%%",
			w.Name, result.BranchAccuracyPercent, e.MinAccuracy)
	}
	if e.MaxAccuracy > 0 && result.BranchAccuracyPercent > e.MaxAccuracy {
		return fmt.Errorf("%s: accuracy %.2f%% above %.2f%%",
			w.Name, result.BranchAccuracyPercent, e.MaxAccuracy)
	}
	if e.MinL1HitRate > 0 && result.L1HitRatePercent < e.MinL1HitRate {
		return fmt.Errorf("%s: L1 hit rate %.2f%% below %.2f%%",
			w.Name, result.L1HitRatePercent, e.MinL1HitRate)
	}
	if e.MaxL1HitRate > 0 && result.L1HitRatePercent > e.MaxL1HitRate {
		return fmt.Errorf("%s: L1 hit rate %.2f%% above %.2f%%",
			w.Name, result.L1HitRatePercent, e.MaxL1HitRate)
	}
	if result.UnmatchedFrees != e.UnmatchedFrees {
		return fmt.Errorf("%s: %d unmatched frees, want %d",
			w.Name, result.UnmatchedFrees, e.UnmatchedFrees)
	}

	return nil
}

// PrintResults outputs workload results in a human-readable format.
func (h *Harness) PrintResults(results []WorkloadResult) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== tracesim Workload Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "Workload: %s\n", r.Name)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(out, "  Events:       %d\n", r.Events)
		_, _ = fmt.Fprintf(out, "  Instructions: %d\n", r.Instructions)

		if r.BranchPredictions > 0 {
			_, _ = fmt.Fprintln(out, "  --- Branch Predictor ---")
			_, _ = fmt.Fprintf(out, "  Predictions:  %d\n", r.BranchPredictions)
			_, _ = fmt.Fprintf(out, "  Correct:      %d\n", r.BranchCorrect)
			_, _ = fmt.Fprintf(out, "  Accuracy:     %.1f%%\n", r.BranchAccuracyPercent)
		}

		if r.L1Hits > 0 || r.L1Misses > 0 {
			_, _ = fmt.Fprintln(out, "  --- L1 ---")
			_, _ = fmt.Fprintf(out, "  Hits:         %d\n", r.L1Hits)
			_, _ = fmt.Fprintf(out, "  Misses:       %d\n", r.L1Misses)
			_, _ = fmt.Fprintf(out, "  Evictions:    %d\n", r.L1Evictions)
			_, _ = fmt.Fprintf(out, "  Hit Rate:     %.1f%%\n", r.L1HitRatePercent)
		}

		if r.UnmatchedFrees > 0 {
			_, _ = fmt.Fprintf(out, "  Unmatched Frees: %d\n", r.UnmatchedFrees)
		}

		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs workload results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,events,instructions,predictions,correct,accuracy,l1_hits,l1_misses,l1_evictions,l1_hit_rate,unmatched_frees")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%.3f,%d,%d,%d,%.3f,%d\n",
			r.Name,
			r.Events,
			r.Instructions,
			r.BranchPredictions,
			r.BranchCorrect,
			r.BranchAccuracyPercent,
			r.L1Hits,
			r.L1Misses,
			r.L1Evictions,
			r.L1HitRatePercent,
			r.UnmatchedFrees,
		)
	}
}

// HarnessReport is the complete JSON output format.
type HarnessReport struct {
	// Timestamp when the workloads were run
	Timestamp string `json:"timestamp"`

	// Config is the simulation config each workload started from
	Config *core.Config `json:"config"`

	// Results is the list of individual workload results
	Results []WorkloadResult `json:"results"`

	// TotalWallTime is the total wall clock time for all workloads
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs workload results in JSON format for automated
// comparison.
func (h *Harness) PrintJSON(results []WorkloadResult) error {
	var total time.Duration
	for _, r := range results {
		total += r.WallTime
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(HarnessReport{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Config:        h.config.Sim,
		Results:       results,
		TotalWallTime: total,
	})
}
