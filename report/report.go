// Package report turns the collected statistics of a run into the final
// report and writes it out as text or as a SQLite database.
package report

import (
	"fmt"
	"io"

	"github.com/rs/xid"

	"github.com/sarchlab/tracesim/timing/stats"
)

// Report is the end-of-run summary.
type Report struct {
	RunID        string
	Instructions uint64

	// Branches, Correct and Accuracy sum over every predictor.
	Branches uint64
	Correct  uint64
	Accuracy float64

	Levels     []stats.Counters
	Predictors []stats.Counters

	UnmatchedFrees uint64

	// Host resource usage, filled by SampleHost.
	HostRSS uint64
	HostCPU float64
}

// Build snapshots agg into a Report. An empty runID is replaced by a fresh
// xid.
func Build(runID string, instructions uint64, agg *stats.Aggregator) Report {
	if runID == "" {
		runID = xid.New().String()
	}

	r := Report{
		RunID:        runID,
		Instructions: instructions,
		Levels:       agg.Filter(stats.KindCache),
		Predictors:   agg.Filter(stats.KindPredictor),
	}

	for _, p := range r.Predictors {
		r.Branches += p.Predictions()
		r.Correct += p.Correct
	}

	if r.Branches > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Branches) * 100
	}

	return r
}

// WriteText prints r in human-readable form.
func WriteText(w io.Writer, r Report) error {
	ew := &errWriter{w: w}

	ew.printf("Run: %s\n", r.RunID)
	ew.printf("Total instructions: %d\n", r.Instructions)
	ew.printf("Branch prediction accuracy: %.2f%% (%d/%d)\n",
		r.Accuracy, r.Correct, r.Branches)

	if len(r.Predictors) > 1 {
		for _, p := range r.Predictors {
			ew.printf("  %-10s %.2f%% (%d/%d)\n",
				p.Name, p.Accuracy(), p.Correct, p.Predictions())
		}
	}

	if r.UnmatchedFrees > 0 {
		ew.printf("Unmatched frees: %d\n", r.UnmatchedFrees)
	}

	ew.printf("Memory hierarchy:\n")
	for _, l := range r.Levels {
		ew.printf("  %-10s hits=%d misses=%d loads=%d evictions=%d hit_rate=%.2f%%\n",
			l.Name, l.Hits, l.Misses, l.Loads, l.Evictions, l.HitRate())
	}

	if r.HostRSS > 0 {
		ew.printf("Host: rss=%d bytes cpu=%.1f%%\n", r.HostRSS, r.HostCPU)
	}

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
