// Package core provides the simulation context. It owns the branch
// predictor, the memory hierarchy and the run bookkeeping, and routes every
// trace event to them under one lock.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-logr/logr"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/report"
	"github.com/sarchlab/tracesim/timing/cache"
	"github.com/sarchlab/tracesim/timing/predictor"
	"github.com/sarchlab/tracesim/timing/stats"
)

// PredictorID is the stats identity of the branch predictor. Cache levels
// are numbered from PredictorID+1 in chain order.
const PredictorID = 0

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithLogger sets the logger. Lifecycle messages are logged at V(1).
func WithLogger(log logr.Logger) CoreOption {
	return func(c *Core) {
		c.log = log
	}
}

// WithAllocWriter sets where the allocation trace is written. Without it
// allocations are still paired but nothing is written.
func WithAllocWriter(w io.Writer) CoreOption {
	return func(c *Core) {
		c.allocOut = w
	}
}

// WithRunID names the run in the final report.
func WithRunID(id string) CoreOption {
	return func(c *Core) {
		c.runID = id
	}
}

// WithHook attaches hook to the predictor and to every memory level.
func WithHook(hook sim.Hook) CoreOption {
	return func(c *Core) {
		c.hooks = append(c.hooks, hook)
	}
}

// Core is the simulation context.
type Core struct {
	mu sync.Mutex

	config   *Config
	log      logr.Logger
	runID    string
	hooks    []sim.Hook
	allocOut io.Writer

	// Predictor and Hierarchy are exposed for inspection. They must not be
	// driven directly while events are dispatched.
	Predictor predictor.Predictor
	Hierarchy *cache.Hierarchy

	stats *stats.Aggregator
	alloc *allocTracker

	roiActive    bool
	warmed       bool
	instructions uint64
	memTick      uint64
	allocErr     error

	finished bool
	final    report.Report
	onFinish []func(report.Report)
}

// NewCore builds the predictor and the hierarchy described by config.
func NewCore(config *Config, opts ...CoreOption) (*Core, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Core{
		config: config.Clone(),
		log:    logr.Discard(),
		stats:  stats.NewAggregator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	pred, err := predictor.New(PredictorID, c.config.Predictor)
	if err != nil {
		return nil, fmt.Errorf("failed to build predictor: %w", err)
	}
	pred.RegisterStats(c.stats)
	for _, hook := range c.hooks {
		pred.AcceptHook(hook)
	}
	c.Predictor = pred

	builder := cache.MakeBuilder().
		WithFirstID(PredictorID + 1).
		WithStats(c.stats)
	for _, hook := range c.hooks {
		builder = builder.WithHook(hook)
	}

	c.Hierarchy, err = builder.Build(c.config.Hierarchy)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory hierarchy: %w", err)
	}

	if c.config.TrackAllocations {
		c.alloc = newAllocTracker(c.allocOut)
	}

	c.roiActive = !c.config.ROIGated
	c.warmed = c.config.WarmupInstructions == 0

	c.log.V(1).Info("core created",
		"predictor", pred.Name(),
		"levels", len(c.Hierarchy.Levels),
		"warmup", c.config.WarmupInstructions,
		"max", c.config.MaxInstructions,
		"roiGated", c.config.ROIGated)

	return c, nil
}

// Config returns a copy of the configuration the core was built with.
func (c *Core) Config() *Config {
	return c.config.Clone()
}

// Stats returns the aggregator every component reports into.
func (c *Core) Stats() *stats.Aggregator {
	return c.stats
}

// OnFinish registers fn to run once the run has finished. If it already
// has, fn runs immediately.
func (c *Core) OnFinish(fn func(report.Report)) {
	c.mu.Lock()
	finished := c.finished
	if !finished {
		c.onFinish = append(c.onFinish, fn)
	}
	r := c.final
	c.mu.Unlock()

	if finished {
		fn(r)
	}
}

// active reports whether branches and memory accesses are simulated.
func (c *Core) active() bool {
	return !c.finished && c.roiActive && c.warmed
}

// OnBranch feeds a resolved branch to the predictor.
func (c *Core) OnBranch(ev event.BranchEvent, tick uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.branch(ev, tick)
}

func (c *Core) branch(ev event.BranchEvent, tick uint64) {
	if !c.active() {
		return
	}

	c.Predictor.Predict(ev, tick)
}

// OnMemoryAccess sends ev down the memory hierarchy.
func (c *Core) OnMemoryAccess(ev event.MemoryEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.access(ev)
}

func (c *Core) access(ev event.MemoryEvent) {
	if !c.active() {
		return
	}

	c.memTick++
	c.Hierarchy.Head.Send(cache.NewRequest(ev, c.memTick))
}

// OnInstructionRetired counts a retired instruction while the region of
// interest is active. Reaching the instruction budget finishes the run.
func (c *Core) OnInstructionRetired(thread int) {
	c.mu.Lock()
	done := c.retire(thread)
	c.mu.Unlock()

	if done {
		c.notifyFinish()
	}
}

func (c *Core) retire(thread int) (finished bool) {
	if c.finished || !c.roiActive {
		return false
	}

	c.instructions++

	if !c.warmed && c.instructions >= c.config.WarmupInstructions {
		c.warmed = true
		c.log.V(1).Info("warm-up complete",
			"instructions", c.instructions, "thread", thread)
	}

	if c.config.MaxInstructions > 0 && c.instructions >= c.config.MaxInstructions {
		c.log.V(1).Info("instruction budget reached",
			"instructions", c.instructions)
		c.finishLocked()
		return true
	}

	return false
}

// BeginROI activates the region of interest.
func (c *Core) BeginROI() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setROI(true)
}

// EndROI deactivates the region of interest.
func (c *Core) EndROI() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setROI(false)
}

func (c *Core) setROI(active bool) {
	if c.finished || c.roiActive == active {
		return
	}

	c.roiActive = active
	c.log.V(1).Info("region of interest", "active", active,
		"instructions", c.instructions)
}

// ROIActive reports whether the region of interest is active.
func (c *Core) ROIActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.roiActive
}

// OnMalloc records a new allocation.
func (c *Core) OnMalloc(ev event.AllocEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.malloc(ev)
}

func (c *Core) malloc(ev event.AllocEvent) {
	if c.alloc == nil || c.finished {
		return
	}

	c.keepAllocErr(c.alloc.malloc(ev.Addr, ev.Size, c.roiActive))
}

// OnFree records the release of the allocation at addr. Unknown addresses
// are ignored.
func (c *Core) OnFree(addr uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.free(addr)
}

func (c *Core) free(addr uint64) {
	if c.alloc == nil || c.finished {
		return
	}

	c.keepAllocErr(c.alloc.free(addr, c.roiActive))
}

func (c *Core) keepAllocErr(err error) {
	if err != nil && c.allocErr == nil {
		c.allocErr = err
		c.log.Error(err, "failed to write allocation trace")
	}
}

// Dispatch routes ev to its handler. Branches are stamped with the current
// instruction count.
func (c *Core) Dispatch(ev event.Event) {
	c.mu.Lock()

	done := false
	switch ev.Kind {
	case event.KindBranch:
		c.branch(ev.Branch, c.instructions)
	case event.KindMemory:
		c.access(ev.Memory)
	case event.KindRetire:
		done = c.retire(ev.Thread)
	case event.KindROIBegin:
		c.setROI(true)
	case event.KindROIEnd:
		c.setROI(false)
	case event.KindMalloc:
		c.malloc(ev.Alloc)
	case event.KindFree:
		c.free(ev.Alloc.Addr)
	}

	c.mu.Unlock()

	if done {
		c.notifyFinish()
	}
}

// Run dispatches events from src until it is exhausted, the run finishes,
// or ctx is cancelled. Run does not finish the run at the end of src.
func (c *Core) Run(ctx context.Context, src event.Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if c.Finished() {
			return nil
		}

		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		c.Dispatch(ev)
	}
}

// Instructions returns the number of instructions counted so far.
func (c *Core) Instructions() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.instructions
}

// Finished reports whether the run has finished.
func (c *Core) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.finished
}

// AllocErr returns the first error hit while writing the allocation trace.
func (c *Core) AllocErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.allocErr
}

// Finish ends the run and returns the final report. Only the first call
// builds the report and runs the OnFinish callbacks; later calls return the
// same report.
func (c *Core) Finish() report.Report {
	c.mu.Lock()
	first := !c.finished
	if first {
		c.finishLocked()
	}
	r := c.final
	c.mu.Unlock()

	if first {
		c.notifyFinish()
	}

	return r
}

func (c *Core) finishLocked() {
	c.finished = true

	r := report.Build(c.runID, c.instructions, c.stats)
	if c.alloc != nil {
		c.keepAllocErr(c.alloc.flush())
		r.UnmatchedFrees = c.alloc.unmatched
	}
	c.final = r

	c.log.V(1).Info("run finished",
		"run", r.RunID,
		"instructions", r.Instructions,
		"accuracy", r.Accuracy)
}

func (c *Core) notifyFinish() {
	c.mu.Lock()
	callbacks := c.onFinish
	c.onFinish = nil
	r := c.final
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(r)
	}
}
