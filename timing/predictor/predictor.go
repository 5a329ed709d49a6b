// Package predictor models branch direction predictors driven by resolved
// branch outcomes.
package predictor

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/timing/stats"
)

// HookPosMispredict fires after a prediction turned out wrong. The hook
// item is the event.BranchEvent.
var HookPosMispredict = &sim.HookPos{Name: "Mispredict"}

// A Predictor predicts a branch, compares against the actual outcome, and
// trains itself on that outcome.
type Predictor interface {
	sim.Hookable

	// Predict returns whether the prediction for ev was correct.
	Predict(ev event.BranchEvent, tick uint64) bool

	ID() int
	Name() string
	RegisterStats(agg *stats.Aggregator)
	Reset()
}

// New creates the predictor selected by config.
func New(id int, config Config) (Predictor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Kind == KindBimodal {
		return NewBimodal(id, config.Bimodal), nil
	}

	return NewTournament(id, config.Tournament)
}

// base holds what every predictor shares.
type base struct {
	*sim.HookableBase

	id       int
	name     string
	counters *stats.Counters
	numHooks int
}

func newBase(id int, name string) base {
	return base{
		HookableBase: sim.NewHookableBase(),
		id:           id,
		name:         name,
		counters:     &stats.Counters{ID: id, Name: name, Kind: stats.KindPredictor},
	}
}

// AcceptHook registers a hook.
func (b *base) AcceptHook(hook sim.Hook) {
	b.HookableBase.AcceptHook(hook)
	b.numHooks++
}

// ID returns the stats identity.
func (b *base) ID() int {
	return b.id
}

// Name returns the display name.
func (b *base) Name() string {
	return b.name
}

// RegisterStats moves the tallies into agg.
func (b *base) RegisterStats(agg *stats.Aggregator) {
	c := agg.Register(b.id, b.name, stats.KindPredictor)
	if c != b.counters {
		c.Correct += b.counters.Correct
		c.Incorrect += b.counters.Incorrect
		b.counters = c
	}
}

// Counters returns the live tallies.
func (b *base) Counters() stats.Counters {
	return *b.counters
}

func (b *base) record(domain sim.Hookable, ev event.BranchEvent, correct bool) {
	if correct {
		b.counters.Correct++
		return
	}

	b.counters.Incorrect++
	if b.numHooks > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    HookPosMispredict,
			Item:   ev,
		})
	}
}
