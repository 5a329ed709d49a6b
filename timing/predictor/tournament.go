package predictor

import (
	"github.com/sarchlab/tracesim/event"
)

// Tournament combines a local (per-address history) predictor and a global
// (shared history) predictor. A table of choice counters, indexed by the
// global history, decides which of the two is trusted.
type Tournament struct {
	base

	consts Constants

	localHistoryTable []HistoryRegister
	localCounters     []Counter
	globalCounters    []Counter
	choiceCounters    []Counter
	globalHistory     HistoryRegister

	localHistoryMask  uint64
	localCounterMask  uint64
	globalCounterMask uint64
}

// NewTournament creates a tournament predictor sized by consts.
func NewTournament(id int, consts Constants) (*Tournament, error) {
	if err := consts.Validate(); err != nil {
		return nil, err
	}

	t := &Tournament{
		base:              newBase(id, KindTournament),
		consts:            consts,
		localHistoryTable: make([]HistoryRegister, consts.LocalHistoryTableSize),
		localCounters:     make([]Counter, consts.LocalPredictorSize),
		globalCounters:    make([]Counter, consts.GlobalPredictorSize),
		choiceCounters:    make([]Counter, consts.ChoicePredictorSize),
		localHistoryMask:  uint64(consts.LocalHistoryTableSize - 1),
		localCounterMask:  uint64(consts.LocalPredictorSize - 1),
		globalCounterMask: uint64(consts.GlobalPredictorSize - 1),
	}

	t.Reset()

	return t, nil
}

// Reset restores every table to its initial state. Stats are kept.
func (t *Tournament) Reset() {
	localWidth := log2(t.consts.LocalPredictorSize)
	for i := range t.localHistoryTable {
		t.localHistoryTable[i] = NewHistoryRegister(localWidth)
	}

	for i := range t.localCounters {
		t.localCounters[i] = NewCounter(t.consts.LocalCounterBits, t.consts.InitialCounter)
	}

	for i := range t.globalCounters {
		t.globalCounters[i] = NewCounter(t.consts.GlobalCounterBits, t.consts.InitialCounter)
	}

	for i := range t.choiceCounters {
		t.choiceCounters[i] = NewCounter(t.consts.ChoiceCounterBits, t.consts.InitialChoice)
	}

	t.globalHistory = NewHistoryRegister(log2(t.consts.GlobalPredictorSize))
}

func (t *Tournament) localHistoryIndex(pc uint64) uint64 {
	return (pc >> t.consts.InstShiftAmt) & t.localHistoryMask
}

// Predict predicts ev, trains all tables on the actual outcome, and returns
// whether the prediction was correct.
func (t *Tournament) Predict(ev event.BranchEvent, tick uint64) bool {
	lhr := &t.localHistoryTable[t.localHistoryIndex(ev.PC)]
	local := &t.localCounters[lhr.Value()&t.localCounterMask]

	gIdx := t.globalHistory.Value() & t.globalCounterMask
	global := &t.globalCounters[gIdx]
	choice := &t.choiceCounters[gIdx]

	localTaken := local.IsTaken()
	globalTaken := global.IsTaken()

	predicted := localTaken
	if choice.IsTaken() {
		predicted = globalTaken
	}

	localCorrect := localTaken == ev.Taken
	globalCorrect := globalTaken == ev.Taken

	switch {
	case globalCorrect && !localCorrect:
		choice.Increment()
	case localCorrect && !globalCorrect:
		choice.Decrement()
	}

	local.Update(ev.Taken)
	global.Update(ev.Taken)
	lhr.Shift(ev.Taken)
	t.globalHistory.Shift(ev.Taken)

	correct := predicted == ev.Taken
	t.record(t, ev, correct)

	return correct
}

// State is a copy of the tournament tables, used to compare runs.
type State struct {
	LocalHistories []uint64
	LocalCounters  []uint8
	GlobalCounters []uint8
	ChoiceCounters []uint8
	GlobalHistory  uint64
}

// State copies the current tables.
func (t *Tournament) State() State {
	s := State{
		LocalHistories: make([]uint64, len(t.localHistoryTable)),
		LocalCounters:  counterValues(t.localCounters),
		GlobalCounters: counterValues(t.globalCounters),
		ChoiceCounters: counterValues(t.choiceCounters),
		GlobalHistory:  t.globalHistory.Value(),
	}

	for i, h := range t.localHistoryTable {
		s.LocalHistories[i] = h.Value()
	}

	return s
}

func counterValues(cs []Counter) []uint8 {
	out := make([]uint8, len(cs))
	for i, c := range cs {
		out[i] = c.Value()
	}
	return out
}
