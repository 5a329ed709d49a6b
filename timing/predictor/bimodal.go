package predictor

import "github.com/sarchlab/tracesim/event"

// BTBStats counts Branch Target Buffer lookups.
type BTBStats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns the BTB hit rate as a percentage.
func (s BTBStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Bimodal is a 2-bit saturating counter predictor indexed by PC, with a
// Branch Target Buffer.
type Bimodal struct {
	base

	// 2-bit counters. States: 0=Strongly Not Taken, 1=Weakly Not Taken,
	// 2=Weakly Taken, 3=Strongly Taken
	bht []Counter

	btb      []btbEntry
	btbValid []bool

	bhtSize uint32
	btbSize uint32

	btbStats BTBStats
}

type btbEntry struct {
	pc     uint64
	target uint64
}

// NewBimodal creates a bimodal predictor. Zero sizes fall back to the
// defaults.
func NewBimodal(id int, config BimodalConfig) *Bimodal {
	bhtSize := config.BHTSize
	btbSize := config.BTBSize

	if bhtSize == 0 {
		bhtSize = 1024
	}
	if btbSize == 0 {
		btbSize = 256
	}

	bp := &Bimodal{
		base:     newBase(id, KindBimodal),
		bht:      make([]Counter, bhtSize),
		btb:      make([]btbEntry, btbSize),
		btbValid: make([]bool, btbSize),
		bhtSize:  bhtSize,
		btbSize:  btbSize,
	}

	bp.Reset()

	return bp
}

func (bp *Bimodal) bhtIndex(pc uint64) uint32 {
	// Use lower bits of PC (excluding alignment bits)
	return uint32((pc >> 2) & uint64(bp.bhtSize-1))
}

func (bp *Bimodal) btbIndex(pc uint64) uint32 {
	return uint32((pc >> 2) & uint64(bp.btbSize-1))
}

// Predict looks up the counter and the BTB for ev.PC, then trains on the
// actual outcome.
func (bp *Bimodal) Predict(ev event.BranchEvent, tick uint64) bool {
	counter := &bp.bht[bp.bhtIndex(ev.PC)]
	predicted := counter.IsTaken()

	btbIdx := bp.btbIndex(ev.PC)
	if bp.btbValid[btbIdx] && bp.btb[btbIdx].pc == ev.PC {
		bp.btbStats.Hits++
	} else {
		bp.btbStats.Misses++
	}

	counter.Update(ev.Taken)

	// Only taken branches teach the BTB a target.
	if ev.Taken {
		bp.btb[btbIdx] = btbEntry{pc: ev.PC, target: ev.Target}
		bp.btbValid[btbIdx] = true
	}

	correct := predicted == ev.Taken
	bp.record(bp, ev, correct)

	return correct
}

// Target returns the BTB target for pc, if known.
func (bp *Bimodal) Target(pc uint64) (uint64, bool) {
	idx := bp.btbIndex(pc)
	if bp.btbValid[idx] && bp.btb[idx].pc == pc {
		return bp.btb[idx].target, true
	}
	return 0, false
}

// BTBStats returns the BTB lookup counts.
func (bp *Bimodal) BTBStats() BTBStats {
	return bp.btbStats
}

// Reset sets every counter to weakly taken and clears the BTB.
func (bp *Bimodal) Reset() {
	for i := range bp.bht {
		bp.bht[i] = NewCounter(2, 2)
	}

	for i := range bp.btbValid {
		bp.btbValid[i] = false
	}

	bp.btbStats = BTBStats{}
}
