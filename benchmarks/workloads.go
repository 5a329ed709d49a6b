// Package benchmarks provides synthetic workloads with known predictor and
// cache behaviour, and a harness that runs them through the simulator.
package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/timing/core"
)

// Expectation bounds the outcome of a workload under the default
// configuration. Zero maximums are unbounded.
type Expectation struct {
	MinAccuracy float64
	MaxAccuracy float64

	MinL1HitRate float64
	MaxL1HitRate float64

	// UnmatchedFrees is checked when allocation tracking is enabled.
	UnmatchedFrees uint64
}

// Workload is a synthetic event stream.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload exercises
	Description string

	// Configure adjusts the simulation config before the run (optional)
	Configure func(config *core.Config)

	// Events builds the event stream
	Events func() []event.Event

	Expect Expectation
}

// Source returns a fresh source over the workload's events.
func (w Workload) Source() event.Source {
	return event.NewSliceSource(w.Events())
}

// GetWorkloads returns every workload.
func GetWorkloads() []Workload {
	return []Workload{
		loopBranch(),
		alternatingBranch(),
		randomBranch(),
		sequentialStream(),
		conflictThrash(),
		matrixWalk(),
		allocationChurn(),
	}
}

// GetCoreWorkloads returns a quick subset: one predictable branch
// pattern, one streaming pattern, and one thrashing pattern.
func GetCoreWorkloads() []Workload {
	return []Workload{
		loopBranch(),
		sequentialStream(),
		conflictThrash(),
	}
}

// stream builds an event list the way a retiring core would emit it: one
// retire per instruction, followed by the instruction's branch or access.
type stream struct {
	events []event.Event
}

func newStream() *stream {
	return &stream{events: []event.Event{event.ROIBegin()}}
}

func (s *stream) branch(pc uint64, taken bool, target uint64) {
	s.events = append(s.events, event.Retire(0), event.Branch(pc, taken, target))
}

func (s *stream) load(pc, addr uint64) {
	s.events = append(s.events, event.Retire(0), event.Memory(pc, addr, event.Read, 8))
}

func (s *stream) store(pc, addr uint64) {
	s.events = append(s.events, event.Retire(0), event.Memory(pc, addr, event.Write, 8))
}

func (s *stream) alu() {
	s.events = append(s.events, event.Retire(0))
}

func (s *stream) done() []event.Event {
	return append(s.events, event.ROIEnd())
}

// 1. Loop Branch - an 8-iteration inner loop inside a long outer loop
func loopBranch() Workload {
	return Workload{
		Name:        "loop_branch",
		Description: "8-trip inner loop back-edge nested in an always-taken outer loop",
		Events: func() []event.Event {
			s := newStream()
			for outer := 0; outer < 1000; outer++ {
				for j := 0; j < 8; j++ {
					s.load(0x1000, 0x10000+uint64(j)*8)
					s.branch(0x1010, j < 7, 0x1000)
				}
				s.branch(0x1020, true, 0x0ff0)
			}
			return s.done()
		},
		Expect: Expectation{MinAccuracy: 90, MinL1HitRate: 99},
	}
}

// 2. Alternating Branch - taken, not taken, taken, ...
func alternatingBranch() Workload {
	return Workload{
		Name:        "alternating_branch",
		Description: "one branch alternating between taken and not taken",
		Events: func() []event.Event {
			s := newStream()
			for i := 0; i < 4000; i++ {
				s.alu()
				s.branch(0x2000, i%2 == 0, 0x2100)
			}
			return s.done()
		},
		Expect: Expectation{MinAccuracy: 95},
	}
}

// 3. Random Branch - outcomes from a seeded generator
func randomBranch() Workload {
	return Workload{
		Name:        "random_branch",
		Description: "one branch with pseudo-random outcomes; nothing to learn",
		Events: func() []event.Event {
			rng := rand.New(rand.NewSource(42))
			s := newStream()
			for i := 0; i < 4000; i++ {
				s.branch(0x3000, rng.Intn(2) == 1, 0x3100)
			}
			return s.done()
		},
		Expect: Expectation{MinAccuracy: 35, MaxAccuracy: 65},
	}
}

// 4. Sequential Stream - two passes over 64KB with 8-byte strides
func sequentialStream() Workload {
	return Workload{
		Name:        "sequential_stream",
		Description: "two sequential passes over a 64KB buffer that fits in L1",
		Events: func() []event.Event {
			s := newStream()
			for pass := 0; pass < 2; pass++ {
				for addr := uint64(0); addr < 64*1024; addr += 8 {
					s.load(0x4000, 0x100000+addr)
				}
			}
			return s.done()
		},
		Expect: Expectation{MinL1HitRate: 90},
	}
}

// 5. Conflict Thrash - 16 blocks mapping to one 8-way L1 set
func conflictThrash() Workload {
	return Workload{
		Name:        "conflict_thrash",
		Description: "cycles through 16 blocks of one L1 set; LRU misses every time",
		Events: func() []event.Event {
			s := newStream()
			// 256 sets * 64B: blocks 16KB apart share a set.
			for round := 0; round < 100; round++ {
				for i := uint64(0); i < 16; i++ {
					s.store(0x5000, 0x200000+i*16*1024)
				}
			}
			return s.done()
		},
		Expect: Expectation{MaxL1HitRate: 1},
	}
}

// 6. Matrix Walk - row-major C += A * B on 32x32 doubles
func matrixWalk() Workload {
	return Workload{
		Name:        "matrix_walk",
		Description: "naive 32x32 matrix multiply with loop branches and loads/stores",
		Events: func() []event.Event {
			const n = 32
			const (
				a = 0x300000
				b = 0x310000
				c = 0x320000
			)
			s := newStream()
			for i := uint64(0); i < n; i++ {
				for j := uint64(0); j < n; j++ {
					for k := uint64(0); k < n; k++ {
						s.load(0x6000, a+(i*n+k)*8)
						s.load(0x6004, b+(k*n+j)*8)
						s.alu()
						s.branch(0x6010, k < n-1, 0x6000)
					}
					s.store(0x6014, c+(i*n+j)*8)
					s.branch(0x6018, j < n-1, 0x5ff0)
				}
				s.branch(0x601c, i < n-1, 0x5fe0)
			}
			return s.done()
		},
		Expect: Expectation{MinAccuracy: 90, MinL1HitRate: 90},
	}
}

// 7. Allocation Churn - malloc/free pairs plus stray frees
func allocationChurn() Workload {
	return Workload{
		Name:        "allocation_churn",
		Description: "100 malloc/free pairs and 5 frees of unknown addresses",
		Configure: func(config *core.Config) {
			config.TrackAllocations = true
		},
		Events: func() []event.Event {
			s := newStream()
			for i := uint64(0); i < 100; i++ {
				addr := 0x7f000000 + i*0x100
				s.events = append(s.events, event.Malloc(addr, 64))
				s.store(0x7000, addr)
				s.events = append(s.events, event.Free(addr))
			}
			for i := uint64(0); i < 5; i++ {
				s.events = append(s.events, event.Free(0xdead0000+i))
			}
			return s.done()
		},
		Expect: Expectation{UnmatchedFrees: 5},
	}
}
