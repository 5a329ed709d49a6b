// Package event defines the events consumed by the simulation core.
//
// Events are plain values. Producers (a trace reader, a synthetic workload,
// or an instrumentation harness) create them, and the simulation core
// consumes them in arrival order.
package event

import (
	"fmt"
	"io"
)

// AccessKind tells whether a memory access reads or writes.
type AccessKind uint8

const (
	// Read is a load.
	Read AccessKind = iota
	// Write is a store.
	Write
)

// String returns "R" or "W".
func (k AccessKind) String() string {
	if k == Write {
		return "W"
	}
	return "R"
}

// BranchEvent is the resolved outcome of one branch instruction.
type BranchEvent struct {
	PC     uint64
	Taken  bool
	Target uint64
}

// MemoryEvent is one memory operand access.
type MemoryEvent struct {
	PC   uint64
	Addr uint64
	Kind AccessKind
	// Size in bytes
	Size uint32
}

// AllocEvent describes a heap allocation or release.
type AllocEvent struct {
	Addr uint64
	Size uint64
}

// Kind identifies which payload of an Event is meaningful.
type Kind uint8

// Event kinds.
const (
	KindBranch Kind = iota
	KindMemory
	KindRetire
	KindROIBegin
	KindROIEnd
	KindMalloc
	KindFree
)

var kindNames = [...]string{
	KindBranch:   "branch",
	KindMemory:   "memory",
	KindRetire:   "retire",
	KindROIBegin: "roi_begin",
	KindROIEnd:   "roi_end",
	KindMalloc:   "malloc",
	KindFree:     "free",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event is a tagged union of everything an event source can emit.
type Event struct {
	Kind   Kind
	Thread int
	Branch BranchEvent
	Memory MemoryEvent
	Alloc  AllocEvent
}

// Branch wraps a branch outcome.
func Branch(pc uint64, taken bool, target uint64) Event {
	return Event{
		Kind:   KindBranch,
		Branch: BranchEvent{PC: pc, Taken: taken, Target: target},
	}
}

// Memory wraps a memory access.
func Memory(pc, addr uint64, kind AccessKind, size uint32) Event {
	return Event{
		Kind:   KindMemory,
		Memory: MemoryEvent{PC: pc, Addr: addr, Kind: kind, Size: size},
	}
}

// Retire marks one retired instruction on the given thread.
func Retire(thread int) Event {
	return Event{Kind: KindRetire, Thread: thread}
}

// ROIBegin opens the region of interest.
func ROIBegin() Event {
	return Event{Kind: KindROIBegin}
}

// ROIEnd closes the region of interest.
func ROIEnd() Event {
	return Event{Kind: KindROIEnd}
}

// Malloc records an allocation returned by the allocator.
func Malloc(addr, size uint64) Event {
	return Event{Kind: KindMalloc, Alloc: AllocEvent{Addr: addr, Size: size}}
}

// Free records a release of addr.
func Free(addr uint64) Event {
	return Event{Kind: KindFree, Alloc: AllocEvent{Addr: addr}}
}

// A Source yields events one at a time. Next returns io.EOF when the
// stream is exhausted.
type Source interface {
	Next() (Event, error)
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []Event
	pos    int
}

// NewSliceSource creates a source over events.
func NewSliceSource(events []Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next returns the next event or io.EOF.
func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}

	ev := s.events[s.pos]
	s.pos++

	return ev, nil
}

// Remaining returns how many events have not been consumed yet.
func (s *SliceSource) Remaining() int {
	return len(s.events) - s.pos
}
