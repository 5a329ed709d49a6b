package cache

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/timing/stats"
)

// Hook positions fired by cache levels. The hook item is the *Request.
var (
	HookPosHit  = &sim.HookPos{Name: "CacheHit"}
	HookPosMiss = &sim.HookPos{Name: "CacheMiss"}
	// HookPosEvict carries the evicted block address as detail.
	HookPosEvict = &sim.HookPos{Name: "CacheEvict"}
)

// Request is a memory access travelling down the chain.
type Request struct {
	event.MemoryEvent

	// Tick orders accesses for the replacement policies. Ticks start at 1.
	Tick uint64

	// ServedBy is the ID of the level that hit.
	ServedBy int
}

// NewRequest wraps ev.
func NewRequest(ev event.MemoryEvent, tick uint64) *Request {
	return &Request{MemoryEvent: ev, Tick: tick, ServedBy: -1}
}

// A MemObject is one node of the memory hierarchy chain.
type MemObject interface {
	// Send resolves req at this level or below. It returns only after every
	// level it consulted has returned.
	Send(req *Request)
	SetNextLevel(next MemObject)
	NextLevel() MemObject
	ID() int
	Name() string
	RegisterStats(agg *stats.Aggregator)
	// Reset drops every block. Stats are kept.
	Reset()
}

// node carries what every level shares.
type node struct {
	*sim.HookableBase

	id       int
	name     string
	next     MemObject
	counters *stats.Counters
	numHooks int
}

func newNode(id int, name string) node {
	return node{
		HookableBase: sim.NewHookableBase(),
		id:           id,
		name:         name,
		counters:     &stats.Counters{ID: id, Name: name, Kind: stats.KindCache},
	}
}

// AcceptHook registers a hook.
func (n *node) AcceptHook(hook sim.Hook) {
	n.HookableBase.AcceptHook(hook)
	n.numHooks++
}

// ID returns the stats identity of the level.
func (n *node) ID() int {
	return n.id
}

// Name returns the level name.
func (n *node) Name() string {
	return n.name
}

// SetNextLevel links the level that serves misses.
func (n *node) SetNextLevel(next MemObject) {
	n.next = next
}

// NextLevel returns the level that serves misses.
func (n *node) NextLevel() MemObject {
	return n.next
}

// RegisterStats moves the tallies into agg.
func (n *node) RegisterStats(agg *stats.Aggregator) {
	c := agg.Register(n.id, n.name, stats.KindCache)
	if c != n.counters {
		c.Reads += n.counters.Reads
		c.Writes += n.counters.Writes
		c.Hits += n.counters.Hits
		c.Misses += n.counters.Misses
		c.Loads += n.counters.Loads
		c.Evictions += n.counters.Evictions
		n.counters = c
	}
}

// Counters returns the live tallies of the level.
func (n *node) Counters() stats.Counters {
	return *n.counters
}

func (n *node) countAccess(req *Request) {
	if req.Kind == event.Write {
		n.counters.Writes++
	} else {
		n.counters.Reads++
	}
}

func (n *node) hit(domain sim.Hookable, req *Request) {
	n.counters.Hits++
	req.ServedBy = n.id
	n.invoke(domain, HookPosHit, req, nil)
}

func (n *node) forward(req *Request) {
	if n.next != nil {
		n.next.Send(req)
	}
}

func (n *node) invoke(
	domain sim.Hookable,
	pos *sim.HookPos,
	req *Request,
	detail interface{},
) {
	if n.numHooks == 0 {
		return
	}

	n.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    pos,
		Item:   req,
		Detail: detail,
	})
}
