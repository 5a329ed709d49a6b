package cache

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tracesim/timing/stats"
)

// Hierarchy is a built chain of levels.
type Hierarchy struct {
	// Head receives every request.
	Head MemObject
	// Levels lists the caches in chain order, without Memory.
	Levels []MemObject
	Memory *Memory
}

// All returns the caches followed by memory.
func (h *Hierarchy) All() []MemObject {
	out := make([]MemObject, 0, len(h.Levels)+1)
	out = append(out, h.Levels...)
	return append(out, h.Memory)
}

// Reset drops every block of every level.
func (h *Hierarchy) Reset() {
	for _, l := range h.Levels {
		l.Reset()
	}
}

// Builder can build cache hierarchies.
type Builder struct {
	firstID    int
	memoryName string
	agg        *stats.Aggregator
	hooks      []sim.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		firstID:    1,
		memoryName: "memory",
	}
}

// WithFirstID sets the ID of the first level. Later levels count up.
func (b Builder) WithFirstID(id int) Builder {
	b.firstID = id
	return b
}

// WithMemoryName sets the name of the backing memory level.
func (b Builder) WithMemoryName(name string) Builder {
	b.memoryName = name
	return b
}

// WithStats registers every level in agg.
func (b Builder) WithStats(agg *stats.Aggregator) Builder {
	b.agg = agg
	return b
}

// WithHook attaches hook to every level, memory included.
func (b Builder) WithHook(hook sim.Hook) Builder {
	hooks := make([]sim.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)
	return b
}

// Build creates the levels in config and links them to a backing memory.
func (b Builder) Build(config HierarchyConfig) (*Hierarchy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	h := &Hierarchy{}
	id := b.firstID

	for _, lc := range config.Levels {
		level, err := b.buildLevel(id, lc)
		if err != nil {
			return nil, err
		}

		h.Levels = append(h.Levels, level)
		id++
	}

	h.Memory = NewMemory(id, b.memoryName)

	all := h.All()
	for i, obj := range all {
		if i+1 < len(all) {
			obj.SetNextLevel(all[i+1])
		}

		if b.agg != nil {
			obj.RegisterStats(b.agg)
		}

		if hookable, ok := obj.(sim.Hookable); ok {
			for _, hook := range b.hooks {
				hookable.AcceptHook(hook)
			}
		}
	}

	h.Head = all[0]

	return h, nil
}

func (b Builder) buildLevel(id int, lc LevelConfig) (MemObject, error) {
	if lc.FullyAssociative {
		c, err := NewFACache(id, lc)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := NewSetAssocCache(id, lc)
	if err != nil {
		return nil, err
	}
	return c, nil
}
