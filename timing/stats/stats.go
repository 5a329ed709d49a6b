// Package stats collects the counters produced by the simulated predictors
// and memory hierarchy levels.
package stats

import "sort"

// Kind says what produced a Counters entry.
type Kind uint8

const (
	// KindCache is a cache level or the backing memory.
	KindCache Kind = iota
	// KindPredictor is a branch predictor.
	KindPredictor
)

// Counters holds the tallies of one registered identity.
type Counters struct {
	ID   int
	Name string
	Kind Kind

	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Loads     uint64
	Evictions uint64

	Correct   uint64
	Incorrect uint64
}

// Accesses returns hits plus misses.
func (c Counters) Accesses() uint64 {
	return c.Hits + c.Misses
}

// HitRate returns the hit rate as a percentage.
func (c Counters) HitRate() float64 {
	total := c.Accesses()
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total) * 100
}

// Predictions returns the number of predictions made.
func (c Counters) Predictions() uint64 {
	return c.Correct + c.Incorrect
}

// Accuracy returns the prediction accuracy as a percentage.
func (c Counters) Accuracy() float64 {
	total := c.Predictions()
	if total == 0 {
		return 0
	}
	return float64(c.Correct) / float64(total) * 100
}

func (c *Counters) clear() {
	*c = Counters{ID: c.ID, Name: c.Name, Kind: c.Kind}
}

// Aggregator owns every Counters entry of a simulation. It is not safe for
// concurrent use; callers serialize access.
type Aggregator struct {
	entries map[int]*Counters
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[int]*Counters)}
}

// Register creates the entry for id and returns it. Registering an id
// again returns the existing entry untouched.
func (a *Aggregator) Register(id int, name string, kind Kind) *Counters {
	if c, ok := a.entries[id]; ok {
		return c
	}

	c := &Counters{ID: id, Name: name, Kind: kind}
	a.entries[id] = c

	return c
}

// Get returns the entry for id, or nil if id was never registered.
func (a *Aggregator) Get(id int) *Counters {
	return a.entries[id]
}

// Snapshot copies all entries, ordered by id.
func (a *Aggregator) Snapshot() []Counters {
	out := make([]Counters, 0, len(a.entries))
	for _, c := range a.entries {
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Filter returns the snapshot entries of the given kind.
func (a *Aggregator) Filter(kind Kind) []Counters {
	var out []Counters
	for _, c := range a.Snapshot() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Reset zeroes every counter but keeps the registrations.
func (a *Aggregator) Reset() {
	for _, c := range a.entries {
		c.clear()
	}
}
