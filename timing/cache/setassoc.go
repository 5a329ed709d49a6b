package cache

// SetAssocCache is a set-associative cache level.
type SetAssocCache struct {
	node

	config    LevelConfig
	blockSize uint64
	numSets   uint64
	assoc     int

	// Ways are allocated on first use, so len(sets[i]) <= assoc.
	sets   [][]*SetWayBlk
	policy SetWayPolicy
}

// NewSetAssocCache creates a set-associative level from config.
func NewSetAssocCache(id int, config LevelConfig) (*SetAssocCache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	policy, err := NewSetWayPolicy(config.Policy)
	if err != nil {
		return nil, err
	}

	c := &SetAssocCache{
		node:      newNode(id, config.Name),
		config:    config,
		blockSize: uint64(config.BlockSize),
		numSets:   uint64(config.NumSets()),
		assoc:     config.Associativity,
		policy:    policy,
	}
	c.sets = make([][]*SetWayBlk, c.numSets)

	return c, nil
}

// Config returns the level configuration.
func (c *SetAssocCache) Config() LevelConfig {
	return c.config
}

// Locate splits addr into its set index and tag.
func (c *SetAssocCache) Locate(addr uint64) (set int, tag uint64) {
	blockAddr := addr / c.blockSize
	return int(blockAddr % c.numSets), blockAddr / c.numSets
}

func (c *SetAssocCache) lookup(set int, tag uint64) *SetWayBlk {
	for _, blk := range c.sets[set] {
		if blk.Valid && blk.Tag == tag {
			return blk
		}
	}
	return nil
}

func (c *SetAssocCache) blockAddr(blk *SetWayBlk) uint64 {
	return (blk.Tag*c.numSets + uint64(blk.Set)) * c.blockSize
}

// Send looks up req, fetching the block from the next level on a miss.
func (c *SetAssocCache) Send(req *Request) {
	c.countAccess(req)

	setIdx, tag := c.Locate(req.Addr)

	if blk := c.lookup(setIdx, tag); blk != nil {
		c.policy.Upgrade(blk, req.Tick)
		c.hit(c, req)
		return
	}

	c.counters.Misses++
	c.invoke(c, HookPosMiss, req, nil)

	slot := c.freeSlot(setIdx, req)

	c.forward(req)

	slot.Tag = tag
	slot.Valid = true
	c.policy.Upgrade(slot, req.Tick)
	c.counters.Loads++
}

// freeSlot returns a way to fill, evicting the policy's victim if the set
// is full.
func (c *SetAssocCache) freeSlot(setIdx int, req *Request) *SetWayBlk {
	set := c.sets[setIdx]

	if len(set) < c.assoc {
		blk := &SetWayBlk{Set: setIdx, Way: len(set)}
		c.sets[setIdx] = append(set, blk)
		return blk
	}

	found, victim := c.policy.FindVictim(set)
	if found {
		addr := c.blockAddr(victim)
		c.policy.Downgrade(victim)
		c.counters.Evictions++
		c.invoke(c, HookPosEvict, req, addr)
	}

	return victim
}

// Invalidate drops the block holding addr, if resident.
func (c *SetAssocCache) Invalidate(addr uint64) bool {
	setIdx, tag := c.Locate(addr)

	blk := c.lookup(setIdx, tag)
	if blk == nil {
		return false
	}

	c.policy.Downgrade(blk)

	return true
}

// Contains reports whether addr is resident.
func (c *SetAssocCache) Contains(addr uint64) bool {
	setIdx, tag := c.Locate(addr)
	return c.lookup(setIdx, tag) != nil
}

// Occupancy counts the valid blocks of a set.
func (c *SetAssocCache) Occupancy(set int) int {
	n := 0
	for _, blk := range c.sets[set] {
		if blk.Valid {
			n++
		}
	}
	return n
}

// NumSets returns the number of sets.
func (c *SetAssocCache) NumSets() int {
	return int(c.numSets)
}

// Reset drops every block.
func (c *SetAssocCache) Reset() {
	c.sets = make([][]*SetWayBlk, c.numSets)
}
