package cache

// FACache is a fully-associative cache level. All blocks form one pool.
type FACache struct {
	node

	config    LevelConfig
	blockSize uint64
	capacity  int

	allocated int
	free      []*FABlk
	tags      map[uint64]*FABlk
	policy    FAPolicy
}

// NewFACache creates a fully-associative level from config.
func NewFACache(id int, config LevelConfig) (*FACache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	policy, err := NewFAPolicy(config.Policy)
	if err != nil {
		return nil, err
	}

	return &FACache{
		node:      newNode(id, config.Name),
		config:    config,
		blockSize: uint64(config.BlockSize),
		capacity:  config.NumBlocks(),
		tags:      make(map[uint64]*FABlk),
		policy:    policy,
	}, nil
}

// Config returns the level configuration.
func (c *FACache) Config() LevelConfig {
	return c.config
}

// Policy returns the replacement policy, which owns the recency list.
func (c *FACache) Policy() FAPolicy {
	return c.policy
}

func (c *FACache) tag(addr uint64) uint64 {
	return addr / c.blockSize
}

// Send looks up req, fetching the block from the next level on a miss.
func (c *FACache) Send(req *Request) {
	c.countAccess(req)

	tag := c.tag(req.Addr)

	if blk, ok := c.tags[tag]; ok {
		c.policy.Upgrade(blk, req.Tick)
		c.hit(c, req)
		return
	}

	c.counters.Misses++
	c.invoke(c, HookPosMiss, req, nil)

	slot := c.freeSlot(req)

	c.forward(req)

	slot.Tag = tag
	slot.Valid = true
	c.tags[tag] = slot
	c.policy.Upgrade(slot, req.Tick)
	c.counters.Loads++
}

func (c *FACache) freeSlot(req *Request) *FABlk {
	if n := len(c.free); n > 0 {
		blk := c.free[n-1]
		c.free = c.free[:n-1]
		return blk
	}

	if c.allocated < c.capacity {
		c.allocated++
		return &FABlk{}
	}

	found, victim := c.policy.FindVictim(req.Addr)
	if !found {
		// Every allocated block sits in the free list or the policy list,
		// so a full pool always yields a victim.
		panic("fully-associative cache is full but has no victim")
	}

	delete(c.tags, victim.Tag)
	c.policy.Downgrade(victim)
	c.counters.Evictions++
	c.invoke(c, HookPosEvict, req, victim.Tag*c.blockSize)

	return victim
}

// Invalidate drops the block holding addr, if resident.
func (c *FACache) Invalidate(addr uint64) bool {
	tag := c.tag(addr)

	blk, ok := c.tags[tag]
	if !ok {
		return false
	}

	delete(c.tags, tag)
	c.policy.Downgrade(blk)
	c.free = append(c.free, blk)

	return true
}

// Contains reports whether addr is resident.
func (c *FACache) Contains(addr uint64) bool {
	_, ok := c.tags[c.tag(addr)]
	return ok
}

// Occupancy counts the valid blocks.
func (c *FACache) Occupancy() int {
	return len(c.tags)
}

// Reset drops every block.
func (c *FACache) Reset() {
	policy, _ := NewFAPolicy(c.config.Policy)
	c.policy = policy
	c.tags = make(map[uint64]*FABlk)
	c.free = nil
	c.allocated = 0
}
