package cache

import "fmt"

// Replacement policy names accepted by LevelConfig.Policy.
const (
	PolicyLRU  = "lru"
	PolicyFIFO = "fifo"
)

// ReplacementPolicy maintains the recency metadata of blocks of type T.
type ReplacementPolicy[T any] interface {
	// Upgrade is called whenever blk is accessed or installed.
	Upgrade(blk T, tick uint64)
	// Downgrade is called when blk is evicted or invalidated.
	Downgrade(blk T)
}

// SetWayPolicy picks victims inside one set of a set-associative cache.
type SetWayPolicy interface {
	ReplacementPolicy[*SetWayBlk]

	// FindVictim returns (false, blk) if blk is an invalid way the caller
	// should fill, or (true, blk) if blk is a valid block to evict.
	FindVictim(set []*SetWayBlk) (bool, *SetWayBlk)
}

// FAPolicy picks victims in a fully-associative cache.
type FAPolicy interface {
	ReplacementPolicy[*FABlk]

	// FindVictim returns (true, blk) with the next block to evict, or
	// (false, nil) if no valid block is tracked.
	FindVictim(addr uint64) (bool, *FABlk)
}

// NewSetWayPolicy creates a set-bounded policy by name.
func NewSetWayPolicy(name string) (SetWayPolicy, error) {
	switch name {
	case PolicyLRU, "":
		return &SetLRU{}, nil
	case PolicyFIFO:
		return &SetFIFO{}, nil
	default:
		return nil, fmt.Errorf("unknown replacement policy %q", name)
	}
}

// NewFAPolicy creates a fully-associative policy by name.
func NewFAPolicy(name string) (FAPolicy, error) {
	switch name {
	case PolicyLRU, "":
		return &FALRU{}, nil
	case PolicyFIFO:
		return &FAFIFO{}, nil
	default:
		return nil, fmt.Errorf("unknown replacement policy %q", name)
	}
}

// oldestWay returns an invalid way if there is one, otherwise the valid
// way with the smallest tick. Ties go to the lowest way index.
func oldestWay(set []*SetWayBlk) (bool, *SetWayBlk) {
	var victim *SetWayBlk

	for _, blk := range set {
		if !blk.Valid {
			return false, blk
		}

		if victim == nil || blk.Tick < victim.Tick {
			victim = blk
		}
	}

	return victim != nil, victim
}

// SetLRU evicts the least recently used way.
type SetLRU struct{}

// Upgrade stamps blk with the access tick.
func (p *SetLRU) Upgrade(blk *SetWayBlk, tick uint64) {
	blk.Tick = tick
}

// Downgrade invalidates blk.
func (p *SetLRU) Downgrade(blk *SetWayBlk) {
	blk.Valid = false
	blk.Tick = 0
}

// FindVictim returns the least recently used way of set.
func (p *SetLRU) FindVictim(set []*SetWayBlk) (bool, *SetWayBlk) {
	return oldestWay(set)
}

// SetFIFO evicts the way installed first. Hits do not refresh a block.
type SetFIFO struct{}

// Upgrade stamps blk only when it has just been installed.
func (p *SetFIFO) Upgrade(blk *SetWayBlk, tick uint64) {
	if blk.Tick == 0 {
		blk.Tick = tick
	}
}

// Downgrade invalidates blk.
func (p *SetFIFO) Downgrade(blk *SetWayBlk) {
	blk.Valid = false
	blk.Tick = 0
}

// FindVictim returns the oldest installed way of set.
func (p *SetFIFO) FindVictim(set []*SetWayBlk) (bool, *SetWayBlk) {
	return oldestWay(set)
}

// recencyList is a doubly linked list of blocks, head first.
type recencyList struct {
	head *FABlk
	tail *FABlk
}

func (l *recencyList) unlink(blk *FABlk) {
	if !blk.linked {
		return
	}

	if blk.Prev != nil {
		blk.Prev.Next = blk.Next
	} else {
		l.head = blk.Next
	}

	if blk.Next != nil {
		blk.Next.Prev = blk.Prev
	} else {
		l.tail = blk.Prev
	}

	blk.Prev = nil
	blk.Next = nil
	blk.linked = false
}

func (l *recencyList) pushFront(blk *FABlk) {
	blk.Prev = nil
	blk.Next = l.head

	if l.head != nil {
		l.head.Prev = blk
	} else {
		l.tail = blk
	}

	l.head = blk
	blk.linked = true
}

// Head returns the most recently inserted or promoted block.
func (l *recencyList) Head() *FABlk {
	return l.head
}

// Tail returns the next victim candidate.
func (l *recencyList) Tail() *FABlk {
	return l.tail
}

// Len counts the linked blocks.
func (l *recencyList) Len() int {
	n := 0
	for b := l.head; b != nil; b = b.Next {
		n++
	}
	return n
}

func (l *recencyList) victim() (bool, *FABlk) {
	if l.tail == nil {
		return false, nil
	}
	return true, l.tail
}

func (l *recencyList) drop(blk *FABlk) {
	l.unlink(blk)
	blk.Valid = false
	blk.Tick = 0
}

// FALRU keeps blocks in recency order; every access moves a block to the
// head and the tail is evicted.
type FALRU struct {
	recencyList
}

// Upgrade moves blk to the head of the list.
func (p *FALRU) Upgrade(blk *FABlk, tick uint64) {
	blk.Tick = tick
	if p.head == blk {
		return
	}

	p.unlink(blk)
	p.pushFront(blk)
}

// Downgrade unlinks and invalidates blk.
func (p *FALRU) Downgrade(blk *FABlk) {
	p.drop(blk)
}

// FindVictim returns the tail of the list.
func (p *FALRU) FindVictim(addr uint64) (bool, *FABlk) {
	return p.victim()
}

// FAFIFO links blocks at the head when they are installed and never moves
// them afterwards.
type FAFIFO struct {
	recencyList
}

// Upgrade links a newly installed blk at the head.
func (p *FAFIFO) Upgrade(blk *FABlk, tick uint64) {
	if blk.linked {
		return
	}

	blk.Tick = tick
	p.pushFront(blk)
}

// Downgrade unlinks and invalidates blk.
func (p *FAFIFO) Downgrade(blk *FABlk) {
	p.drop(blk)
}

// FindVictim returns the oldest installed block.
func (p *FAFIFO) FindVictim(addr uint64) (bool, *FABlk) {
	return p.victim()
}
