package predictor

// Counter is a saturating counter of a fixed bit width. Its value never
// leaves [0, 2^bits-1].
type Counter struct {
	value uint8
	max   uint8
}

// NewCounter creates a counter of the given width holding initial, clamped
// to the representable range.
func NewCounter(bits uint, initial uint8) Counter {
	max := uint8(1<<bits - 1)
	if initial > max {
		initial = max
	}
	return Counter{value: initial, max: max}
}

// Value returns the current count.
func (c Counter) Value() uint8 {
	return c.value
}

// Max returns the saturation value.
func (c Counter) Max() uint8 {
	return c.max
}

// Increment adds one unless the counter is saturated.
func (c *Counter) Increment() {
	if c.value < c.max {
		c.value++
	}
}

// Decrement subtracts one unless the counter is zero.
func (c *Counter) Decrement() {
	if c.value > 0 {
		c.value--
	}
}

// Update moves the counter toward the outcome.
func (c *Counter) Update(taken bool) {
	if taken {
		c.Increment()
	} else {
		c.Decrement()
	}
}

// IsTaken reports whether the counter sits in the upper half of its range.
func (c Counter) IsTaken() bool {
	return c.value > c.max>>1
}

// HistoryRegister is a shift register of the most recent outcomes. Bit 0 is
// the newest outcome.
type HistoryRegister struct {
	bits uint64
	mask uint64
}

// NewHistoryRegister creates an all-zero register of the given width.
func NewHistoryRegister(width uint) HistoryRegister {
	var mask uint64
	if width >= 64 {
		mask = ^uint64(0)
	} else {
		mask = 1<<width - 1
	}
	return HistoryRegister{mask: mask}
}

// Shift pushes an outcome in and drops the oldest one.
func (h *HistoryRegister) Shift(taken bool) {
	h.bits <<= 1
	if taken {
		h.bits |= 1
	}
	h.bits &= h.mask
}

// Value returns the register contents.
func (h HistoryRegister) Value() uint64 {
	return h.bits
}

// Clear zeroes the register.
func (h *HistoryRegister) Clear() {
	h.bits = 0
}

func log2(n uint32) uint {
	var w uint
	for n > 1 {
		n >>= 1
		w++
	}
	return w
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}
