package core

import (
	"bufio"
	"fmt"
	"io"
)

// allocTracker pairs MALLOC and FREE events and writes the allocation
// trace.
type allocTracker struct {
	w         *bufio.Writer
	live      map[uint64]uint64
	unmatched uint64
}

func newAllocTracker(w io.Writer) *allocTracker {
	if w == nil {
		w = io.Discard
	}

	return &allocTracker{
		w:    bufio.NewWriter(w),
		live: make(map[uint64]uint64),
	}
}

func (t *allocTracker) malloc(addr, size uint64, emit bool) error {
	t.live[addr] = size
	if !emit {
		return nil
	}

	_, err := fmt.Fprintf(t.w, "MALLOC 0x%x %d\n", addr, size)
	return err
}

// free drops a live allocation. A free of an unknown address is counted and
// otherwise ignored.
func (t *allocTracker) free(addr uint64, emit bool) error {
	size, ok := t.live[addr]
	if !ok {
		t.unmatched++
		return nil
	}

	delete(t.live, addr)
	if !emit {
		return nil
	}

	_, err := fmt.Fprintf(t.w, "FREE 0x%x %d\n", addr, size)
	return err
}

func (t *allocTracker) flush() error {
	return t.w.Flush()
}
