package benchmarks

import "github.com/sarchlab/tracesim/event"

// countingSource counts the events handed out.
type countingSource struct {
	*event.SliceSource
	consumed int
}

func newCountingSource(events []event.Event) *countingSource {
	return &countingSource{SliceSource: event.NewSliceSource(events)}
}

func (s *countingSource) Next() (event.Event, error) {
	ev, err := s.SliceSource.Next()
	if err == nil {
		s.consumed++
	}
	return ev, err
}
