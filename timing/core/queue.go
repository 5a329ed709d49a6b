package core

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/tracesim/event"
)

// errFinished stops the queue once the core has finished.
var errFinished = errors.New("core finished")

// Queue funnels events from many producers into one consumer goroutine that
// dispatches them to a Core in arrival order.
type Queue struct {
	core   *Core
	events chan event.Event
	ctx    context.Context

	producers *errgroup.Group
	consumer  *errgroup.Group
}

// NewQueue starts the consumer. capacity bounds the number of events in
// flight. Once c finishes, the consumer stops and pending and later Submit
// calls fail, so producers unwind.
func NewQueue(ctx context.Context, c *Core, capacity int) *Queue {
	consumer, cctx := errgroup.WithContext(ctx)
	producers, pctx := errgroup.WithContext(cctx)

	q := &Queue{
		core:      c,
		events:    make(chan event.Event, capacity),
		ctx:       pctx,
		producers: producers,
		consumer:  consumer,
	}

	consumer.Go(func() error {
		for {
			if q.core.Finished() {
				return errFinished
			}

			select {
			case ev, ok := <-q.events:
				if !ok {
					return nil
				}
				q.core.Dispatch(ev)
			case <-cctx.Done():
				return cctx.Err()
			}
		}
	})

	return q
}

// Submit enqueues ev, blocking while the queue is full. It must not be
// called after Close.
func (q *Queue) Submit(ev event.Event) error {
	select {
	case q.events <- ev:
		return nil
	case <-q.ctx.Done():
		return q.ctx.Err()
	}
}

// Go runs producer in its own goroutine. The first producer error cancels
// the other producers.
func (q *Queue) Go(producer func(ctx context.Context) error) {
	q.producers.Go(func() error {
		return producer(q.ctx)
	})
}

// Close waits for every producer, drains the queue, and stops the consumer.
// It returns the first producer or consumer error. Producers cut short by the
// core finishing are not an error.
func (q *Queue) Close() error {
	perr := q.producers.Wait()
	close(q.events)
	cerr := q.consumer.Wait()

	if errors.Is(cerr, errFinished) {
		if perr == nil || errors.Is(perr, context.Canceled) {
			return nil
		}
		return perr
	}
	if perr != nil {
		return perr
	}
	return cerr
}
