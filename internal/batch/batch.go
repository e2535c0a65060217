// Package batch fans conversion work out over a bounded worker pool and
// streams progress back to a single consumer.
package batch

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/dattool/internal/convert"
	"github.com/Faultbox/dattool/internal/logger"
)

// Concurrency bounds. Requested worker counts are clamped into this range.
const (
	MinWorkers = 1
	MaxWorkers = 16
)

// Pair is one source file and its destination.
type Pair struct {
	Source string
	Dest   string
}

// EventKind discriminates batch events.
type EventKind int

// Event kinds, in the order a consumer sees them per completion.
const (
	EventProgress EventKind = iota // Completed/Total updated
	EventResult                    // one pair finished, Outcome valid
	EventDone                      // all pairs resolved, terminal
)

// Event is one message from the worker pool to the consumer.
type Event struct {
	Kind      EventKind
	Completed int
	Total     int
	Pair      Pair            // EventResult only
	Outcome   convert.Outcome // EventResult only
}

// ClampWorkers bounds a requested concurrency to [MinWorkers, MaxWorkers].
func ClampWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Run converts every pair on a pool of at most workers goroutines and
// returns immediately with the event stream. Pairs may complete in any
// order; each completion emits a progress event then a result event, and
// a single done event follows after every pair has resolved, after which
// the channel is closed.
//
// The channel is buffered to hold the whole batch, so workers never wait
// on the consumer and the consumer can drain at its own pace. Failed
// pairs are reported like any other; they never stop the rest.
func Run(pairs []Pair, opts convert.Options, workers int) <-chan Event {
	total := len(pairs)
	events := make(chan Event, 2*total+1)

	workers = ClampWorkers(workers)
	logger.Info("starting batch conversion",
		zap.Int("files", total),
		zap.Int("workers", workers))

	go func() {
		defer close(events)

		var g errgroup.Group
		g.SetLimit(workers)

		var mu sync.Mutex
		completed := 0

		for _, pair := range pairs {
			pair := pair
			g.Go(func() error {
				outcome := convert.File(pair.Source, pair.Dest, opts)

				mu.Lock()
				completed++
				done := completed
				events <- Event{Kind: EventProgress, Completed: done, Total: total}
				events <- Event{Kind: EventResult, Completed: done, Total: total, Pair: pair, Outcome: outcome}
				mu.Unlock()
				return nil
			})
		}

		g.Wait()
		events <- Event{Kind: EventDone, Completed: total, Total: total}
	}()

	return events
}
