package index

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// WorkerQueue is the bounded array queue AddDocThread workers poll for
// document batches. It is a thin wrapper over a buffered channel; a
// polling array queue's idle-sleep backoff is approximated here by the
// channel's natural blocking receive, which achieves the same
// backpressure without busy polling.
type WorkerQueue struct {
	batches chan []*DocRef
}

// DocRef pairs a row key with the raw record map a worker still needs to
// run through the engine; the workers package only moves batches of work
// between producer and committer, it does not itself know the record
// shape.
type DocRef struct {
	RowKey string
	Row    map[string]string
}

// NewWorkerQueue constructs a WorkerQueue with the given capacity.
func NewWorkerQueue(capacity int) *WorkerQueue {
	return &WorkerQueue{batches: make(chan []*DocRef, capacity)}
}

// Submit enqueues a batch, blocking if the queue is full.
func (q *WorkerQueue) Submit(batch []*DocRef) {
	q.batches <- batch
}

// Close signals no more batches will be submitted.
func (q *WorkerQueue) Close() {
	close(q.batches)
}

// AddDocThreads starts n panic-protected workers consuming batches from
// queue via process. process receives the 0-based worker index so a
// caller can hand each goroutine its own Engine/Builder pair instead of
// sharing one across goroutines. Only worker 0 issues commits after each
// batch; the others index without committing, relying on worker 0 (or
// the eventual Finalise call) to make their writes visible.
func AddDocThreads(ctx context.Context, logger arbor.ILogger, n int, queue *WorkerQueue, adapter *Adapter, process func(ctx context.Context, worker int, ref *DocRef) error) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		worker := i
		go func() {
			defer wg.Done()
			for batch := range queue.batches {
				for _, ref := range batch {
					if err := process(ctx, worker, ref); err != nil {
						logger.Error().Err(err).Str("row_key", ref.RowKey).Int("worker", worker).
							Msg("AddDocThread: processing row failed")
					}
				}
				if worker == 0 {
					if err := adapter.FlushAndMaybeCommit(ctx, false); err != nil {
						logger.Error().Err(err).Int("worker", worker).Msg("AddDocThread: flush/commit failed")
					}
				}
				select {
				case <-ctx.Done():
					return
				default:
				}
			}
		}()
	}

	return &wg
}

// idlePollInterval documents the poll cadence a hand-rolled array queue
// would use, even though the channel-based WorkerQueue above doesn't poll.
const idlePollInterval = 250 * time.Millisecond
