package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/docbuilder"
)

// Adapter is the mode-independent façade the indexing engine drives: it
// owns the batch buffer and commit-size counter, and delegates the
// actual wire operation to a Transport.
type Adapter struct {
	transport Transport
	logger    arbor.ILogger

	batchSize      int
	hardCommitSize int
	facetPageSize  int
	readPageSize   int

	mu                sync.Mutex
	batch             []Document
	currentCommitSize int

	idleFlushInterval time.Duration
	idleStop          chan struct{}
	idleStopOnce      sync.Once
}

// NewAdapter builds an Adapter over an already-constructed Transport.
// Most callers should use New, which selects the Transport from a
// configuration URL.
func NewAdapter(transport Transport, batchSize, hardCommitSize, facetPageSize, readPageSize int, idleFlushInterval time.Duration, logger arbor.ILogger) *Adapter {
	a := &Adapter{
		transport:         transport,
		logger:            logger,
		batchSize:         batchSize,
		hardCommitSize:    hardCommitSize,
		facetPageSize:     facetPageSize,
		readPageSize:      readPageSize,
		idleFlushInterval: idleFlushInterval,
	}
	if idleFlushInterval > 0 {
		a.startIdleFlush()
	}
	return a
}

// New constructs an Adapter, classifying backendURL into one of the three
// deployment modes.
func New(cfg *common.IndexConfig, logger arbor.ILogger) (*Adapter, error) {
	mode, err := common.ClassifyIndexBackendURL(cfg.BackendURL)
	if err != nil {
		return nil, err
	}

	var transport Transport
	switch mode {
	case common.IndexBackendEmbedded:
		transport, err = newEmbeddedTransport(cfg.BackendURL, logger)
	case common.IndexBackendRemote:
		transport = newRemoteTransport(cfg.BackendURL, cfg.RemoteThreads, cfg.OperationTimeout, logger)
	case common.IndexBackendCluster:
		transport, err = newClusterTransport(cfg.BackendURL, cfg.ClusterDefaultCollection, cfg.RemoteThreads, cfg.OperationTimeout, logger)
	default:
		return nil, fmt.Errorf("index: unrecognized backend mode for %q", cfg.BackendURL)
	}
	if err != nil {
		return nil, err
	}

	return NewAdapter(transport, cfg.BatchSize, cfg.HardCommitSize, cfg.FacetPageSize, cfg.ReadPageSize, cfg.IdleFlushInterval, logger), nil
}

// Add implements docbuilder.BackendPublisher: it converts a finished
// RecycleDoc into a wire Document and enqueues it under the batch mutex,
// flushing when the batch fills.
func (a *Adapter) Add(doc *docbuilder.RecycleDoc) error {
	fields := make(map[string][]string, len(doc.Fields()))
	for _, f := range doc.Fields() {
		fields[f] = doc.Values(f)
	}
	wireDoc := Document{ID: doc.ID(), Fields: fields, Order: append([]string(nil), doc.Fields()...)}

	a.mu.Lock()
	a.batch = append(a.batch, wireDoc)
	var toFlush []Document
	if len(a.batch) >= a.batchSize {
		toFlush = a.batch
		a.batch = nil
	}
	a.mu.Unlock()

	if toFlush == nil {
		return nil
	}
	return a.flushBatch(context.Background(), toFlush, false)
}

var _ docbuilder.BackendPublisher = (*Adapter)(nil)

// FlushAndMaybeCommit flushes the current batch via the transport, then
// issues a hard commit if currentCommitSize has reached hardCommitSize or
// the caller set commit=true.
func (a *Adapter) FlushAndMaybeCommit(ctx context.Context, commit bool) error {
	a.mu.Lock()
	toFlush := a.batch
	a.batch = nil
	a.mu.Unlock()

	return a.flushBatch(ctx, toFlush, commit)
}

// flushBatch ships an already-dequeued batch to the transport and, if the
// running commit counter crosses hardCommitSize (or the caller asked for
// one), issues a hard commit. toFlush must already be removed from
// a.batch by the caller under a.mu, so that the dequeue-and-flush-trigger
// decision is made in the same critical section as the append that might
// have filled the batch.
func (a *Adapter) flushBatch(ctx context.Context, toFlush []Document, commit bool) error {
	if len(toFlush) > 0 {
		if err := a.transport.AddBatch(ctx, toFlush); err != nil {
			a.logger.Error().Err(err).Int("batch_size", len(toFlush)).Msg("index: batch flush failed")
			return fmt.Errorf("index: flushing batch: %w", err)
		}
	}

	a.mu.Lock()
	a.currentCommitSize += len(toFlush)
	shouldHardCommit := a.currentCommitSize >= a.hardCommitSize || commit
	if shouldHardCommit {
		a.currentCommitSize = 0
	}
	a.mu.Unlock()

	if shouldHardCommit {
		if err := a.transport.Commit(ctx, true); err != nil {
			return fmt.Errorf("index: hard commit: %w", err)
		}
	}
	return nil
}

// Commit issues a soft commit.
func (a *Adapter) Commit(ctx context.Context) error {
	return a.transport.Commit(ctx, false)
}

// HardCommit issues a hard commit directly, bypassing the flush counter.
func (a *Adapter) HardCommit(ctx context.Context) error {
	return a.transport.Commit(ctx, true)
}

func (a *Adapter) DeleteByQuery(ctx context.Context, query string) error {
	return a.transport.DeleteByQuery(ctx, query)
}

func (a *Adapter) DeleteByField(ctx context.Context, field, value string) error {
	return a.transport.DeleteByField(ctx, field, value)
}

// EmptyIndex is equivalent to DeleteByQuery("*:*").
func (a *Adapter) EmptyIndex(ctx context.Context) error {
	return a.transport.DeleteByQuery(ctx, "*:*")
}

func (a *Adapter) Optimize(ctx context.Context) error {
	return a.transport.Optimize(ctx)
}

func (a *Adapter) Reload(ctx context.Context) error {
	return a.transport.Reload(ctx)
}

// Finalise flushes any residual batch, hard-commits, optionally
// optimizes, and optionally shuts down. It acquires the batch mutex for
// the flush step.
func (a *Adapter) Finalise(ctx context.Context, optimise, shutdown bool) error {
	if err := a.FlushAndMaybeCommit(ctx, true); err != nil {
		return err
	}
	if optimise {
		if err := a.transport.Optimize(ctx); err != nil {
			return fmt.Errorf("index: optimize during finalise: %w", err)
		}
	}
	a.stopIdleFlush()
	if shutdown {
		return a.transport.Shutdown()
	}
	return nil
}

func (a *Adapter) Shutdown() error {
	a.stopIdleFlush()
	return a.transport.Shutdown()
}

// startIdleFlush runs a background timer that flushes the batch even
// when no caller has filled it, so a slow trickle of incremental updates
// still becomes visible within idleFlushInterval. This is additive
// reliability behavior beyond the base batch/commit protocol.
func (a *Adapter) startIdleFlush() {
	a.idleStop = make(chan struct{})
	common.SafeGo(a.logger, "index.idleFlush", func() {
		ticker := time.NewTicker(a.idleFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.mu.Lock()
				empty := len(a.batch) == 0
				a.mu.Unlock()
				if empty {
					continue
				}
				if err := a.FlushAndMaybeCommit(context.Background(), false); err != nil {
					a.logger.Warn().Err(err).Msg("index: idle flush failed")
				}
			case <-a.idleStop:
				return
			}
		}
	})
}

func (a *Adapter) stopIdleFlush() {
	if a.idleStop == nil {
		return
	}
	a.idleStopOnce.Do(func() { close(a.idleStop) })
}
