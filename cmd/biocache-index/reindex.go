package main

import (
	"context"
	"os"
	"time"

	"github.com/ternarybob/biocache-indexer/internal/csvout"
	"github.com/ternarybob/biocache-indexer/internal/engine"
	"github.com/ternarybob/biocache-indexer/internal/index"
)

// runReindex drives a full or incremental bulk pass over the row store:
// PageByTimeRange feeds a bounded WorkerQueue, cfg.Reindex.Workers
// AddDocThread workers each run their own Engine against the shared index
// Adapter, and worker 0's periodic FlushAndMaybeCommit is followed by a
// caller-requested final hard commit.
func runReindex(ctx context.Context, deps *dependencies, startDate *time.Time, commitAtEnd, optimise bool) {
	logger := deps.logger
	since := time.Time{}
	if startDate != nil {
		since = *startDate
	}

	workerCount := deps.cfg.Reindex.Workers
	engines := make([]*engine.Engine, workerCount)
	for i := range engines {
		engines[i] = deps.newEngine()
	}
	opts := deps.engineOptions(startDate)

	csv, closeCSV, err := openCSVSideChannel(deps)
	if err != nil {
		logger.Error().Err(err).Msg("reindex: failed to open csv side channel, continuing without it")
	}
	defer closeCSV()

	queue := index.NewWorkerQueue(workerCount * 2)
	wg := index.AddDocThreads(ctx, logger, workerCount, queue, deps.adapter, func(ctx context.Context, worker int, ref *index.DocRef) error {
		_, err := engines[worker].IndexFromMap(ctx, ref.RowKey, ref.Row, opts)
		return err
	})

	rows, errs := deps.rowStore.PageByTimeRange(ctx, since)
	processed := 0
	const batchSize = 50
	batch := make([]*index.DocRef, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		queue.Submit(batch)
		batch = make([]*index.DocRef, 0, batchSize)
	}

loop:
	for {
		select {
		case <-ctx.Done():
			logger.Warn().Msg("reindex: cancelled, draining in-flight work")
			break loop
		case page, ok := <-rows:
			if !ok {
				break loop
			}
			batch = append(batch, &index.DocRef{RowKey: page.RowKey, Row: map[string]string(page.Row)})
			if csv != nil {
				if err := csv.WriteRow(page.Row); err != nil {
					logger.Warn().Err(err).Str("row_key", page.RowKey).Msg("reindex: csv side channel write failed")
				}
			}
			processed++
			if len(batch) >= batchSize {
				flush()
			}
			if processed%10000 == 0 {
				logger.Info().Int("processed", processed).Msg("reindex: progress")
				deps.broadcaster.Broadcast(progressUpdate("reindex", processed, 0))
			}
		}
	}
	flush()
	queue.Close()
	wg.Wait()

	if csv != nil {
		if err := csv.Flush(); err != nil {
			logger.Warn().Err(err).Msg("reindex: csv side channel flush failed")
		}
	}

	if err := drainRowStoreErrors(errs, logger); err != nil {
		logger.Error().Err(err).Msg("reindex: row store reported an error during the scan")
	}

	if commitAtEnd {
		if err := deps.adapter.Finalise(ctx, optimise, false); err != nil {
			logger.Error().Err(err).Msg("reindex: finalise failed")
			return
		}
	}

	logger.Info().Int("processed", processed).Msg("reindex: complete")
}

func drainRowStoreErrors(errs <-chan error, _ interface{}) error {
	select {
	case err, ok := <-errs:
		if ok {
			return err
		}
	default:
	}
	return nil
}

// openCSVSideChannel opens the optional CSV mirror configured under
// cfg.CSV: a plain output file, plus a parallel "<name>.redacted<ext>"
// file with the configured sensitive columns blanked when any are
// listed. Returns a nil Writer and no-op closer when the side channel is
// disabled.
func openCSVSideChannel(deps *dependencies) (*csvout.Writer, func(), error) {
	cfg := deps.cfg.CSV
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, func() {}, err
	}

	var redact *os.File
	if len(cfg.SensitiveColumns) > 0 {
		redact, err = os.Create(redactedPath(cfg.OutputPath))
		if err != nil {
			out.Close()
			return nil, func() {}, err
		}
	}

	closer := func() {
		out.Close()
		if redact != nil {
			redact.Close()
		}
	}

	// csvout.New treats a non-nil io.Writer interface as "write the
	// redacted mirror" - passing a typed-nil *os.File through an
	// interface parameter would not be nil, so build the call with a
	// literal nil when no redact file was opened.
	var writer *csvout.Writer
	if redact != nil {
		writer = csvout.New(engine.CanonicalHeaders, cfg.SensitiveColumns, out, redact)
	} else {
		writer = csvout.New(engine.CanonicalHeaders, cfg.SensitiveColumns, out, nil)
	}
	if err := writer.WriteHeader(); err != nil {
		closer()
		return nil, func() {}, err
	}
	return writer, closer, nil
}

// redactedPath derives "<name>.redacted<ext>" from the configured output
// path; a bare name with no extension just gets the suffix appended.
func redactedPath(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i] + ".redacted" + path[i:]
		}
	}
	return path + ".redacted"
}
