package main

import (
	"context"
	"fmt"

	"github.com/ternarybob/biocache-indexer/internal/index"
)

// runResample re-derives every document's contextual-layer and
// species-group fields by paging the already-built index itself rather
// than re-reading the row store: it walks the distinct data_resource_uid
// facet, and for each bucket re-fetches the backing row and re-runs it
// through the engine so layer/vocab changes can be picked up without a
// full row-store rescan.
func runResample(ctx context.Context, deps *dependencies, commitAtEnd, optimise bool) {
	logger := deps.logger
	eng := deps.newEngine()
	opts := deps.engineOptions(nil)

	processed := 0
	err := deps.adapter.PageOverFacet(ctx, func(dataResourceUID string, count int) error {
		return deps.adapter.PageOverIndex(ctx, func(row index.ResultRow) error {
			rowKeyAny, ok := row["row_key"]
			if !ok {
				return nil
			}
			rowKey, ok := rowKeyAny.(string)
			if !ok || rowKey == "" {
				return nil
			}

			record, found, err := deps.rowStore.Get(ctx, rowKey)
			if err != nil {
				logger.Warn().Err(err).Str("row_key", rowKey).Msg("resample: row store lookup failed, skipping")
				return nil
			}
			if !found {
				logger.Warn().Str("row_key", rowKey).Msg("resample: row no longer present in row store, skipping")
				return nil
			}

			if _, err := eng.IndexFromMap(ctx, rowKey, record, opts); err != nil {
				logger.Error().Err(err).Str("row_key", rowKey).Msg("resample: re-indexing row failed")
			}

			processed++
			if processed%10000 == 0 {
				logger.Info().Int("processed", processed).Msg("resample: progress")
				deps.broadcaster.Broadcast(progressUpdate("resample", processed, 0))
			}
			return nil
		}, []string{"row_key"}, fmt.Sprintf("data_resource_uid:%q", dataResourceUID), nil, "", "asc", nil)
	}, "data_resource_uid", "*:*", nil)

	if err != nil {
		logger.Error().Err(err).Msg("resample: facet walk failed")
		return
	}

	if err := deps.adapter.FlushAndMaybeCommit(ctx, false); err != nil {
		logger.Error().Err(err).Msg("resample: final flush failed")
		return
	}
	if commitAtEnd {
		if err := deps.adapter.Finalise(ctx, optimise, false); err != nil {
			logger.Error().Err(err).Msg("resample: finalise failed")
			return
		}
	}

	logger.Info().Int("processed", processed).Msg("resample: complete")
}
