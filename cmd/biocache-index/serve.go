package main

import (
	"context"
	"fmt"

	"github.com/ternarybob/biocache-indexer/internal/scheduler"
)

// runServe keeps the process alive running the scheduled reindex
// driver and the progress websocket endpoint until the signal context is
// cancelled, then drains both before returning.
func runServe(ctx context.Context, deps *dependencies) {
	logger := deps.logger
	shutdownProgress := deps.startProgressServer()

	sched := scheduler.New(logger)
	if deps.cfg.Reindex.Schedule != "" {
		err := sched.Register(deps.cfg.Reindex.Schedule, &scheduler.Job{
			Name: "reindex",
			Handler: func() error {
				runReindex(ctx, deps, nil, true, false)
				return nil
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("serve: failed to register scheduled reindex job")
			return
		}
		sched.Start()
		defer sched.Stop()
	} else {
		logger.Warn().Msg("serve: no reindex.schedule configured, scheduled driver disabled")
	}

	logger.Info().Msg("serve: ready - press Ctrl+C to stop")
	<-ctx.Done()

	logger.Info().Msg("serve: shutdown signal received, draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.cfg.Index.OperationTimeout)
	defer cancel()
	if err := shutdownProgress(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("serve: progress server shutdown reported an error")
	}
	if err := deps.adapter.Finalise(shutdownCtx, false, true); err != nil {
		logger.Error().Err(err).Msg("serve: finalise on shutdown failed")
	}

	fmt.Println()
}
