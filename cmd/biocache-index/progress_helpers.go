package main

import (
	"time"

	"github.com/ternarybob/biocache-indexer/internal/progress"
)

// progressUpdate builds a progress.Update for the given stage, stamped
// with the current time.
func progressUpdate(stage string, processed, total int) progress.Update {
	return progress.Update{
		Stage:     stage,
		Processed: int64(processed),
		Total:     int64(total),
		Timestamp: time.Now(),
	}
}
