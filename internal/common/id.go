package common

import (
	"github.com/google/uuid"
)

// NewBatchID generates a unique identifier for one indexing run, stamped
// onto every document of that run as batch_id_s.
// Format: batch_<uuid>
func NewBatchID() string {
	return "batch_" + uuid.New().String()
}
