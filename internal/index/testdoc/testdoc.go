// Package testdoc generates synthetic index.Document values for tests
// that need document identity distinct from their content - a hand-
// written literal ID like "1" works until a test needs many documents
// that must never collide, which is what this package is for.
package testdoc

import (
	"github.com/google/uuid"
	"github.com/ternarybob/biocache-indexer/internal/index"
)

// New builds a Document with a freshly generated UUID id and the given
// field/value pairs, each recorded as a single-valued field. Order follows
// the map's iteration order, which is not defined.
func New(fields map[string]string) index.Document {
	doc := index.Document{ID: uuid.New().String(), Fields: make(map[string][]string, len(fields))}
	for k, v := range fields {
		doc.Fields[k] = []string{v}
		doc.Order = append(doc.Order, k)
	}
	return doc
}

// NewBatch builds n synthetic documents, each with a unique ID and the
// given field stamped to value on every one - useful for batch-size and
// commit-threshold tests that care about count, not content.
func NewBatch(n int, field, value string) []index.Document {
	docs := make([]index.Document, n)
	for i := range docs {
		docs[i] = New(map[string]string{field: value})
	}
	return docs
}

// ID generates a standalone synthetic document ID, for tests that build
// a Document by hand but still want collision-free identity.
func ID() string {
	return uuid.New().String()
}
