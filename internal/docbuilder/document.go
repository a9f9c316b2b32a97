package docbuilder

import (
	"fmt"

	"github.com/ternarybob/arbor"
)

// BackendPublisher is the narrow slice of the index backend adapter the
// builder needs to publish a finished document.
type BackendPublisher interface {
	Add(doc *RecycleDoc) error
}

// RecycleDoc is one reusable document accumulator. Values are stored as
// one []string per field name, so repeated addField calls against the
// same field append to that field's slice.
type RecycleDoc struct {
	id     string
	fields map[string][]string
	order  []string // field names in first-add order, for stable emission
}

func newRecycleDoc() *RecycleDoc {
	return &RecycleDoc{fields: make(map[string][]string)}
}

// reset clears a RecycleDoc for reuse without discarding its backing map.
func (d *RecycleDoc) reset() {
	d.id = ""
	for k := range d.fields {
		delete(d.fields, k)
	}
	d.order = d.order[:0]
}

// ID returns the document's id field.
func (d *RecycleDoc) ID() string { return d.id }

// Values returns the values recorded for field, in addition order.
func (d *RecycleDoc) Values(field string) []string { return d.fields[field] }

// Fields returns the set of field names that have at least one value, in
// the order they were first added.
func (d *RecycleDoc) Fields() []string { return d.order }

func (d *RecycleDoc) setField(field, value string) {
	existing, ok := d.fields[field]
	if !ok {
		d.order = append(d.order, field)
	}
	d.fields[field] = append(existing, value)
}

// docState tracks a builder's per-document lifecycle: every RecycleDoc
// acquired via NewDoc must reach exactly one terminal call, Index or
// Release.
type docState int

const (
	stateIdle docState = iota
	stateOpen
)

// Builder is the schema-aware, per-producer document accumulator. It is
// not safe for concurrent mutation; one Builder belongs to one worker,
// and many workers share one BackendPublisher.
type Builder struct {
	schema    *Schema
	backend   BackendPublisher
	pool      *Pool
	logger    arbor.ILogger

	state docState
	cur   *RecycleDoc
}

// NewBuilder constructs a Builder over schema, publishing finished
// documents to backend and drawing RecycleDoc instances from pool.
func NewBuilder(schema *Schema, backend BackendPublisher, pool *Pool, logger arbor.ILogger) *Builder {
	return &Builder{schema: schema, backend: backend, pool: pool, logger: logger}
}

// NewDoc starts a new document. If the previous document was neither
// indexed nor released, it is logged and discarded - reusing an
// unterminated builder is a diagnostic error, not state corruption.
func (b *Builder) NewDoc(id string) {
	if b.state == stateOpen {
		b.logger.Error().Str("document_id", b.cur.ID()).
			Msg("docbuilder: NewDoc called while a prior document was still open; discarding it")
		b.pool.Put(b.cur)
		b.cur = nil
	}
	b.cur = b.pool.Get()
	b.cur.id = id
	b.state = stateOpen
}

// AddField is a no-op if value is empty. It looks up the field's schema
// definition (memoized), emits the value to the primary field, and to
// every copy-field destination, truncating to MaxChars when set.
// Unknown fields are logged but never fail the document.
func (b *Builder) AddField(field, value string) {
	if value == "" {
		return
	}
	if b.state != stateOpen {
		b.logger.Error().Str("field", field).Msg("docbuilder: AddField called with no open document")
		return
	}

	def := b.schema.Lookup(field)
	b.cur.setField(field, value)

	for _, cf := range def.CopyFields {
		v := value
		if cf.MaxChars > 0 && len(v) > cf.MaxChars {
			v = v[:cf.MaxChars]
		}
		b.cur.setField(cf.Dest, v)
	}
}

// Index publishes the current document to the backend. Must follow a
// NewDoc; a double-index is a logged error, not a panic.
func (b *Builder) Index() error {
	if b.state != stateOpen {
		b.logger.Error().Msg("docbuilder: Index called with no open document")
		return fmt.Errorf("docbuilder: no open document")
	}
	doc := b.cur
	b.cur = nil
	b.state = stateIdle

	if err := b.backend.Add(doc); err != nil {
		b.pool.Put(doc)
		return fmt.Errorf("docbuilder: publishing document %q: %w", doc.ID(), err)
	}
	b.pool.Put(doc)
	return nil
}

// Release discards the current document. Must follow a NewDoc.
func (b *Builder) Release() {
	if b.state != stateOpen {
		b.logger.Error().Msg("docbuilder: Release called with no open document")
		return
	}
	b.pool.Put(b.cur)
	b.cur = nil
	b.state = stateIdle
}
