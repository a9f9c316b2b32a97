// Package engine implements the record transformation at the center of
// the indexing pipeline: turning one row-store record into a published
// index document. Everything else in the module exists to feed this
// function a record and a place to send its output.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/biocache-indexer/internal/docbuilder"
	"github.com/ternarybob/biocache-indexer/internal/parsers"
	"github.com/ternarybob/biocache-indexer/internal/rowstore"
	"github.com/ternarybob/biocache-indexer/internal/vocab"
)

// suitableModellingExclusions are the query-assertion types that mark a
// record unsuitable for species distribution modelling.
var suitableModellingExclusions = map[string]struct{}{
	"invalid": {}, "historic": {}, "vagrant": {}, "irruptive": {},
}

// Engine drives IndexFromMap against the vocabulary caches and row store
// a single worker needs. It is not safe for concurrent use; one Engine
// wraps one Builder, and each AddDocThread worker owns its own.
type Engine struct {
	builder        *docbuilder.Builder
	rowStore       rowstore.RowStore
	assertionCodes *vocab.AssertionCodes
	speciesGroups  *vocab.SpeciesGroups
	speciesLists   *vocab.TaxonSpeciesListDAO
	logger         arbor.ILogger
}

// New constructs an Engine. builder is expected to publish to a shared
// index.Adapter; rowStore, assertionCodes, speciesGroups and speciesLists
// may be shared read-only across every worker's Engine.
func New(builder *docbuilder.Builder, rowStore rowstore.RowStore, assertionCodes *vocab.AssertionCodes, speciesGroups *vocab.SpeciesGroups, speciesLists *vocab.TaxonSpeciesListDAO, logger arbor.ILogger) *Engine {
	return &Engine{
		builder:        builder,
		rowStore:       rowStore,
		assertionCodes: assertionCodes,
		speciesGroups:  speciesGroups,
		speciesLists:   speciesLists,
		logger:         logger,
	}
}

// IndexFromMap runs the full record transformation against row (keyed by
// rowKey) and, if the record is eligible, publishes a document via the
// Engine's Builder. It returns the time spent and an error only for a
// fatal condition (schema drift, or a publish failure); a record that is
// merely ineligible is not an error.
func (e *Engine) IndexFromMap(ctx context.Context, rowKey string, row map[string]string, opts Options) (time.Duration, error) {
	start := time.Now()

	eligible, err := e.isEligible(row, opts)
	if err != nil {
		return time.Since(start), err
	}
	if !eligible {
		return time.Since(start), nil
	}

	e.builder.NewDoc(rowKey)
	e.builder.AddField("id", rowKey)
	e.builder.AddField("row_key", rowKey)

	if err := e.indexCanonicalColumns(row); err != nil {
		e.builder.Release()
		return time.Since(start), err
	}

	e.indexMiscProperties(row, opts.Misc)
	e.indexAssertions(row)
	e.indexSpeciesLists(ctx, row)
	if opts.GridRefIndexingEnabled {
		e.indexGridReferences(row)
	}
	e.indexUserAssertions(ctx, rowKey, row)
	e.indexQueryAssertions(row)
	e.indexContextualLayers(row)
	e.indexSpeciesGroups(row)

	if opts.BatchID != "" {
		e.builder.AddField("batch_id_s", opts.BatchID)
	}

	if err := e.builder.Index(); err != nil {
		return time.Since(start), fmt.Errorf("engine: indexing row %q: %w", rowKey, err)
	}
	return time.Since(start), nil
}

// isEligible decides whether a row should be indexed at all: a record
// with a non-empty deleted column, or with no columns beyond rowKey
// itself, is skipped; when opts.StartDate is set the record must also
// have been modified at or after it.
func (e *Engine) isEligible(row map[string]string, opts Options) (bool, error) {
	if row["deleted"] != "" {
		return false, nil
	}
	if len(row) < 2 {
		return false, nil
	}
	if opts.StartDate == nil {
		return true, nil
	}

	modified := getValue(row, "alaModified")
	if modified == "" {
		return false, nil
	}
	ed, ok := parsers.ParseDateDefault(modified)
	if !ok {
		return false, nil
	}
	return !ed.ParsedStartDate.Before(*opts.StartDate), nil
}

// indexCanonicalColumns materializes the Darwin Core header/value pairs
// in header order, splitting pipe-joined values for the enumerated
// multi-valued fields.
func (e *Engine) indexCanonicalColumns(row map[string]string) error {
	for _, header := range CanonicalHeaders {
		v := getValue(row, header)
		if v == "" {
			continue
		}
		if docbuilder.IsMultiValuedField(header) {
			for _, part := range strings.Split(v, "|") {
				if part != "" {
					e.builder.AddField(header, part)
				}
			}
			continue
		}
		e.builder.AddField(header, v)
	}
	return nil
}

// indexMiscProperties classifies each miscProperties key against the
// three configured name sets; a key in none of them is left unindexed.
func (e *Engine) indexMiscProperties(row map[string]string, cfg MiscFieldConfig) {
	raw := row["miscProperties"]
	if raw == "" {
		return
	}

	additional := toSet(cfg.AdditionalFields)
	userTyped := toSet(cfg.UserProvidedTypeProperties)
	indexed := toSet(cfg.IndexProperties)

	if err := parsers.ScanMiscProperties(raw, func(key, value string) {
		switch {
		case value == "":
			return
		case inSet(additional, key):
			e.builder.AddField(key, value)
		case inSet(userTyped, key):
			e.emitTyped(key, key, value)
		case inSet(indexed, key):
			e.emitTyped(key, defaultSuffixed(key), value)
		}
	}); err != nil {
		e.logger.Warn().Err(err).Msg("engine: miscProperties scan failed, partial result used")
	}
}

// emitTyped dispatches value to the int/double/date parser implied by
// outField's suffix, or indexes it as a plain string. A value that fails
// its typed parse is dropped, not indexed raw under the wrong type.
func (e *Engine) emitTyped(sourceKey, outField, value string) {
	switch {
	case strings.HasSuffix(outField, "_i"):
		n, err := strconv.Atoi(value)
		if err != nil {
			e.logger.Debug().Str("key", sourceKey).Str("value", value).Msg("engine: misc property not a valid int, skipping")
			return
		}
		e.builder.AddField(outField, strconv.Itoa(n))
	case strings.HasSuffix(outField, "_d"):
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			e.logger.Debug().Str("key", sourceKey).Str("value", value).Msg("engine: misc property not a valid double, skipping")
			return
		}
		e.builder.AddField(outField, value)
	case strings.HasSuffix(outField, "_dt"):
		ed, ok := parsers.ParseDateDefault(value)
		if !ok {
			e.logger.Debug().Str("key", sourceKey).Str("value", value).Msg("engine: misc property not a valid date, skipping")
			return
		}
		e.builder.AddField(outField, ed.ParsedStartDate.Format(time.RFC3339))
	default:
		e.builder.AddField(outField, value)
	}
}

func defaultSuffixed(key string) string {
	if strings.HasSuffix(key, "_i") || strings.HasSuffix(key, "_d") || strings.HasSuffix(key, "_dt") || strings.HasSuffix(key, "_s") {
		return key
	}
	return key + "_s"
}

// indexAssertions classifies each qualityAssertions entry by its
// qaStatus bit, and emits the codes never seen on the record as
// assertions_unchecked.
func (e *Engine) indexAssertions(row map[string]string) {
	raw := row["qualityAssertions"]
	if raw == "" {
		return
	}

	var seenCodes []int
	if err := parsers.ScanQualityAssertions(raw, func(code int, name string, qaStatus byte) {
		seenCodes = append(seenCodes, code)
		if qaStatus == '1' {
			e.builder.AddField("assertions_passed", name)
			return
		}

		e.builder.AddField("system_assertions", "true")
		if ac, ok := e.assertionCodes.GetByCode(code); ok && ac.Category == vocab.CategoryMissing {
			e.builder.AddField("assertions_missing", name)
			return
		}
		e.builder.AddField("assertions", name)
	}); err != nil {
		e.logger.Warn().Err(err).Msg("engine: qualityAssertions scan failed, partial result used")
	}

	for _, name := range e.assertionCodes.GetMissingByCode(seenCodes) {
		e.builder.AddField("assertions_unchecked", name)
	}
}

// indexSpeciesLists emits the species-list UIDs the record's taxon
// concept belongs to.
func (e *Engine) indexSpeciesLists(ctx context.Context, row map[string]string) {
	taxonConceptID := getValue(row, "taxonConceptID")
	if taxonConceptID == "" || e.speciesLists == nil {
		return
	}
	uids, err := e.speciesLists.ListUIDsForTaxon(ctx, taxonConceptID)
	if err != nil {
		e.logger.Warn().Err(err).Str("taxon_concept_id", taxonConceptID).Msg("engine: species list lookup failed")
		return
	}
	for _, uid := range uids {
		e.builder.AddField("species_list_uid", uid)
	}
}

// indexGridReferences splits the bounding box into its four corner
// columns, and derives the resolved grid cells from the record's own
// coordinates and coordinate uncertainty.
func (e *Engine) indexGridReferences(row map[string]string) {
	bbox := getValue(row, "bbox")
	if bbox != "" {
		parts := strings.Split(bbox, ",")
		if len(parts) == 4 {
			e.builder.AddField("min_latitude", strings.TrimSpace(parts[0]))
			e.builder.AddField("min_longitude", strings.TrimSpace(parts[1]))
			e.builder.AddField("max_latitude", strings.TrimSpace(parts[2]))
			e.builder.AddField("max_longitude", strings.TrimSpace(parts[3]))
		}
	}

	lat, latOK := parseFloat(getValue(row, "decimalLatitude"))
	lon, lonOK := parseFloat(getValue(row, "decimalLongitude"))
	if !latOK || !lonOK {
		return
	}
	uncertainty, _ := parseFloat(getValue(row, "coordinateUncertaintyInMeters"))

	ref, ok := parsers.GetGridRefAsResolutions(lat, lon, uncertainty)
	if !ok {
		return
	}
	for field, value := range ref.Fields() {
		e.builder.AddField(field, value)
	}
}

// indexUserAssertions emits the IDs of users who have raised an
// assertion against the record.
func (e *Engine) indexUserAssertions(ctx context.Context, rowKey string, row map[string]string) {
	if row["userQualityAssertion"] == "" || e.rowStore == nil {
		return
	}
	ids, err := e.rowStore.GetUserIDsForAssertions(ctx, rowKey)
	if err != nil {
		e.logger.Warn().Err(err).Str("row_key", rowKey).Msg("engine: user assertion ID lookup failed")
		return
	}
	for _, id := range ids {
		e.builder.AddField("assertion_user_id", id)
	}
}

// indexQueryAssertions walks the queryAssertion object ({uuid: type}
// entries); a type in suitableModellingExclusions marks the whole record
// unsuitable for distribution modelling.
func (e *Engine) indexQueryAssertions(row map[string]string) {
	raw := row["queryAssertion"]
	suitable := true
	if raw != "" {
		if err := parsers.ScanMiscProperties(raw, func(uuid, assertionType string) {
			e.builder.AddField("query_assertion_uuid", uuid)
			e.builder.AddField("query_assertion_type_s", assertionType)
			if _, excluded := suitableModellingExclusions[assertionType]; excluded {
				suitable = false
			}
		}); err != nil {
			e.logger.Warn().Err(err).Msg("engine: queryAssertion scan failed, partial result used")
		}
	}
	e.builder.AddField("suitable_modelling", strconv.FormatBool(suitable))
}

// indexContextualLayers emits the environmental (el.p) and contextual
// (cl.p) layer objects verbatim, one field per key.
func (e *Engine) indexContextualLayers(row map[string]string) {
	for _, col := range []string{"el.p", "cl.p"} {
		raw := row[col]
		if raw == "" {
			continue
		}
		if err := parsers.ScanMiscProperties(raw, func(key, value string) {
			if value != "" {
				e.builder.AddField(key, value)
			}
		}); err != nil {
			e.logger.Warn().Err(err).Str("column", col).Msg("engine: layer scan failed, partial result used")
		}
	}
}

// indexSpeciesGroups resolves and emits the species groups the record's
// left/right taxon interval falls within.
func (e *Engine) indexSpeciesGroups(row map[string]string) {
	if e.speciesGroups == nil {
		return
	}
	left, leftOK := parseInt(getValue(row, "left"))
	right, rightOK := parseInt(getValue(row, "right"))
	if !leftOK || !rightOK {
		return
	}

	groups, err := e.speciesGroups.GetSpeciesGroups(left, right)
	if err != nil {
		e.logger.Warn().Err(err).Msg("engine: species group resolution failed")
		return
	}
	for _, g := range groups {
		e.builder.AddField("species_group", g)
	}

	subgroups, err := e.speciesGroups.GetSpeciesSubGroups(left, right)
	if err != nil {
		e.logger.Warn().Err(err).Msg("engine: species subgroup resolution failed")
		return
	}
	for _, g := range subgroups {
		e.builder.AddField("species_subgroup", g)
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}
