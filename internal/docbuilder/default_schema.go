package docbuilder

// DefaultSchema returns the schema field definitions this repo ships:
// copy-field expansion from the small set of free-text business fields
// into the catch-all "text" search field Solr-class schemas conventionally
// expose, with truncation on the fields long enough to matter. Fields
// not listed here fall back to Schema.Lookup's suffix-typed default, so
// this list only needs to carry the exceptions: fields with copy
// destinations or a non-default type.
func DefaultSchema() []FieldDef {
	return []FieldDef{
		{Name: "scientificName", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}, {Dest: "names_and_lsid"}}},
		{Name: "vernacularName", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "locality", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text", MaxChars: 2048}}},
		{Name: "country", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "stateProvince", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "recordedBy", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text", MaxChars: 2048}}},
		{Name: "collectors", Type: FieldTypeString, MultiValued: true, CopyFields: []CopyField{{Dest: "text", MaxChars: 2048}}},
		{Name: "institutionCode", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "collectionCode", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "occurrenceID", Type: FieldTypeString},
		{Name: "catalogNumber", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "kingdom", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "phylum", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "classs", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "order", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "family", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "genus", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "species", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
		{Name: "decimalLatitude", Type: FieldTypeDouble},
		{Name: "decimalLongitude", Type: FieldTypeDouble},
		{Name: "coordinateUncertaintyInMeters", Type: FieldTypeDouble},
		{Name: "year", Type: FieldTypeInt},
		{Name: "month", Type: FieldTypeInt},
		{Name: "day", Type: FieldTypeInt},
		{Name: "eventDate", Type: FieldTypeDate},
	}
}
