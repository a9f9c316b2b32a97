package engine

// CanonicalHeaders is the ordered list of Darwin Core columns the engine
// walks on every record. The row store's actual column set is out of
// scope; this is the subset the engine projects into the index document,
// privileging each column's `.p` (processed) form when present.
var CanonicalHeaders = []string{
	"occurrenceID", "catalogNumber", "basisOfRecord", "scientificName",
	"taxonConceptID", "kingdom", "phylum", "classs", "order", "family",
	"genus", "species", "vernacularName", "eventDate", "year", "month", "day",
	"decimalLatitude", "decimalLongitude", "geodeticDatum",
	"coordinateUncertaintyInMeters", "country", "stateProvince", "locality",
	"recordedBy", "institutionCode", "collectionCode", "establishmentMeans",
	"individualCount", "sex", "lifeStage", "typeStatus",
	"duplicate_inst", "data_hub_uid", "collectors", "multimedia",
	"all_image_url", "interactions", "outlier_layer", "species_habitats",
	"duplicate_record", "duplicate_type", "taxonomic_issue",
}

// getValue returns row's value for header, preferring the processed
// (".p"-suffixed) column when present.
func getValue(row map[string]string, header string) string {
	if v, ok := row[header+".p"]; ok && v != "" {
		return v
	}
	return row[header]
}
