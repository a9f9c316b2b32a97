package vocab

// AssertionCategory partitions the assertion enumeration.
type AssertionCategory string

const (
	CategoryMissing      AssertionCategory = "Missing"
	CategoryGeospatial   AssertionCategory = "Geospatial"
	CategoryTaxonomic    AssertionCategory = "Taxonomic"
	CategoryTemporal     AssertionCategory = "Temporal"
	CategoryOther        AssertionCategory = "Other"
)

// AssertionCode is one entry in the closed code<->name enumeration.
type AssertionCode struct {
	Code     int
	Name     string
	Category AssertionCategory
}

// Two codes the engine treats specially: they are never "unchecked" even
// when absent from a record's qualityAssertions array, since they
// describe the assertion-processing machinery itself rather than a
// data-quality check.
const (
	ProcessingErrorName = "PROCESSING_ERROR"
	VerifiedName        = "VERIFIED"
)

// allAssertionCodes is the closed enumeration. The set mirrors the
// well-known categories a biodiversity occurrence-quality service
// publishes; codes are stable identifiers and must never be renumbered.
var allAssertionCodes = []AssertionCode{
	{Code: 1, Name: "PROCESSING_ERROR", Category: CategoryOther},
	{Code: 2, Name: "VERIFIED", Category: CategoryOther},

	{Code: 10, Name: "MISSING_GEODETIC_DATUM", Category: CategoryMissing},
	{Code: 11, Name: "MISSING_COORDINATES", Category: CategoryMissing},
	{Code: 12, Name: "MISSING_COLLECTION_DATE", Category: CategoryMissing},
	{Code: 13, Name: "MISSING_SCIENTIFIC_NAME", Category: CategoryMissing},
	{Code: 14, Name: "MISSING_BASIS_OF_RECORD", Category: CategoryMissing},

	{Code: 20, Name: "COORDINATES_OUT_OF_RANGE", Category: CategoryGeospatial},
	{Code: 21, Name: "COORDINATES_CENTRE_OF_COUNTRY", Category: CategoryGeospatial},
	{Code: 22, Name: "COORDINATES_CENTRE_OF_STATEPROVINCE", Category: CategoryGeospatial},
	{Code: 23, Name: "ZERO_COORDINATES", Category: CategoryGeospatial},
	{Code: 24, Name: "DECIMAL_LAT_LONG_CALCULATED_FROM_GRID_REF", Category: CategoryGeospatial},
	{Code: 25, Name: "COUNTRY_COORDINATE_MISMATCH", Category: CategoryGeospatial},
	{Code: 26, Name: "UNCERTAINTY_NOT_SPECIFIED", Category: CategoryGeospatial},
	{Code: 27, Name: "UNCERTAINTY_OUT_OF_RANGE", Category: CategoryGeospatial},

	{Code: 30, Name: "TAXON_MATCH_FUZZY", Category: CategoryTaxonomic},
	{Code: 31, Name: "TAXON_MATCH_HIGHERRANK", Category: CategoryTaxonomic},
	{Code: 32, Name: "TAXON_MATCH_NONE", Category: CategoryTaxonomic},
	{Code: 33, Name: "HOMONYM_RESOLUTION_REQUIRED", Category: CategoryTaxonomic},
	{Code: 34, Name: "INVALID_SCIENTIFIC_NAME", Category: CategoryTaxonomic},

	{Code: 40, Name: "UNPARSABLE_COLLECTION_DATE", Category: CategoryTemporal},
	{Code: 41, Name: "COLLECTION_DATE_IN_FUTURE", Category: CategoryTemporal},
	{Code: 42, Name: "COLLECTION_DATE_BEFORE_1600", Category: CategoryTemporal},
	{Code: 43, Name: "ID_PRE_OCCURRENCE_DATE", Category: CategoryTemporal},

	{Code: 50, Name: "INVALID_IMAGE_URL", Category: CategoryOther},
	{Code: 51, Name: "DUPLICATE_RECORD", Category: CategoryOther},
	{Code: 52, Name: "RECORD_SENSITIVE", Category: CategoryOther},
	{Code: 53, Name: "INDIVIDUAL_COUNT_INVALID", Category: CategoryOther},
}

// AssertionCodes is the read-only, closed assertion enumeration.
type AssertionCodes struct {
	byCode map[int]AssertionCode
	byName map[string]AssertionCode
}

// NewAssertionCodes builds the lookup indexes over the closed enumeration.
func NewAssertionCodes() *AssertionCodes {
	byCode := make(map[int]AssertionCode, len(allAssertionCodes))
	byName := make(map[string]AssertionCode, len(allAssertionCodes))
	for _, c := range allAssertionCodes {
		byCode[c.Code] = c
		byName[c.Name] = c
	}
	return &AssertionCodes{byCode: byCode, byName: byName}
}

// GetByCode looks up a code, reporting ok=false if it is not in the
// enumeration.
func (a *AssertionCodes) GetByCode(code int) (AssertionCode, bool) {
	c, ok := a.byCode[code]
	return c, ok
}

// GetByName looks up a code by name, reporting ok=false if it is not in
// the enumeration.
func (a *AssertionCodes) GetByName(name string) (AssertionCode, bool) {
	c, ok := a.byName[name]
	return c, ok
}

// GetMissingByCode returns the names of every code in the enumeration
// that is not present in seenCodes, excluding PROCESSING_ERROR and
// VERIFIED.
func (a *AssertionCodes) GetMissingByCode(seenCodes []int) []string {
	seen := make(map[int]struct{}, len(seenCodes))
	for _, c := range seenCodes {
		seen[c] = struct{}{}
	}

	var unchecked []string
	for _, c := range allAssertionCodes {
		if c.Name == ProcessingErrorName || c.Name == VerifiedName {
			continue
		}
		if _, ok := seen[c.Code]; ok {
			continue
		}
		unchecked = append(unchecked, c.Name)
	}
	return unchecked
}

// All returns every code in the enumeration, in definition order.
func (a *AssertionCodes) All() []AssertionCode {
	out := make([]AssertionCode, len(allAssertionCodes))
	copy(out, allAssertionCodes)
	return out
}
