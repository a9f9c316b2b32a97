package parsers

import (
	"fmt"
	"strconv"
	"strings"
)

// GridReference holds the set of grid-cell keys a coordinate uncertainty
// resolves to, from coarsest to finest.
type GridReference struct {
	Ref10000 string
	Ref1000  string
	Ref100   string
	Ref10    string
}

// Fields returns the non-empty grid_ref_* keys as a map, suitable for
// merging directly into a document's field set.
func (g GridReference) Fields() map[string]string {
	out := make(map[string]string, 4)
	if g.Ref10000 != "" {
		out["grid_ref_10000"] = g.Ref10000
	}
	if g.Ref1000 != "" {
		out["grid_ref_1000"] = g.Ref1000
	}
	if g.Ref100 != "" {
		out["grid_ref_100"] = g.Ref100
	}
	if g.Ref10 != "" {
		out["grid_ref_10"] = g.Ref10
	}
	return out
}

// gridResolutions lists the cell sizes, in metres, from coarsest to
// finest, in the order GetGridRefAsResolutions assigns them.
var gridResolutions = []int{10000, 1000, 100, 10}

// GetGridRefAsResolutions derives the set of grid-cell keys a record's
// coordinates fall into, down to the resolution its coordinate uncertainty
// actually supports. A record with uncertainty of 500m can only be placed
// reliably at 10000m and 1000m resolution; asking for 100m or 10m cells
// would overstate its precision, so those keys are left blank.
//
// lat/lon are decimal degrees; coordinateUncertaintyM is in metres. Cells
// are keyed "<easting>,<northing>,<resolution>", with easting and northing
// in metres on the toMetreGrid grid, rounded down to a multiple of the
// resolution.
func GetGridRefAsResolutions(lat, lon, coordinateUncertaintyM float64) (GridReference, bool) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return GridReference{}, false
	}
	if coordinateUncertaintyM < 0 {
		return GridReference{}, false
	}

	easting, northing := toMetreGrid(lat, lon)

	var ref GridReference
	for _, res := range gridResolutions {
		if coordinateUncertaintyM > float64(res) {
			continue
		}
		cell := cellKey(easting, northing, res)
		switch res {
		case 10000:
			ref.Ref10000 = cell
		case 1000:
			ref.Ref1000 = cell
		case 100:
			ref.Ref100 = cell
		case 10:
			ref.Ref10 = cell
		}
	}
	return ref, ref != GridReference{}
}

// toMetreGrid projects decimal degrees onto a simple equirectangular metre
// grid, anchored at the antimeridian/south pole so all coordinates map to
// non-negative offsets. This is deliberately not a geodetic projection: the
// grid only needs to group nearby points into shared cells consistently,
// not preserve true distances.
func toMetreGrid(lat, lon float64) (easting, northing float64) {
	const metresPerDegree = 111320.0
	easting = (lon + 180.0) * metresPerDegree
	northing = (lat + 90.0) * metresPerDegree
	return easting, northing
}

func cellKey(easting, northing float64, resolution int) string {
	e := int(easting) / resolution * resolution
	n := int(northing) / resolution * resolution
	return strconv.Itoa(e) + "," + strconv.Itoa(n) + "," + strconv.Itoa(resolution)
}

// ParseGridCell splits a cell key produced by GetGridRefAsResolutions back
// into its easting/northing/resolution components, mainly for tests and
// diagnostics.
func ParseGridCell(cell string) (easting, northing, resolution int, err error) {
	parts := strings.Split(cell, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("gridref: malformed cell key %q", cell)
	}
	easting, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("gridref: bad easting in %q: %w", cell, err)
	}
	northing, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("gridref: bad northing in %q: %w", cell, err)
	}
	resolution, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("gridref: bad resolution in %q: %w", cell, err)
	}
	return easting, northing, resolution, nil
}
