package vocab

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// LoadSubgroupDescriptor reads the dynamic species-subgroups descriptor
// (`[{speciesGroup, taxonRank?, taxa:[{name, common}]}]`) from a local
// file path or an http(s) URL. Unlike the per-record
// miscProperties/qualityAssertions scanners, this runs once at startup,
// so a generic encoding/json decode is the right tool rather than a
// hand-rolled scanner.
func LoadSubgroupDescriptor(location string) ([]SubgroupDef, error) {
	if location == "" {
		return nil, nil
	}

	var r io.ReadCloser
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(location)
		if err != nil {
			return nil, fmt.Errorf("vocab: fetching species-subgroups descriptor %q: %w", location, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("vocab: species-subgroups descriptor %q returned status %d", location, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("vocab: opening species-subgroups descriptor %q: %w", location, err)
		}
		r = f
	}
	defer r.Close()

	var defs []SubgroupDef
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("vocab: parsing species-subgroups descriptor %q: %w", location, err)
	}
	return defs, nil
}
