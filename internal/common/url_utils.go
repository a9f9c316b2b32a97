package common

// URL classification for the index backend's three deployment modes (§4.4):
// an embedded single-node core, a single remote HTTP endpoint, or a
// clustered endpoint list. The caller supplies one configuration string;
// ClassifyIndexBackendURL inspects its shape to decide which adapter to build.

import (
	"fmt"
	"net/url"
	"strings"
)

// IndexBackendMode identifies which of the three backend deployment modes a
// configuration value describes.
type IndexBackendMode int

const (
	// IndexBackendUnknown means the value could not be classified.
	IndexBackendUnknown IndexBackendMode = iota
	// IndexBackendEmbedded means the value is a filesystem path to a core
	// (or a solr.xml file directly under it).
	IndexBackendEmbedded
	// IndexBackendRemote means the value is a single http(s):// endpoint.
	IndexBackendRemote
	// IndexBackendCluster means the value is a comma-separated host:port list.
	IndexBackendCluster
)

// ClassifyIndexBackendURL inspects a configuration value and returns which
// deployment mode it describes, per §4.4:
//   - "http://..." or "https://..." -> single remote endpoint
//   - a comma-separated list of "host:port" pairs -> cluster
//   - anything else (a path, optionally ending in "/solr.xml") -> embedded
func ClassifyIndexBackendURL(value string) (IndexBackendMode, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return IndexBackendUnknown, fmt.Errorf("index backend URL is empty")
	}

	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if _, err := url.Parse(value); err != nil {
			return IndexBackendUnknown, fmt.Errorf("invalid remote index URL %q: %w", value, err)
		}
		return IndexBackendRemote, nil
	}

	if looksLikeClusterList(value) {
		return IndexBackendCluster, nil
	}

	return IndexBackendEmbedded, nil
}

// looksLikeClusterList reports whether value is a comma-separated list of
// host:port pairs, e.g. "zk1:2181,zk2:2181,zk3:2181".
func looksLikeClusterList(value string) bool {
	parts := strings.Split(value, ",")
	if len(parts) == 0 {
		return false
	}
	sawHostPort := false
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return false
		}
		idx := strings.LastIndex(p, ":")
		if idx <= 0 || idx == len(p)-1 {
			return false
		}
		host, port := p[:idx], p[idx+1:]
		if strings.ContainsAny(host, `/\`) {
			return false
		}
		for _, r := range port {
			if r < '0' || r > '9' {
				return false
			}
		}
		sawHostPort = true
	}
	return sawHostPort
}

// ClusterEndpoints splits a classified cluster configuration value into its
// individual "host:port" members.
func ClusterEndpoints(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
