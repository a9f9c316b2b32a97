// Package vocab holds the vocabulary caches the indexing engine consults on
// every record: species-group membership, the accepted-name checklist,
// the taxon-to-species-list mapping, and the closed assertion-code
// enumeration.
package vocab

import (
	"fmt"
	"sync"
)

// NameLookup is the name-matching index the engine depends on: it maps a
// scientific name and optional rank to the taxon's left/right
// tree-traversal interval and synonym pointer. SearchByLSID resolves a
// synonym's acceptedLsid pointer to the accepted taxon's own interval; it
// is a separate lookup from SearchForRecord because the index keys
// accepted-taxon records by LSID, not by name text.
type NameLookup interface {
	SearchForRecord(name, rank string) (NameMatch, error)
	SearchByLSID(lsid string) (NameMatch, error)
}

// NameMatch is one name-matching index result.
type NameMatch struct {
	LSID         string
	AcceptedLSID string
	Left         int
	Right        int
	IsSynonym    bool
}

// interval is a resolved taxon's left/right range.
type interval struct {
	name string
	left int
	right int
}

// SpeciesGroupDef is one static group definition as supplied at
// construction time, before its taxa have been resolved.
type SpeciesGroupDef struct {
	Name          string
	Rank          string
	IncludedTaxa  []string
	ExcludedTaxa  []string
	Parent        string
}

// resolvedGroup is a SpeciesGroupDef after taxon names have been resolved
// to left/right intervals.
type resolvedGroup struct {
	name     string
	rank     string
	parent   string
	included []interval
	excluded []interval
}

// SubgroupTaxon is one taxon entry in a dynamic subgroup descriptor.
type SubgroupTaxon struct {
	Name   string `json:"name"`
	Common string `json:"common"`
}

// SubgroupDef is one entry in the dynamic species-subgroups descriptor:
// `[{speciesGroup, taxonRank?, taxa:[{name, common}]}]`.
type SubgroupDef struct {
	SpeciesGroup string          `json:"speciesGroup"`
	TaxonRank    string          `json:"taxonRank"`
	Taxa         []SubgroupTaxon `json:"taxa"`
}

// SpeciesGroups resolves the static group hierarchy and dynamic subgroups
// against a name-matching index, once, under a one-shot initialization
// lock; after that it is read-only and lock-free.
type SpeciesGroups struct {
	lookup NameLookup

	once        sync.Once
	initErr     error
	groups      []resolvedGroup // definition order, for tie-breaking
	subgroups   []resolvedGroup

	staticDefs   []SpeciesGroupDef
	subgroupDefs []SubgroupDef

	logger func(format string, args ...any)
}

// NewSpeciesGroups constructs a SpeciesGroups cache. Resolution against
// lookup happens lazily, on first Groups/Subgroups call.
func NewSpeciesGroups(lookup NameLookup, staticDefs []SpeciesGroupDef, subgroupDefs []SubgroupDef, debugLog func(format string, args ...any)) *SpeciesGroups {
	if debugLog == nil {
		debugLog = func(string, ...any) {}
	}
	return &SpeciesGroups{
		lookup:       lookup,
		staticDefs:   staticDefs,
		subgroupDefs: subgroupDefs,
		logger:       debugLog,
	}
}

func (g *SpeciesGroups) ensureResolved() error {
	g.once.Do(func() {
		g.groups = g.resolveStaticGroups()
		g.subgroups = g.resolveSubgroups(g.groups)
	})
	return g.initErr
}

// resolveStaticGroups resolves each static definition's included/excluded
// taxa via the name-matching lookup, following one synonym hop via
// acceptedLsid, and dropping taxa that fail to resolve.
func (g *SpeciesGroups) resolveStaticGroups() []resolvedGroup {
	out := make([]resolvedGroup, 0, len(g.staticDefs))
	for _, def := range g.staticDefs {
		rg := resolvedGroup{name: def.Name, rank: def.Rank, parent: def.Parent}
		rg.included = g.resolveTaxa(def.Name, def.IncludedTaxa, def.Rank)
		rg.excluded = g.resolveTaxa(def.Name, def.ExcludedTaxa, def.Rank)
		out = append(out, rg)
	}
	return out
}

func (g *SpeciesGroups) resolveTaxa(groupName string, names []string, rank string) []interval {
	out := make([]interval, 0, len(names))
	for _, name := range names {
		iv, ok := g.resolveOne(name, rank)
		if !ok {
			g.logger("species group %q: could not resolve taxon %q, dropping", groupName, name)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (g *SpeciesGroups) resolveOne(name, rank string) (interval, bool) {
	match, err := g.lookup.SearchForRecord(name, rank)
	if err != nil {
		return interval{}, false
	}
	if match.IsSynonym && match.AcceptedLSID != "" {
		accepted, err := g.lookup.SearchByLSID(match.AcceptedLSID)
		if err == nil {
			match = accepted
		}
	}
	if match.Left == 0 && match.Right == 0 {
		return interval{}, false
	}
	return interval{name: name, left: match.Left, right: match.Right}, true
}

// resolveSubgroups loads dynamic subgroups. When a descriptor entry omits
// taxonRank and names the static "Plants" group, it inherits that static
// group's resolved included and excluded intervals; the entry's own taxa
// are still resolved and added to them, as for any other entry.
func (g *SpeciesGroups) resolveSubgroups(static []resolvedGroup) []resolvedGroup {
	out := make([]resolvedGroup, 0, len(g.subgroupDefs))
	for _, def := range g.subgroupDefs {
		rg := resolvedGroup{name: def.SpeciesGroup, rank: def.TaxonRank}

		if def.TaxonRank == "" && def.SpeciesGroup == "Plants" {
			for _, sg := range static {
				if sg.name == "Plants" {
					rg.included = append(rg.included, sg.included...)
					rg.excluded = append(rg.excluded, sg.excluded...)
				}
			}
		}

		names := make([]string, 0, len(def.Taxa))
		for _, t := range def.Taxa {
			names = append(names, t.Name)
		}
		rg.included = append(rg.included, g.resolveTaxa(def.SpeciesGroup, names, def.TaxonRank)...)

		out = append(out, rg)
	}
	return out
}

// memberOf reports whether lft falls inside one of group's included
// intervals and none of its excluded intervals. Excluded intervals are
// checked first so they can veto an included match.
func memberOf(g resolvedGroup, lft int) bool {
	for _, iv := range g.excluded {
		if lft >= iv.left && lft <= iv.right {
			return false
		}
	}
	for _, iv := range g.included {
		if lft >= iv.left && lft <= iv.right {
			return true
		}
	}
	return false
}

// GetSpeciesGroups returns the names of every static group whose
// intervals contain lft, in definition order.
func (g *SpeciesGroups) GetSpeciesGroups(lft, rgt int) ([]string, error) {
	if err := g.ensureResolved(); err != nil {
		return nil, err
	}
	var names []string
	for _, group := range g.groups {
		if memberOf(group, lft) {
			names = append(names, group.name)
		}
	}
	return names, nil
}

// GetSpeciesSubGroups returns the names of every dynamic subgroup whose
// intervals contain lft, in definition order.
func (g *SpeciesGroups) GetSpeciesSubGroups(lft, rgt int) ([]string, error) {
	if err := g.ensureResolved(); err != nil {
		return nil, err
	}
	var names []string
	for _, group := range g.subgroups {
		if memberOf(group, lft) {
			names = append(names, group.name)
		}
	}
	return names, nil
}

// ErrTaxonNotFound is returned by a NameLookup implementation when a name
// cannot be resolved at all.
var ErrTaxonNotFound = fmt.Errorf("vocab: taxon not found")
