package vocab

// DefaultStaticGroups returns the built-in kingdom/class-level species
// groups this repo ships, the static half of SpeciesGroups resolution
// (the dynamic half comes from the subgroups descriptor loaded by
// LoadSubgroupDescriptor). This is one reasonable default set,
// override-able by callers that construct their own []SpeciesGroupDef
// instead of using this one.
func DefaultStaticGroups() []SpeciesGroupDef {
	return []SpeciesGroupDef{
		{Name: "Animals", Rank: "kingdom", IncludedTaxa: []string{"Animalia"}},
		{Name: "Plants", Rank: "kingdom", IncludedTaxa: []string{"Plantae"}},
		{Name: "Fungi", Rank: "kingdom", IncludedTaxa: []string{"Fungi"}},
		{Name: "Chromista", Rank: "kingdom", IncludedTaxa: []string{"Chromista"}},
		{Name: "Protozoa", Rank: "kingdom", IncludedTaxa: []string{"Protista", "Protozoa"}},
		{Name: "Bacteria", Rank: "kingdom", IncludedTaxa: []string{"Bacteria", "Monera"}},
		{Name: "Mammals", Rank: "class", Parent: "Animals", IncludedTaxa: []string{"Mammalia"}},
		{Name: "Birds", Rank: "class", Parent: "Animals", IncludedTaxa: []string{"Aves"}},
		{Name: "Reptiles", Rank: "class", Parent: "Animals", IncludedTaxa: []string{"Reptilia"}},
		{Name: "Amphibians", Rank: "class", Parent: "Animals", IncludedTaxa: []string{"Amphibia"}},
		{Name: "Fishes", Rank: "class", Parent: "Animals", IncludedTaxa: []string{"Actinopterygii", "Chondrichthyes", "Sarcopterygii"}},
		{Name: "Insects", Rank: "class", Parent: "Animals", IncludedTaxa: []string{"Insecta"}},
	}
}
