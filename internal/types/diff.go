package types

// DiffResult is the classified delta between two snapshots. A package
// name appears in at most one category; unchanged packages appear in
// none.
type DiffResult struct {
	Added   []ResolvedPackage `yaml:"added_packages,omitempty"`
	Removed []ResolvedPackage `yaml:"removed_packages,omitempty"`
	Newer   []ResolvedPackage `yaml:"newer_packages,omitempty"`
	Older   []ResolvedPackage `yaml:"older_packages,omitempty"`
}

// Categories returns the non-empty buckets keyed by category name.
func (d DiffResult) Categories() map[DiffCategory][]ResolvedPackage {
	out := map[DiffCategory][]ResolvedPackage{}
	if len(d.Added) > 0 {
		out[DiffCategoryAdded] = d.Added
	}
	if len(d.Removed) > 0 {
		out[DiffCategoryRemoved] = d.Removed
	}
	if len(d.Newer) > 0 {
		out[DiffCategoryNewer] = d.Newer
	}
	if len(d.Older) > 0 {
		out[DiffCategoryOlder] = d.Older
	}
	return out
}

func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Newer) == 0 && len(d.Older) == 0
}

// BisectSummary is the terminal artifact of one bisection run:
// the boundary indexes plus the classified delta across them.
type BisectSummary struct {
	LastGood int        `yaml:"last_good"`
	FirstBad int        `yaml:"first_bad"`
	Diff     DiffResult `yaml:"diff"`
}
