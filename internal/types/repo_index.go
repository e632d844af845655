package types

// PackageVersionEntry is one published version of a package in a repo
// index, with the requests it pulls in transitively.
type PackageVersionEntry struct {
	Version  string   `yaml:"version"`
	Requires []string `yaml:"requires,omitempty"`
}

// RepoIndexFile is the on-disk repository index: every known package
// with its published versions, newest or oldest first (order is not
// significant, the resolver sorts).
type RepoIndexFile struct {
	Scheme   VersionScheme                    `yaml:"scheme,omitempty"`
	Packages map[string][]PackageVersionEntry `yaml:"packages"`
}
