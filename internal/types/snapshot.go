package types

type ResolvedPackage struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Snapshot is a resolved, reproducible set of exact package versions.
// Produced by a resolver or loaded from a .ctx file; immutable once
// created. Two snapshots are comparable only when both succeeded.
type Snapshot struct {
	Requests []string          `yaml:"requests"`
	Packages []ResolvedPackage `yaml:"packages"`
	Scheme   VersionScheme     `yaml:"scheme"`
	Success  bool              `yaml:"success"`
}

// PackageVersions returns a name -> exact version lookup.
func (s Snapshot) PackageVersions() map[string]string {
	out := make(map[string]string, len(s.Packages))
	for _, pkg := range s.Packages {
		out[pkg.Name] = pkg.Version
	}
	return out
}

// Resolved returns the resolved package for name, if present.
func (s Snapshot) Resolved(name string) (ResolvedPackage, bool) {
	for _, pkg := range s.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return ResolvedPackage{}, false
}
