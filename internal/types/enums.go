package types

// VersionScheme selects the version-ordering rules used by a package
// repository. Deb is the default; Pep440 covers repositories whose
// packages were converted from pip distributions.
type VersionScheme string

const (
	VersionSchemeDeb    VersionScheme = "deb"
	VersionSchemePep440 VersionScheme = "pep440"
)

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "="
	ConstraintOpEq2    ConstraintOp = "=="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
)

// DiffCategory names one of the four classified delta buckets.
type DiffCategory string

const (
	DiffCategoryAdded   DiffCategory = "added_packages"
	DiffCategoryRemoved DiffCategory = "removed_packages"
	DiffCategoryNewer   DiffCategory = "newer_packages"
	DiffCategoryOlder   DiffCategory = "older_packages"
)

// DiffCategories lists the buckets in presentation order.
var DiffCategories = []DiffCategory{
	DiffCategoryAdded,
	DiffCategoryRemoved,
	DiffCategoryNewer,
	DiffCategoryOlder,
}
