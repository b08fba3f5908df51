// pkg/product/product.go - the closed catalog of deployable Office product editions.

package product

import "fmt"

// ID identifies one installable Click-to-Run product edition. The catalog is
// closed: only the seven values below are deployable, and every helper in
// this package rejects anything else.
type ID string

const (
	O365ProPlusRetail ID = "O365ProPlusRetail"
	VisioStdXVolume   ID = "VisioStdXVolume"
	VisioProXVolume   ID = "VisioProXVolume"
	VisioProRetail    ID = "VisioProRetail"
	ProjectStdXVolume ID = "ProjectStdXVolume"
	ProjectProXVolume ID = "ProjectProXVolume"
	ProjectProRetail  ID = "ProjectProRetail"
)

// Family groups editions of the same application. Substitution rules only
// ever convert editions within one family.
type Family int

const (
	FamilySuite Family = iota
	FamilyVisio
	FamilyProject
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilySuite:
		return "Office"
	case FamilyVisio:
		return "Visio"
	case FamilyProject:
		return "Project"
	default:
		return "unknown"
	}
}

// Tier is the licensing model of an edition.
type Tier int

const (
	TierVolume Tier = iota
	TierRetailSubscription
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierVolume:
		return "volume"
	case TierRetailSubscription:
		return "retail-subscription"
	default:
		return "unknown"
	}
}

// spec describes the fixed attributes of one catalog entry. The pidKey
// values are the public KMS client setup keys required by the installer for
// volume-licensed products; retail subscription editions activate against
// the tenant and carry none.
type spec struct {
	family Family
	tier   Tier
	pidKey string
}

var catalog = map[ID]spec{
	O365ProPlusRetail: {family: FamilySuite, tier: TierRetailSubscription},
	VisioStdXVolume:   {family: FamilyVisio, tier: TierVolume, pidKey: "7TQNQ-K3YQQ-3PFH7-CCPPM-X4VQ2"},
	VisioProXVolume:   {family: FamilyVisio, tier: TierVolume, pidKey: "9BGNQ-K37YR-RQHF2-38RQ3-7VCBB"},
	VisioProRetail:    {family: FamilyVisio, tier: TierRetailSubscription},
	ProjectStdXVolume: {family: FamilyProject, tier: TierVolume, pidKey: "C4F7P-NCP8C-6CQPT-MQHV9-JXD2M"},
	ProjectProXVolume: {family: FamilyProject, tier: TierVolume, pidKey: "B4NPR-3FKK7-T2MBV-FRQ4W-PKD2B"},
	ProjectProRetail:  {family: FamilyProject, tier: TierRetailSubscription},
}

// Catalog returns all deployable product IDs in a stable order.
func Catalog() []ID {
	return []ID{
		O365ProPlusRetail,
		VisioStdXVolume,
		VisioProXVolume,
		VisioProRetail,
		ProjectStdXVolume,
		ProjectProXVolume,
		ProjectProRetail,
	}
}

// Parse validates a raw product identifier against the catalog.
func Parse(s string) (ID, error) {
	id := ID(s)
	if _, ok := catalog[id]; !ok {
		return "", fmt.Errorf("unknown product edition %q", s)
	}
	return id, nil
}

// Known reports whether id is in the catalog.
func Known(id ID) bool {
	_, ok := catalog[id]
	return ok
}

// Family returns the application family of the edition.
func (id ID) Family() Family {
	return catalog[id].family
}

// Tier returns the licensing tier of the edition.
func (id ID) Tier() Tier {
	return catalog[id].tier
}

// PIDKey returns the license key the installer configuration must carry for
// this edition, or an empty string when none is required.
func (id ID) PIDKey() string {
	return catalog[id].pidKey
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}
