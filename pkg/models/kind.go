package models

import "strings"

// Kind tags a record collection. Recoverable errors carry one.
type Kind string

const (
	KindListings Kind = "listings"
	KindVendors  Kind = "vendors"
	KindTours    Kind = "tours"
	KindContact  Kind = "contact"
	KindPolicy   Kind = "policy"
)

// CatalogKinds are the collections loaded by a catalog refresh.
var CatalogKinds = []Kind{KindListings, KindVendors, KindTours}

func (k Kind) IsCatalog() bool {
	return k == KindListings || k == KindVendors || k == KindTours
}

func (k Kind) IsAssociated() bool {
	return k == KindContact || k == KindPolicy
}

func (k Kind) Valid() bool {
	return k.IsCatalog() || k.IsAssociated()
}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// Source reports where a collection or record came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceStore  Source = "store"
	SourceEmpty  Source = "empty"
)
