package domain

import (
	"fmt"
	"sort"
)

// DefaultCurrency is the ISO currency code every price is quoted in.
const DefaultCurrency = "usd"

// Package is a CV-rewrite service tier.
type Package string

const (
	PackageEssential    Package = "essential"
	PackageProfessional Package = "professional"
	PackageExecutive    Package = "executive"
)

// AddOn is an optional extra bought together with a package.
type AddOn string

const (
	AddOnCoverLetter AddOn = "cover_letter"
	AddOnLinkedIn    AddOn = "linkedin"
	AddOnRush        AddOn = "rush"
)

// packagePrices and addOnPrices hold list prices in cents.
var (
	packagePrices = map[Package]int64{ //nolint: gochecknoglobals
		PackageEssential:    4900,
		PackageProfessional: 9900,
		PackageExecutive:    17900,
	}
	addOnPrices = map[AddOn]int64{ //nolint: gochecknoglobals
		AddOnCoverLetter: 2900,
		AddOnLinkedIn:    3900,
		AddOnRush:        2500,
	}
)

// Quote is the server-side price breakdown for a package and its add-ons.
type Quote struct {
	Package      Package         `json:"package"`
	AddOns       []AddOn         `json:"addOns"`
	PackageCents int64           `json:"packageCents"`
	AddOnCents   map[AddOn]int64 `json:"addOnCents"`
	TotalCents   int64           `json:"totalCents"`
	Currency     string          `json:"currency"`
}

// NewQuote prices the given package and add-ons. Duplicate add-ons are
// collapsed and the resulting list is sorted; unknown values are rejected.
func NewQuote(pkg Package, addOns []AddOn) (Quote, error) {
	base, ok := packagePrices[pkg]
	if !ok {
		return Quote{}, fmt.Errorf("unknown package %q", pkg)
	}

	q := Quote{
		Package:      pkg,
		AddOns:       []AddOn{},
		PackageCents: base,
		AddOnCents:   map[AddOn]int64{},
		TotalCents:   base,
		Currency:     DefaultCurrency,
	}
	for _, a := range addOns {
		price, ok := addOnPrices[a]
		if !ok {
			return Quote{}, fmt.Errorf("unknown add-on %q", a)
		}
		if _, seen := q.AddOnCents[a]; seen {
			continue
		}
		q.AddOnCents[a] = price
		q.AddOns = append(q.AddOns, a)
		q.TotalCents += price
	}
	sort.Slice(q.AddOns, func(i, j int) bool { return q.AddOns[i] < q.AddOns[j] })

	return q, nil
}
