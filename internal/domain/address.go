package domain

import "strings"

// Address is the structured form of a delivery location. Number is kept
// distinct from Street: Street never carries a trailing numeric.
type Address struct {
	Street       string
	Number       string
	Corner1      string
	Corner2      string
	City         string
	Country      string
	PostalCode   string
	Coordinate   *Coordinate
}

// AddressInput is the sum type recast of the source's dynamically-typed
// address field (free-text string vs. structured record). Exactly one of
// FreeText or Structured should be set; the resolver produces a canonical
// Address before any scoring happens.
type AddressInput struct {
	FreeText   string
	Structured *Address
}

// Resolvable reports whether the input carries enough information for the
// geocoder to plausibly resolve it, without guaranteeing success.
func (a AddressInput) Resolvable() bool {
	if a.Structured != nil {
		if a.Structured.Coordinate != nil {
			return true
		}
		return strings.TrimSpace(a.Structured.Street) != "" || strings.TrimSpace(a.Structured.City) != ""
	}
	return strings.TrimSpace(a.FreeText) != ""
}

// SingleLine renders a best-effort free-text form of the address, used as
// the geocoder cache key and as a fallback display string.
func (a Address) SingleLine() string {
	parts := make([]string, 0, 6)
	if a.Street != "" {
		if a.Number != "" {
			parts = append(parts, a.Street+" "+a.Number)
		} else {
			parts = append(parts, a.Street)
		}
	}
	if a.Corner1 != "" || a.Corner2 != "" {
		corners := strings.TrimSpace(strings.Join([]string{a.Corner1, a.Corner2}, " & "))
		if corners != "" {
			parts = append(parts, corners)
		}
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	if a.PostalCode != "" {
		parts = append(parts, a.PostalCode)
	}
	return strings.Join(parts, ", ")
}
