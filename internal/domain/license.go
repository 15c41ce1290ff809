package domain

import "github.com/shopspring/decimal"

// LicenseTier selects the usage license a buyer checks out with. The tier
// scales the catalog price; selections are ephemeral and never persisted.
type LicenseTier string

const (
	LicensePersonal   LicenseTier = "personal"
	LicenseCommercial LicenseTier = "commercial"
	LicenseExtended   LicenseTier = "extended"
)

var licenseMultipliers = map[LicenseTier]decimal.Decimal{
	LicensePersonal:   decimal.NewFromInt(1),
	LicenseCommercial: decimal.RequireFromString("1.5"),
	LicenseExtended:   decimal.RequireFromString("2.5"),
}

// Valid reports whether the tier is one of the three known tiers.
func (t LicenseTier) Valid() bool {
	_, ok := licenseMultipliers[t]
	return ok
}

// Multiplier returns the price multiplier for the tier. Unknown tiers fall
// back to the personal multiplier, matching the checkout default.
func (t LicenseTier) Multiplier() decimal.Decimal {
	if m, ok := licenseMultipliers[t]; ok {
		return m
	}
	return licenseMultipliers[LicensePersonal]
}
