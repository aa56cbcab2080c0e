// Package pricing implements the wholesale discount-tier engine: volume
// discounts computed from a cart subtotal or a customer's pinned tier, and
// retail price resolution for catalog imports. All amounts are integer cents.
package pricing

import (
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// TierLevel is a customer's discount tier setting: auto-computed from the
// subtotal, or pinned to a fixed tier.
type TierLevel string

// Tier level constants.
const (
	TierAuto TierLevel = "auto"
	Tier1    TierLevel = "tier1"
	Tier2    TierLevel = "tier2"
	Tier3    TierLevel = "tier3"
)

// IsValid reports whether the tier level is one of the known settings.
func (t TierLevel) IsValid() bool {
	switch t {
	case TierAuto, Tier1, Tier2, Tier3:
		return true
	}
	return false
}

// Tier is one row of the discount table.
type Tier struct {
	Level          TierLevel
	MinOrderAmount int64 // cents
	Percent        int
	Label          string
}

// TierTable is an ordered list of tiers, strictly increasing in both minimum
// amount and percent.
type TierTable []Tier

// DefaultTierTable returns the standard wholesale tiers.
func DefaultTierTable() TierTable {
	return TierTable{
		{Level: Tier1, MinOrderAmount: 40000, Percent: 40, Label: "Tier 1 (40% off)"},
		{Level: Tier2, MinOrderAmount: 80000, Percent: 50, Label: "Tier 2 (50% off)"},
		{Level: Tier3, MinOrderAmount: 120000, Percent: 55, Label: "Tier 3 (55% off)"},
	}
}

// NoDiscountLabel is the tier label applied when the subtotal is below the
// lowest threshold.
const NoDiscountLabel = "No discount (under $400)"

// Discount is the result of a discount computation.
// Amount + Total always equals the input subtotal.
type Discount struct {
	Percent   int    `json:"percent"`
	Amount    int64  `json:"amount"`
	Total     int64  `json:"total"`
	TierLabel string `json:"tier_label"`
}

// ComputeDiscount computes the discount for a subtotal and a tier setting.
//
// A pinned tier applies its percent unconditionally, even when the subtotal is
// below that tier's normal minimum. With TierAuto, the highest threshold the
// subtotal meets wins; below the lowest threshold there is no discount.
// A negative subtotal is rejected with InvalidInput.
func (tt TierTable) ComputeDiscount(subtotal int64, tier TierLevel) (Discount, error) {
	if subtotal < 0 {
		return Discount{}, apperrors.InvalidInput("subtotal must not be negative")
	}
	if !tier.IsValid() {
		return Discount{}, apperrors.InvalidInput("unknown discount tier: " + string(tier))
	}

	if tier != TierAuto {
		for _, t := range tt {
			if t.Level == tier {
				return apply(subtotal, t.Percent, t.Label), nil
			}
		}
		return Discount{}, apperrors.InvalidInput("tier not present in table: " + string(tier))
	}

	// Auto: highest threshold met wins.
	for i := len(tt) - 1; i >= 0; i-- {
		if subtotal >= tt[i].MinOrderAmount {
			return apply(subtotal, tt[i].Percent, tt[i].Label), nil
		}
	}

	return Discount{Percent: 0, Amount: 0, Total: subtotal, TierLabel: NoDiscountLabel}, nil
}

// apply computes amount = round-half-up(subtotal × percent / 100) on cents.
func apply(subtotal int64, percent int, label string) Discount {
	amount := (subtotal*int64(percent) + 50) / 100
	return Discount{
		Percent:   percent,
		Amount:    amount,
		Total:     subtotal - amount,
		TierLabel: label,
	}
}
