// Package risk holds the pure collateral-risk math: LTV, the dynamic
// liquidation threshold, and the sweep haircut. No I/O, no state.
package risk

import (
	"math"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
)

// ThresholdCap guarantees at least a 5% equity buffer on every loan.
const ThresholdCap = 0.95

// baseBuffer is the 20% cushion applied before the volatility adjustment.
const baseBuffer = 1.2

// LTV is loan amount over collateral value. Returns +Inf for a zero value;
// callers validate oracle values before trusting the ratio.
func LTV(amountUSD, valueUSD float64) float64 {
	return amountUSD / valueUSD
}

// volatilityMultiplier sizes the liquidation buffer by how hard the
// collateral is to sell in a hurry. Exhaustive over the closed kind set;
// unknown kinds get the conservative Other treatment.
func volatilityMultiplier(k asset.Kind) float64 {
	switch k {
	case asset.KindRealEstate:
		return 1.1
	case asset.KindVehicle:
		return 1.3
	case asset.KindJewelry:
		return 1.4
	case asset.KindArtwork:
		return 1.5
	case asset.KindCollectible:
		return 1.6
	case asset.KindOther:
		return 1.3
	default:
		return 1.3
	}
}

// Threshold derives the frozen liquidation trigger for a new loan:
// min(ltv * 1.2 * volatility, 0.95). For any ltv in the allowed (0, 0.8]
// range the result strictly exceeds ltv.
func Threshold(t asset.Type, ltv float64) float64 {
	return math.Min(ltv*baseBuffer*volatilityMultiplier(t.Kind), ThresholdCap)
}

// haircut discounts a live appraisal before a sweep decision, guarding
// against stale-optimistic oracle reads.
func haircut(k asset.Kind) float64 {
	switch k {
	case asset.KindRealEstate:
		return 0.98
	case asset.KindVehicle:
		return 0.95
	case asset.KindJewelry:
		return 0.92
	case asset.KindArtwork:
		return 0.90
	case asset.KindCollectible:
		return 0.85
	case asset.KindOther:
		return 0.90
	default:
		return 0.90
	}
}

// CurrentValue is the haircut-adjusted appraisal the liquidation sweep uses.
func CurrentValue(a asset.Collateral) float64 {
	return a.VerifiedValueUSD * haircut(a.AssetType.Kind)
}
