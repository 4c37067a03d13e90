package efr

import (
	"math"

	"github.com/timpalpant/go-efr/internal/policy"
)

// RegretUpdate returns the amount to add to an accumulated deviation regret,
// given its previous value, the reach-weighted instantaneous regret and the
// round number of the information state being updated.
type RegretUpdate = policy.RegretUpdate

// CumulativeRegret accumulates instantaneous regrets undiscounted, as in
// regret matching.
func CumulativeRegret(prev, regret float64, round int) float64 {
	return regret
}

// RegretMatchingPlus floors accumulated regrets at zero.
func RegretMatchingPlus(prev, regret float64, round int) float64 {
	return math.Max(prev+regret, 0) - prev
}

// DiscountParams are the configuration options for discounting accumulated
// regrets. An empty DiscountParams struct is valid and corresponds to
// CumulativeRegret.
type DiscountParams struct {
	UseRegretMatchingPlus bool    // CFR+
	LinearWeighting       bool    // Linear CFR
	DiscountAlpha         float64 // Discounted CFR
	DiscountBeta          float64 // Discounted CFR
}

// GetDiscountFactors returns the factors by which positive and negative
// accumulated regrets are scaled after the given round.
func (p DiscountParams) GetDiscountFactors(round int) (positive, negative float64) {
	positive = 1.0
	negative = 1.0

	// See: https://arxiv.org/pdf/1809.04040.pdf
	// Weighting the regrets of round t by t is equivalent to scaling the
	// accumulated regret by t / (t+1).
	if p.LinearWeighting {
		positive = float64(round) / float64(round+1)
		negative = positive
	}

	if p.UseRegretMatchingPlus {
		negative = 0.0 // No negative regrets.
	}

	if p.DiscountAlpha != 0 {
		// t^alpha / (t^alpha + 1)
		x := math.Pow(float64(round), p.DiscountAlpha)
		positive = x / (x + 1.0)
	}

	if p.DiscountBeta != 0 {
		// t^beta / (t^beta + 1)
		x := math.Pow(float64(round), p.DiscountBeta)
		negative = x / (x + 1.0)
	}

	return
}

// RegretUpdate returns the update rule that applies the discount of the
// previous round to the accumulated regret before adding the new one.
func (p DiscountParams) RegretUpdate() RegretUpdate {
	return func(prev, regret float64, round int) float64 {
		if round <= 1 {
			return p.floor(prev, prev+regret)
		}

		positive, negative := p.GetDiscountFactors(round - 1)
		discounted := prev * positive
		if prev < 0 {
			discounted = prev * negative
		}

		return p.floor(prev, discounted+regret)
	}
}

func (p DiscountParams) floor(prev, next float64) float64 {
	if p.UseRegretMatchingPlus && next < 0 {
		next = 0
	}

	return next - prev
}
