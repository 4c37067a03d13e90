package efr

import (
	"math"
	"testing"
)

func TestGetDiscountFactors(t *testing.T) {
	testCases := []struct {
		name     string
		params   DiscountParams
		round    int
		positive float64
		negative float64
	}{
		{"cumulative", DiscountParams{}, 3, 1.0, 1.0},
		{"regret matching+", DiscountParams{UseRegretMatchingPlus: true}, 3, 1.0, 0.0},
		{"linear", DiscountParams{LinearWeighting: true}, 1, 0.5, 0.5},
		{"linear", DiscountParams{LinearWeighting: true}, 3, 0.75, 0.75},
		{"discounted", DiscountParams{DiscountAlpha: 1.0, DiscountBeta: 2.0}, 2, 2.0 / 3, 0.8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			positive, negative := tc.params.GetDiscountFactors(tc.round)
			if math.Abs(positive-tc.positive) > 1e-12 {
				t.Errorf("expected positive factor %v, got %v", tc.positive, positive)
			}
			if math.Abs(negative-tc.negative) > 1e-12 {
				t.Errorf("expected negative factor %v, got %v", tc.negative, negative)
			}
		})
	}
}

func TestRegretUpdate(t *testing.T) {
	if x := CumulativeRegret(1, 2, 1); x != 2 {
		t.Errorf("expected 2, got %v", x)
	}

	if x := RegretMatchingPlus(1, -3, 1); x != -1 {
		t.Errorf("expected -1, got %v", x)
	}

	if x := (DiscountParams{}).RegretUpdate()(1, 2, 3); x != 2 {
		t.Errorf("expected 2, got %v", x)
	}

	if x := (DiscountParams{UseRegretMatchingPlus: true}).RegretUpdate()(1, -3, 1); x != -1 {
		t.Errorf("expected -1, got %v", x)
	}

	// The regret of round 1 is scaled by 1/2 before round 2 is added.
	if x := (DiscountParams{LinearWeighting: true}).RegretUpdate()(2, 1, 2); x != 0 {
		t.Errorf("expected 0, got %v", x)
	}

	// Negative regrets are discounted by the beta factor.
	update := DiscountParams{DiscountAlpha: 1.0, DiscountBeta: 1.0}.RegretUpdate()
	if x := update(-2, 0, 2); x != 1 {
		t.Errorf("expected 1, got %v", x)
	}
}
