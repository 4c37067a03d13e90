package efr

import (
	"math"

	"github.com/timpalpant/go-efr/internal/f64"
)

// CounterfactualReachProb returns the product of the reach probabilities of
// every player other than player.
func CounterfactualReachProb(reachProbs []float64, player int) float64 {
	result := 1.0
	for i, p := range reachProbs {
		if i != player {
			result *= p
		}
	}
	return result
}

// CounterfactualReturns scales each player's return by the chance importance
// weight and that player's counterfactual reach, divided by the probability
// with which the sampler reached the history.
func CounterfactualReturns(returns []float64, chanceIW float64, reachProbs []float64, playerSamplingProb float64) []float64 {
	result := make([]float64, len(returns))
	for player, r := range returns {
		result[player] = r * chanceIW * CounterfactualReachProb(reachProbs, player) / playerSamplingProb
	}
	return result
}

// SafeDivide divides v by s in place if s is positive. Otherwise v is set to
// the uniform distribution if setUniform, and left unchanged if not.
func SafeDivide(v []float64, s float64, setUniform bool) {
	if s > 0 {
		for i := range v {
			v[i] /= s
		}
	} else if setUniform {
		f64.Fill(1.0/float64(len(v)), v)
	}
}

// MaxPositiveValue returns the largest element of v, or 0 if none is positive.
func MaxPositiveValue(v []float64) float64 {
	return f64.MaxPositive(v)
}

// MaxAbs returns the largest absolute value in v.
func MaxAbs(v []float64) float64 {
	return f64.MaxAbs(v)
}

// AdaNormalHedgeWeights writes the AdaNormalHedge weights of regrets into
// weights and returns their sum. c holds the accumulated absolute
// instantaneous regrets and maxUtility the scale of the game's utilities.
// If maxUtility is not positive the weights are untouched and 0 is returned.
func AdaNormalHedgeWeights(weights, regrets, c []float64, maxUtility float64) float64 {
	if !(maxUtility > 0) {
		return 0
	}

	rp1Squared := make([]float64, len(regrets))
	rm1Squared := make([]float64, len(regrets))
	maxRp1Squared := math.Inf(-1)
	for i, regret := range regrets {
		denominator := 3 * (1 + math.Abs(c[i])/maxUtility)
		r := regret / maxUtility
		rp1Squared[i] = f64.Square(f64.Relu(r+1)) / denominator
		rm1Squared[i] = f64.Square(f64.Relu(r-1)) / denominator
		if rp1Squared[i] > maxRp1Squared {
			maxRp1Squared = rp1Squared[i]
		}
	}

	normalizer := 0.0
	for i := range regrets {
		y := math.Exp(rp1Squared[i]-maxRp1Squared) - math.Exp(rm1Squared[i]-maxRp1Squared)
		weights[i] = y
		normalizer += y
	}

	return normalizer
}
