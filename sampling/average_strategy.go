package sampling

import (
	"golang.org/x/exp/rand"
)

// AverageStrategyParams control which target player actions are visited by
// an AverageStrategySampler. An action played with probability p is visited
// with probability max(Epsilon, (Beta + Tau*p) / (Beta + 1)).
type AverageStrategyParams struct {
	Epsilon float64
	Tau     float64
	Beta    float64
}

// DefaultAverageStrategyParams are those suggested by Gibson et al. (2012).
var DefaultAverageStrategyParams = AverageStrategyParams{
	Epsilon: 0.05,
	Tau:     1000,
	Beta:    1e6,
}

// AverageStrategySampler implements Sampler by visiting each target player
// action with a probability that grows with the weight the policy gives it.
// It is intended for profiles that play an average strategy. Chance outcomes
// and the actions of other players are sampled on-policy.
type AverageStrategySampler struct {
	params AverageStrategyParams
	rng    *rand.Rand
}

var _ Sampler = &AverageStrategySampler{}

func NewAverageStrategySampler(rng *rand.Rand, params AverageStrategyParams) *AverageStrategySampler {
	return &AverageStrategySampler{
		params: params,
		rng:    rng,
	}
}

func (as *AverageStrategySampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleOneExternalPlayerAction(as.rng.Float64(), outcomeProbs, f)
}

func (as *AverageStrategySampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleOneChanceOutcome(as.rng.Float64(), outcomeProbs, f)
}

// SampleTargetPlayerActions draws a single uniform number and visits every
// action whose visit probability exceeds it.
func (as *AverageStrategySampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	x := as.rng.Float64()
	for i, p := range policy {
		rho := computeRho(p, as.params)
		if x < rho {
			f(i, p, min(rho, 1.0))
		}
	}
}

func (as *AverageStrategySampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleOneExternalPlayerAction(as.rng.Float64(), policy, f)
}

func computeRho(p float64, params AverageStrategyParams) float64 {
	rho := params.Beta + params.Tau*p
	rho /= params.Beta + 1.0
	if rho < params.Epsilon {
		return params.Epsilon
	}

	return rho
}
