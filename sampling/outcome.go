package sampling

import (
	"golang.org/x/exp/rand"
)

// OutcomeSampler implements Sampler by sampling a single trajectory: one
// chance outcome, one action for each non-target player drawn on-policy, and
// one target player action drawn from the policy mixed with the uniform
// distribution at rate epsilon.
type OutcomeSampler struct {
	rng     *rand.Rand
	epsilon float64
}

var _ Sampler = &OutcomeSampler{}

func NewOutcomeSampler(rng *rand.Rand, epsilon float64) *OutcomeSampler {
	return &OutcomeSampler{
		rng:     rng,
		epsilon: epsilon,
	}
}

func (os *OutcomeSampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleOneExternalPlayerAction(os.rng.Float64(), outcomeProbs, f)
}

func (os *OutcomeSampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleOneChanceOutcome(os.rng.Float64(), outcomeProbs, f)
}

func (os *OutcomeSampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	SampleOneTargetPlayerAction(os.rng.Float64(), policy, f, os.epsilon)
}

func (os *OutcomeSampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleOneExternalPlayerAction(os.rng.Float64(), policy, f)
}

// Epsilon returns the target player's exploration rate.
func (os *OutcomeSampler) Epsilon() float64 {
	return os.epsilon
}
