package sampling

import (
	"github.com/timpalpant/go-efr/internal/sampling"
)

// SampleAllChanceOutcomes visits every outcome of a raw chance node,
// weighting each by its probability.
func SampleAllChanceOutcomes(outcomeProbs []float64, f ChanceConsumer) {
	for i, p := range outcomeProbs {
		f(i, p)
	}
}

// SampleOneChanceOutcome visits one outcome of a raw chance node, chosen
// according to its probability. The sampled subtree is weighted by 1.
func SampleOneChanceOutcome(x float64, outcomeProbs []float64, f ChanceConsumer) {
	f(sampling.SampleIndex(outcomeProbs, x, 0), 1.0)
}

// SampleAllTargetPlayerActions visits every action with sampling probability 1.
func SampleAllTargetPlayerActions(policy []float64, f Consumer) {
	for i, p := range policy {
		f(i, p, 1.0)
	}
}

// SampleOneTargetPlayerAction visits one action drawn from the policy mixed
// with the uniform distribution at rate epsilon, so every action retains a
// nonzero sampling probability when epsilon > 0.
func SampleOneTargetPlayerAction(x float64, policy []float64, f Consumer, epsilon float64) {
	i := sampling.SampleIndex(policy, x, epsilon)
	p := policy[i]
	f(i, p, (1-epsilon)*p+epsilon/float64(len(policy)))
}

// SampleAllExternalPlayerActions visits every action with sampling probability 1.
func SampleAllExternalPlayerActions(policy []float64, f Consumer) {
	for i, p := range policy {
		f(i, p, 1.0)
	}
}

// SampleOneExternalPlayerAction visits one action drawn on-policy.
func SampleOneExternalPlayerAction(x float64, policy []float64, f Consumer) {
	i := sampling.SampleIndex(policy, x, 0)
	p := policy[i]
	f(i, p, p)
}
