// Package sampling implements the Monte Carlo schemes used to resolve chance
// outcomes and player actions while walking a game tree.
//
// Every resolution hands its callback the index of the branch taken, the
// branch's intrinsic probability, and the probability with which the sampler
// chose it. Dividing by the sampling probability yields unbiased
// importance-weighted estimates.
package sampling

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// DefaultOutcomeEpsilon is the exploration rate used by New("outcome", ...).
const DefaultOutcomeEpsilon = 0.6

// Consumer receives one resolved branch.
type Consumer func(idx int, prob, samplingProb float64)

// ChanceConsumer receives one resolved outcome of a raw chance node together
// with the importance weight by which its subtree value should be scaled.
type ChanceConsumer func(idx int, importanceWeight float64)

// Sampler resolves the three kinds of branching encountered during a walk.
type Sampler interface {
	// SampleChanceOutcomes resolves the flattened outcome list of a cached
	// decision point.
	SampleChanceOutcomes(outcomeProbs []float64, f Consumer)
	// SampleChanceNode resolves the outcomes of a raw chance state.
	SampleChanceNode(outcomeProbs []float64, f ChanceConsumer)
	// SampleTargetPlayerActions resolves the actions of the player whose
	// values are being computed.
	SampleTargetPlayerActions(policy []float64, f Consumer)
	// SampleExternalPlayerActions resolves the actions of every other player.
	SampleExternalPlayerActions(policy []float64, f Consumer)
}

// New returns the sampler with the given name. Samplers that draw random
// numbers are seeded with seed; the same seed reproduces the same stream.
func New(name string, seed uint64) (Sampler, error) {
	switch name {
	case "null":
		return NewNullSampler(), nil
	case "chance":
		return NewChanceSampler(newRand(seed)), nil
	case "external":
		return NewExternalSampler(newRand(seed)), nil
	case "outcome":
		return NewOutcomeSampler(newRand(seed), DefaultOutcomeEpsilon), nil
	case "robust":
		return NewRobustSampler(newRand(seed), DefaultRobustK), nil
	case "multi_outcome":
		return NewMultiOutcomeSampler(newRand(seed), DefaultMultiOutcomeK, DefaultOutcomeEpsilon), nil
	case "average_strategy":
		return NewAverageStrategySampler(newRand(seed), DefaultAverageStrategyParams), nil
	}

	return nil, errors.Errorf("unknown sampler: %q", name)
}

// Names lists the sampler names accepted by New.
func Names() []string {
	return []string{"null", "chance", "external", "outcome", "robust", "multi_outcome", "average_strategy"}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
