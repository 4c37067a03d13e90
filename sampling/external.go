package sampling

import (
	"golang.org/x/exp/rand"
)

// ExternalSampler implements Sampler by sampling one chance outcome and one
// action of every non-target player, while enumerating the target player's
// actions.
type ExternalSampler struct {
	rng *rand.Rand
}

var _ Sampler = &ExternalSampler{}

func NewExternalSampler(rng *rand.Rand) *ExternalSampler {
	return &ExternalSampler{rng: rng}
}

func (es *ExternalSampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleOneExternalPlayerAction(es.rng.Float64(), outcomeProbs, f)
}

func (es *ExternalSampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleOneChanceOutcome(es.rng.Float64(), outcomeProbs, f)
}

func (es *ExternalSampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	SampleAllTargetPlayerActions(policy, f)
}

func (es *ExternalSampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleOneExternalPlayerAction(es.rng.Float64(), policy, f)
}

// ChanceSampler implements Sampler by sampling one chance outcome and
// enumerating every player action.
type ChanceSampler struct {
	rng *rand.Rand
}

var _ Sampler = &ChanceSampler{}

func NewChanceSampler(rng *rand.Rand) *ChanceSampler {
	return &ChanceSampler{rng: rng}
}

func (cs *ChanceSampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleOneExternalPlayerAction(cs.rng.Float64(), outcomeProbs, f)
}

func (cs *ChanceSampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleOneChanceOutcome(cs.rng.Float64(), outcomeProbs, f)
}

func (cs *ChanceSampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	SampleAllTargetPlayerActions(policy, f)
}

func (cs *ChanceSampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleAllExternalPlayerActions(policy, f)
}

// NullSampler implements Sampler by enumerating every branch. Walks using it
// compute exact values.
type NullSampler struct{}

var _ Sampler = NullSampler{}

func NewNullSampler() NullSampler {
	return NullSampler{}
}

func (NullSampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleAllExternalPlayerActions(outcomeProbs, f)
}

func (NullSampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleAllChanceOutcomes(outcomeProbs, f)
}

func (NullSampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	SampleAllTargetPlayerActions(policy, f)
}

func (NullSampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleAllExternalPlayerActions(policy, f)
}
