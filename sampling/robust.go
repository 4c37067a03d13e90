package sampling

import (
	"sort"

	"golang.org/x/exp/rand"
)

// DefaultRobustK is the number of target player actions visited by
// New("robust", ...).
const DefaultRobustK = 1

// RobustSampler implements Sampler by visiting k target player actions
// chosen uniformly at random without replacement. Chance outcomes and the
// actions of other players are sampled on-policy.
type RobustSampler struct {
	k   int
	rng *rand.Rand
}

var _ Sampler = &RobustSampler{}

func NewRobustSampler(rng *rand.Rand, k int) *RobustSampler {
	return &RobustSampler{
		k:   k,
		rng: rng,
	}
}

func (rs *RobustSampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleOneExternalPlayerAction(rs.rng.Float64(), outcomeProbs, f)
}

func (rs *RobustSampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleOneChanceOutcome(rs.rng.Float64(), outcomeProbs, f)
}

func (rs *RobustSampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	nChildren := len(policy)
	if nChildren <= rs.k {
		SampleAllTargetPlayerActions(policy, f)
		return
	}

	// f may recurse into this sampler, so the sample must not be shared.
	sampled := rs.rng.Perm(nChildren)[:rs.k]
	sort.Ints(sampled)

	q := float64(rs.k) / float64(nChildren)
	for _, i := range sampled {
		f(i, policy[i], q)
	}
}

func (rs *RobustSampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleOneExternalPlayerAction(rs.rng.Float64(), policy, f)
}

// K returns the number of target player actions visited.
func (rs *RobustSampler) K() int {
	return rs.k
}
