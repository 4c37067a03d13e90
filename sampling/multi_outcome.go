package sampling

import (
	"golang.org/x/exp/rand"

	"github.com/timpalpant/go-efr/internal/f64"
	"github.com/timpalpant/go-efr/internal/sampling"
)

// DefaultMultiOutcomeK is the number of target player actions drawn by
// New("multi_outcome", ...).
const DefaultMultiOutcomeK = 2

// MultiOutcomeSampler implements Sampler by drawing k distinct target player
// actions from the policy mixed with exploration eps. Chance outcomes and
// the actions of other players are sampled on-policy.
type MultiOutcomeSampler struct {
	k    int
	eps  float64
	rng  *rand.Rand
	pool floatSlicePool
}

var _ Sampler = &MultiOutcomeSampler{}

func NewMultiOutcomeSampler(rng *rand.Rand, k int, explorationEps float64) *MultiOutcomeSampler {
	return &MultiOutcomeSampler{
		k:   k,
		eps: explorationEps,
		rng: rng,
	}
}

func (os *MultiOutcomeSampler) SampleChanceOutcomes(outcomeProbs []float64, f Consumer) {
	SampleOneExternalPlayerAction(os.rng.Float64(), outcomeProbs, f)
}

func (os *MultiOutcomeSampler) SampleChanceNode(outcomeProbs []float64, f ChanceConsumer) {
	SampleOneChanceOutcome(os.rng.Float64(), outcomeProbs, f)
}

func (os *MultiOutcomeSampler) SampleExternalPlayerActions(policy []float64, f Consumer) {
	SampleOneExternalPlayerAction(os.rng.Float64(), policy, f)
}

func (os *MultiOutcomeSampler) SampleTargetPlayerActions(policy []float64, f Consumer) {
	nChildren := len(policy)
	if nChildren <= os.k {
		SampleAllTargetPlayerActions(policy, f)
		return
	}

	// q is the distribution to draw from next.
	// qEff[i] is the probability that i is among the k draws.
	q := os.pool.alloc(nChildren)
	copy(q, policy)
	f64.AddConst(os.eps, q)
	f64.ScalUnitary(1.0/(1.0+float64(nChildren)*os.eps), q)
	qEff := os.chooseK(q)

	sampled := make([]bool, nChildren)
	for i := 0; i < os.k; i++ {
		idx := sampling.SampleIndex(q, os.rng.Float64(), 0)
		sampled[idx] = true

		// Remove the sampled action from being re-sampled.
		qSample := q[idx]
		if qSample >= 1 {
			break // Nothing left to draw.
		}
		q[idx] = 0
		f64.ScalUnitary(1.0/(1.0-qSample), q)
	}

	samplingProbs := append([]float64(nil), qEff...)
	os.pool.free(qEff)
	os.pool.free(q)

	// f may recurse into this sampler, so pooled slices are released first.
	for i, ok := range sampled {
		if ok {
			f(i, policy[i], samplingProbs[i])
		}
	}
}

func (os *MultiOutcomeSampler) chooseK(p []float64) []float64 {
	result := os.pool.alloc(len(p))
	for j := range p {
		result[j] = os.chooseKHelper(p, j, os.k)
	}

	return result
}

func (os *MultiOutcomeSampler) chooseKHelper(p []float64, j, k int) float64 {
	if k == 1 {
		return p[j]
	}

	var descendant float64
	for i := range p {
		if i != j && p[i] > 0 && p[i] < 1 {
			choseI := os.pool.alloc(len(p))
			copy(choseI, p)
			choseI[i] = 0
			f64.ScalUnitary(1.0/(1-p[i]), choseI)
			descendant += p[i] * os.chooseKHelper(choseI, j, k-1)
			os.pool.free(choseI)
		}
	}

	return p[j] + descendant
}
