// Package policy holds the per-information-state record kept by the tabular
// deviation learner: the current immediate strategy, the round counter and
// the accumulated regrets of every external and internal swap deviation.
package policy

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/timpalpant/go-efr/internal/f64"
	"github.com/timpalpant/go-efr/swap"
)

// RegretUpdate returns the increment to apply to an accumulated regret,
// given its previous value, the instantaneous (reach-weighted) regret, and
// the round number of the record being updated.
type RegretUpdate func(prev, regret float64, round int) float64

// Link maps accumulated regrets to nonnegative deviation weights, yielding
// one weight per regret index in order.
type Link func(regrets []float64, yield func(i int, w float64))

// ReachProbs pairs the deviation reach probabilities computed under the
// previous and next policies of the predecessors.
type ReachProbs struct {
	Prev []float64
	Next []float64
}

func (r ReachProbs) Len() int { return len(r.Prev) }

// Info is the learner state for a single information state.
type Info struct {
	policy    []float64
	round     int
	exRegrets []float64
	inRegrets []float64

	exPhis []swap.Transformation
	inPhis []swap.Transformation
	phiSum *swap.Weighted
}

// New returns a record for a decision with nActions actions, tracking
// external deviations for exSize predecessor sequences and internal
// deviations for inSize predecessor sequences.
func New(nActions, exSize, inSize int) *Info {
	info := &Info{
		policy: f64.Uniform(nActions),
		round:  1,
	}
	info.init(exSize, inSize)
	return info
}

func (info *Info) init(exSize, inSize int) {
	n := len(info.policy)
	info.exPhis, info.inPhis = nil, nil
	if exSize > 0 {
		info.exPhis = swap.External(n)
	}
	if inSize > 0 {
		info.inPhis = swap.Internal(n)
	}

	if len(info.exRegrets) != len(info.exPhis)*exSize {
		info.exRegrets = make([]float64, len(info.exPhis)*exSize)
	}
	if len(info.inRegrets) != len(info.inPhis)*inSize {
		info.inRegrets = make([]float64, len(info.inPhis)*inSize)
	}

	info.phiSum = swap.NewWeighted(n)
}

// Response returns the current immediate strategy. The result must not be
// modified.
func (info *Info) Response() []float64 {
	return info.policy
}

func (info *Info) NumActions() int { return len(info.policy) }

// Round returns the 1-based number of the next update.
func (info *Info) Round() int { return info.round }

// Update accumulates the regrets of every tracked deviation against the
// counterfactual values (v, ev) and replaces the current strategy with the
// fixed point of the link-weighted deviations.
func (info *Info) Update(v []float64, ev float64, update RegretUpdate, link Link, ex, in ReachProbs) {
	if len(v) != len(info.policy) {
		panic(fmt.Errorf("update has %d values for %d actions", len(v), len(info.policy)))
	}

	if ex.Len() > 0 {
		info.updatePhiRegrets(info.exRegrets, info.exPhis, v, ev, update, link, ex)
	}
	if in.Len() > 0 {
		info.updatePhiRegrets(info.inRegrets, info.inPhis, v, ev, update, link, in)
	}

	info.policy = info.phiSum.FixedPoint(info.policy)
	info.phiSum.Reset()
	info.round++
}

func (info *Info) updatePhiRegrets(regrets []float64, phis []swap.Transformation,
	v []float64, ev float64, update RegretUpdate, link Link, reach ReachProbs) {
	numReachProbs := reach.Len()
	if len(reach.Next) != numReachProbs || len(regrets) != len(phis)*numReachProbs {
		panic(fmt.Errorf("reach probabilities of size %d/%d do not match %d regrets for %d deviations",
			numReachProbs, len(reach.Next), len(regrets), len(phis)))
	}

	idx := 0
	for _, phi := range phis {
		regret := phi.Regret(v, ev, info.policy)
		for _, prev := range reach.Prev {
			regrets[idx] += update(regrets[idx], prev*regret, info.round)
			idx++
		}
	}

	reachIdx, phiIdx := 0, 0
	sum := 0.0
	link(regrets, func(_ int, w float64) {
		sum += reach.Next[reachIdx] * w
		reachIdx++
		if reachIdx == numReachProbs {
			info.phiSum.Add(phis[phiIdx], sum)
			phiIdx++
			sum = 0
			reachIdx = 0
		}
	})
}

// Clone returns a deep copy of info.
func (info *Info) Clone() *Info {
	result := &Info{
		policy:    append([]float64(nil), info.policy...),
		round:     info.round,
		exRegrets: append([]float64(nil), info.exRegrets...),
		inRegrets: append([]float64(nil), info.inRegrets...),
		exPhis:    info.exPhis,
		inPhis:    info.inPhis,
		phiSum:    swap.NewWeighted(len(info.policy)),
	}
	return result
}

func (info *Info) exSize() int {
	if len(info.exPhis) == 0 {
		return 0
	}
	return len(info.exRegrets) / len(info.exPhis)
}

func (info *Info) inSize() int {
	if len(info.inPhis) == 0 {
		return 0
	}
	return len(info.inRegrets) / len(info.inPhis)
}

func (info *Info) GobDecode(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	var exSize, inSize int
	if err := dec.Decode(&exSize); err != nil {
		return err
	}

	if err := dec.Decode(&inSize); err != nil {
		return err
	}

	if err := dec.Decode(&info.round); err != nil {
		return err
	}

	if err := dec.Decode(&info.policy); err != nil {
		return err
	}

	if err := dec.Decode(&info.exRegrets); err != nil {
		return err
	}

	if err := dec.Decode(&info.inRegrets); err != nil {
		return err
	}

	info.init(exSize, inSize)
	return nil
}

func (info *Info) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(info.exSize()); err != nil {
		return nil, err
	}

	if err := enc.Encode(info.inSize()); err != nil {
		return nil, err
	}

	if err := enc.Encode(info.round); err != nil {
		return nil, err
	}

	if err := enc.Encode(info.policy); err != nil {
		return nil, err
	}

	if err := enc.Encode(info.exRegrets); err != nil {
		return nil, err
	}

	if err := enc.Encode(info.inRegrets); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
