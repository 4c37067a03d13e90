package efr

import (
	"sort"

	"github.com/pkg/errors"
)

// DeviationFamily determines which behavioral deviations a TabularLearner
// tracks. Every deviation is identified with a predecessor sequence of
// earlier choices; a family maps the reach probabilities of the sequences
// leading into an information state to those used to weight its external
// and internal deviation regrets, and to those handed on to the
// information states that follow each action.
type DeviationFamily interface {
	ExternalPredecessors(predReachProbs []float64) []float64
	InternalPredecessors(predReachProbs []float64) []float64
	// Successors returns the predecessor reach probabilities of the
	// information states reached after taking action, given strat, the
	// immediate strategy that was in effect.
	Successors(predReachProbs, strat []float64, action int) []float64
}

type predecessorFunc func(predReachProbs []float64) []float64

type successorFunc func(predReachProbs, strat []float64, action int) []float64

type deviationFamily struct {
	name       string
	external   predecessorFunc
	internal   predecessorFunc
	successors successorFunc
}

func (f deviationFamily) ExternalPredecessors(predReachProbs []float64) []float64 {
	return f.external(predReachProbs)
}

func (f deviationFamily) InternalPredecessors(predReachProbs []float64) []float64 {
	return f.internal(predReachProbs)
}

func (f deviationFamily) Successors(predReachProbs, strat []float64, action int) []float64 {
	return f.successors(predReachProbs, strat, action)
}

func (f deviationFamily) String() string { return f.name }

func none(predReachProbs []float64) []float64 { return nil }

func all(predReachProbs []float64) []float64 { return predReachProbs }

func allButLast(predReachProbs []float64) []float64 {
	return append([]float64(nil), predReachProbs[:len(predReachProbs)-1]...)
}

func last(predReachProbs []float64) []float64 {
	return []float64{predReachProbs[len(predReachProbs)-1]}
}

// Every successor starts afresh from the empty sequence.
func counterfactualSuccessors(predReachProbs, strat []float64, action int) []float64 {
	return []float64{1.0}
}

// The single predecessor sequence is extended by the action taken.
func identitySuccessors(predReachProbs, strat []float64, action int) []float64 {
	return []float64{predReachProbs[0] * strat[action]}
}

// Every predecessor is kept for external deviations, and the identity
// sequence is extended by the action taken.
func blindPartialSequenceSuccessors(predReachProbs, strat []float64, action int) []float64 {
	result := make([]float64, len(predReachProbs), len(predReachProbs)+1)
	copy(result, predReachProbs)
	identity := predReachProbs[len(predReachProbs)-1]
	return append(result, identity*strat[action])
}

// As blindPartialSequenceSuccessors, plus one internal sequence for every
// action that could have been swapped into action.
func causalSuccessors(predReachProbs, strat []float64, action int) []float64 {
	result := make([]float64, len(predReachProbs), len(predReachProbs)+len(strat))
	copy(result, predReachProbs)
	identity := predReachProbs[len(predReachProbs)-1]
	for a, p := range strat {
		if a != action {
			result = append(result, identity*p)
		}
	}

	return append(result, identity*strat[action])
}

// Every predecessor sequence is extended by every action.
func behavioralSuccessors(predReachProbs, strat []float64, action int) []float64 {
	result := make([]float64, 0, len(predReachProbs)*len(strat))
	for _, p := range predReachProbs {
		for _, q := range strat {
			result = append(result, p*q)
		}
	}

	return result
}

var (
	// ImmediateInternal tracks immediate internal deviations (CFR_IN).
	ImmediateInternal DeviationFamily = deviationFamily{"immediate_internal", none, all, counterfactualSuccessors}
	// ImmediateExternal tracks immediate external deviations, which is CFR.
	ImmediateExternal DeviationFamily = deviationFamily{"immediate_external", all, none, counterfactualSuccessors}
	// ImmediateExIn tracks immediate external and internal deviations.
	ImmediateExIn DeviationFamily = deviationFamily{"immediate_ex_in", all, all, counterfactualSuccessors}
	// InformedAction tracks internal deviations conditioned on the identity
	// sequence (A-EFR_IN).
	InformedAction DeviationFamily = deviationFamily{"informed_action", none, all, identitySuccessors}
	// BlindAction tracks external deviations conditioned on the identity
	// sequence.
	BlindAction DeviationFamily = deviationFamily{"blind_action", all, none, identitySuccessors}
	// BlindPartialSequence (BPS-EFR).
	BlindPartialSequence DeviationFamily = deviationFamily{"blind_partial_sequence", all, none, blindPartialSequenceSuccessors}
	// CounterfactualPartialSequence (CFPS-EFR).
	CounterfactualPartialSequence DeviationFamily = deviationFamily{"counterfactual_partial_sequence", none, all, blindPartialSequenceSuccessors}
	// CounterfactualPartialSequenceExIn (CFPS-EFR_EX+IN).
	CounterfactualPartialSequenceExIn DeviationFamily = deviationFamily{"counterfactual_partial_sequence_ex_in", all, all, blindPartialSequenceSuccessors}
	// CausalPartialSequence (CSPS-EFR) weights external deviations by every
	// predecessor except the identity sequence, and internal deviations by
	// the identity sequence alone.
	CausalPartialSequence DeviationFamily = deviationFamily{"causal_partial_sequence", allButLast, last, causalSuccessors}
	// TwiceInformedPartialSequence (TIPS-EFR).
	TwiceInformedPartialSequence DeviationFamily = deviationFamily{"twice_informed_partial_sequence", none, all, causalSuccessors}
	// TwiceInformedPartialSequenceExIn (TIPS-EFR_EX+IN).
	TwiceInformedPartialSequenceExIn DeviationFamily = deviationFamily{"twice_informed_partial_sequence_ex_in", all, all, causalSuccessors}
	// Behavioral tracks every behavioral deviation (BEHAV-EFR). The number
	// of predecessor sequences grows exponentially with depth.
	Behavioral DeviationFamily = deviationFamily{"behavioral", none, all, behavioralSuccessors}
)

var deviationFamilies = map[string]DeviationFamily{}

func init() {
	for _, f := range []DeviationFamily{
		ImmediateInternal, ImmediateExternal, ImmediateExIn,
		InformedAction, BlindAction, BlindPartialSequence,
		CounterfactualPartialSequence, CounterfactualPartialSequenceExIn,
		CausalPartialSequence, TwiceInformedPartialSequence,
		TwiceInformedPartialSequenceExIn, Behavioral,
	} {
		deviationFamilies[f.(deviationFamily).name] = f
	}
}

// DeviationFamilyByName returns the registered family with the given name.
func DeviationFamilyByName(name string) (DeviationFamily, error) {
	f, ok := deviationFamilies[name]
	if !ok {
		return nil, errors.Errorf("unknown deviation family: %q", name)
	}

	return f, nil
}

// DeviationFamilyNames lists the registered family names in sorted order.
func DeviationFamilyNames() []string {
	names := make([]string, 0, len(deviationFamilies))
	for name := range deviationFamilies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
