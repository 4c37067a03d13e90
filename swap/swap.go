// Package swap implements swap deviations over the actions of a single
// decision and the weighted combinations whose fixed points define a
// learner's next mixed strategy.
package swap

import (
	"fmt"
)

// Transformation is a swap deviation: action a is replaced by Target(a).
// A transformation whose targets are all equal is external; any other
// transformation is internal.
type Transformation struct {
	phi        []int
	isExternal bool
}

// New returns the transformation that maps action a to phi[a].
func New(phi []int) Transformation {
	if len(phi) == 0 {
		panic(fmt.Errorf("swap transformation over zero actions"))
	}

	isExternal := true
	for _, target := range phi[1:] {
		if target != phi[0] {
			isExternal = false
			break
		}
	}

	return Transformation{phi: phi, isExternal: isExternal}
}

// External returns the n transformations that replace every action with a
// fixed action, ordered by that action.
func External(n int) []Transformation {
	result := make([]Transformation, n)
	for a := 0; a < n; a++ {
		phi := make([]int, n)
		for i := range phi {
			phi[i] = a
		}
		result[a] = New(phi)
	}

	return result
}

// Internal returns the n²−n transformations that replace a single action a1
// with a different action a2, ordered by a1 then a2.
func Internal(n int) []Transformation {
	result := make([]Transformation, 0, n*n-n)
	for a1 := 0; a1 < n; a1++ {
		for a2 := 0; a2 < n; a2++ {
			if a1 == a2 {
				continue
			}

			phi := identity(n)
			phi[a1] = a2
			result = append(result, New(phi))
		}
	}

	return result
}

func identity(n int) []int {
	phi := make([]int, n)
	for i := range phi {
		phi[i] = i
	}
	return phi
}

func (t Transformation) NumActions() int       { return len(t.phi) }
func (t Transformation) IsExternal() bool      { return t.isExternal }
func (t Transformation) Target(action int) int { return t.phi[action] }

// ApplyAction returns the one-hot distribution on Target(action).
func (t Transformation) ApplyAction(action int) []float64 {
	result := make([]float64, len(t.phi))
	result[t.phi[action]] = 1.0
	return result
}

// ApplyPolicy returns the distribution obtained by moving the mass of each
// action onto its target.
func (t Transformation) ApplyPolicy(policy []float64) []float64 {
	if len(policy) != len(t.phi) {
		panic(fmt.Errorf("policy has %d actions, transformation has %d",
			len(policy), len(t.phi)))
	}

	result := make([]float64, len(policy))
	for a, p := range policy {
		result[t.phi[a]] += p
	}
	return result
}

// Regret returns the gain in counterfactual value from playing the
// transformed policy: Σ_a v[Target(a)]·policy[a] − ev.
func (t Transformation) Regret(v []float64, ev float64, policy []float64) float64 {
	r := -ev
	for a, p := range policy {
		r += v[t.phi[a]] * p
	}
	return r
}

func (t Transformation) String() string {
	return fmt.Sprint(t.phi)
}
