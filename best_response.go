package efr

import (
	"math"

	"github.com/pkg/errors"
)

// ErrNoPlayers is returned when exploitability is requested for a game
// without players.
var ErrNoPlayers = errors.New("game has no players")

// slot addresses an accumulator: the value of action in infoSet, or the
// root value when infoSet is negative.
type slot struct {
	infoSet int
	action  int
}

var rootSlot = slot{infoSet: -1}

type infoSetValues struct {
	key    string
	parent slot
	values []float64
}

// BestResponse computes the value and policy of a best response against a
// fixed policy.
//
// The indicator argument of its methods names the players that follow the
// policy, as interpreted by PlayerInSet; every other player best responds
// and the returned value is the sum of their utilities. For example, with
// indicator 0 player 0 follows the policy and the value is that of player 1's
// best response; with indicator -1 player 0 best responds to the others.
type BestResponse struct {
	policy Policy

	rootValue float64
	byDepth   [][]int
	index     map[string]int
	infoSets  []infoSetValues

	indexPool  keyIntMapPool
	valuesPool floatSlicePool
}

func NewBestResponse(policy Policy) *BestResponse {
	return &BestResponse{policy: policy}
}

// Value returns the best response value from the cached tree rooted at dp.
func (br *BestResponse) Value(dp DecisionPoint, indicator int) float64 {
	br.reset()
	br.dfsAction(dp, 0, 1.0, rootSlot, indicator, 0)
	br.backwardPass(nil)
	return br.rootValue
}

// ValueFromState returns the best response value from the raw state root.
func (br *BestResponse) ValueFromState(root State, indicator int) float64 {
	br.reset()
	br.dfsState(root, 0, 1.0, rootSlot, indicator)
	br.backwardPass(nil)
	return br.rootValue
}

// Policy returns a deterministic best response and its value from the
// cached tree rooted at dp.
func (br *BestResponse) Policy(dp DecisionPoint, indicator int) (*MapPolicy, float64) {
	br.reset()
	br.dfsAction(dp, 0, 1.0, rootSlot, indicator, 0)
	policy := NewMapPolicy()
	br.backwardPass(policy)
	return policy, br.rootValue
}

// PolicyFromState returns a deterministic best response and its value from
// the raw state root.
func (br *BestResponse) PolicyFromState(root State, indicator int) (*MapPolicy, float64) {
	br.reset()
	br.dfsState(root, 0, 1.0, rootSlot, indicator)
	policy := NewMapPolicy()
	br.backwardPass(policy)
	return policy, br.rootValue
}

func (br *BestResponse) reset() {
	br.rootValue = 0
	br.byDepth = br.byDepth[:0]
	if br.index != nil {
		br.indexPool.free(br.index)
	}
	br.index = br.indexPool.alloc()
	for _, infoSet := range br.infoSets {
		br.valuesPool.free(infoSet.values)
	}
	br.infoSets = br.infoSets[:0]
}

func (br *BestResponse) add(s slot, v float64) {
	if s.infoSet < 0 {
		br.rootValue += v
	} else {
		br.infoSets[s.infoSet].values[s.action] += v
	}
}

// Backward induction, deepest information sets first. Ties are broken in
// favor of the first maximal action.
func (br *BestResponse) backwardPass(policy *MapPolicy) {
	for depth := len(br.byDepth) - 1; depth >= 0; depth-- {
		for _, idx := range br.byDepth[depth] {
			infoSet := &br.infoSets[idx]
			brAction := 0
			maxValue := -math.MaxFloat64
			for a, q := range infoSet.values {
				if q > maxValue {
					brAction = a
					maxValue = q
				}
			}

			if policy != nil {
				p := make([]float64, len(infoSet.values))
				p[brAction] = 1.0
				policy.Set(infoSet.key, p)
			}

			br.add(infoSet.parent, infoSet.values[brAction])
		}
	}
}

func cfReturn(returns []float64, prob float64, indicator int) float64 {
	v := 0.0
	for player, u := range returns {
		if !PlayerInSet(player, indicator) {
			v += u
		}
	}
	return v * prob
}

func (br *BestResponse) infoSetIndex(infoState string, parent slot, numActions, depth int) int {
	if idx, ok := br.index[infoState]; ok {
		return idx
	}

	for len(br.byDepth) <= depth {
		br.byDepth = append(br.byDepth, nil)
	}

	idx := len(br.infoSets)
	br.infoSets = append(br.infoSets, infoSetValues{
		key:    infoState,
		parent: parent,
		values: br.valuesPool.alloc(numActions),
	})
	br.byDepth[depth] = append(br.byDepth[depth], idx)
	br.index[infoState] = idx
	return idx
}

func (br *BestResponse) dfsAction(dp DecisionPoint, depth int, prob float64, parent slot, indicator, action int) {
	probs := dp.OutcomeProbabilities(action)
	for outcome, p := range probs {
		dp.Apply(action, outcome)
		br.dfs(dp, depth, prob*p, parent, indicator)
		dp.Undo()
	}
}

func (br *BestResponse) dfs(dp DecisionPoint, depth int, prob float64, parent slot, indicator int) {
	if dp.IsTerminal() {
		br.add(parent, cfReturn(dp.Returns(), prob, indicator))
	} else if PlayerInSet(dp.PlayerToAct(), indicator) {
		for a, p := range br.policy.Response(dp.State()) {
			if p > 0 {
				br.dfsAction(dp, depth, prob*p, parent, indicator, a)
			}
		}
	} else {
		idx := br.infoSetIndex(dp.InformationState(), parent, dp.NumActions(), depth)
		for a := 0; a < dp.NumActions(); a++ {
			br.dfsAction(dp, depth+1, prob, slot{infoSet: idx, action: a}, indicator, a)
		}
	}
}

func (br *BestResponse) dfsState(h State, depth int, prob float64, parent slot, indicator int) {
	if h.IsTerminal() {
		br.add(parent, cfReturn(h.Returns(), prob, indicator))
	} else if h.IsChanceNode() {
		for _, outcome := range h.ChanceOutcomes() {
			br.dfsState(h.Child(outcome.Action), depth, prob*outcome.Prob, parent, indicator)
		}
	} else if PlayerInSet(h.CurrentPlayer(), indicator) {
		actions := h.LegalActions()
		for a, p := range br.policy.Response(h) {
			if p > 0 {
				br.dfsState(h.Child(actions[a]), depth, prob*p, parent, indicator)
			}
		}
	} else {
		actions := h.LegalActions()
		idx := br.infoSetIndex(h.InformationState(), parent, len(actions), depth)
		for a, action := range actions {
			br.dfsState(h.Child(action), depth+1, prob, slot{infoSet: idx, action: a}, indicator)
		}
	}
}

// NashConv returns the sum over players of the gain each could obtain by
// deviating to a best response against profile.
func NashConv(dp DecisionPoint, profile Policy) (float64, error) {
	if dp.NumPlayers() == 0 {
		return 0, ErrNoPlayers
	}

	nc := 0.0
	for player := 0; player < dp.NumPlayers(); player++ {
		nc += NewBestResponse(profile).Value(dp, player)
	}

	return nc, nil
}

// Exploitability returns NashConv divided by the number of players.
func Exploitability(dp DecisionPoint, profile Policy) (float64, error) {
	nc, err := NashConv(dp, profile)
	if err != nil {
		return 0, err
	}

	return nc / float64(dp.NumPlayers()), nil
}
