package efr

import (
	"github.com/timpalpant/go-efr/sampling"
)

// CfValueTreeNode holds the counterfactual values of one information state
// and, for each action, the keys of the information states of the same
// player that may be reached next after taking it.
type CfValueTreeNode struct {
	Values    *CfValues
	ChildKeys [][]string
}

func newCfValueTreeNode(numActions int) *CfValueTreeNode {
	return &CfValueTreeNode{
		Values:    NewCfValues(numActions),
		ChildKeys: make([][]string, numActions),
	}
}

// CfValueTreeEvaluation is the result of CfValueTreeEvaluator.Evaluate.
type CfValueTreeEvaluation struct {
	EV float64
	// InitialInfoStates are the information states of the player that may
	// be reached before the player has acted.
	InitialInfoStates []string
	Tree              map[string]*CfValueTreeNode
	NumHistories      int
}

// CfValueTreeEvaluator computes, for a single player, the counterfactual
// values of every information state along with the successor structure
// among them.
type CfValueTreeEvaluator struct {
	Player int

	tree         map[string]*CfValueTreeNode
	numHistories int
	valuesPool   floatSlicePool
}

func NewCfValueTreeEvaluator(player int) *CfValueTreeEvaluator {
	return &CfValueTreeEvaluator{Player: player}
}

// Evaluate walks root under profile, resolving branches with sampler.
func (e *CfValueTreeEvaluator) Evaluate(root DecisionPoint, profile Policy, sampler sampling.Sampler) CfValueTreeEvaluation {
	e.tree = make(map[string]*CfValueTreeNode)
	e.numHistories = 0

	var initialKeys []string
	ev := e.counterfactualValue(&initialKeys, root, profile, sampler, 1.0, 0)
	decisionHistories.Add(int64(e.numHistories))
	return CfValueTreeEvaluation{
		EV:                ev,
		InitialInfoStates: initialKeys,
		Tree:              e.tree,
		NumHistories:      e.numHistories,
	}
}

func (e *CfValueTreeEvaluator) counterfactualValue(siblings *[]string, dp DecisionPoint,
	profile Policy, sampler sampling.Sampler, iwReachProb float64, a int) float64 {
	v := 0.0
	sampler.SampleChanceOutcomes(dp.OutcomeProbabilities(a), func(outcome int, prob, samplingProb float64) {
		dp.Apply(a, outcome)
		next := iwReachProb * prob / samplingProb
		if dp.IsTerminal() {
			v += dp.Returns()[e.Player] * next
		} else {
			v += e.computeCfValueTree(siblings, dp, profile, sampler, next)
		}
		dp.Undo()
	})
	return v
}

func (e *CfValueTreeEvaluator) computeCfValueTree(siblings *[]string, dp DecisionPoint,
	profile Policy, sampler sampling.Sampler, iwReachProb float64) float64 {
	e.numHistories++

	policy := profile.Response(dp.State())
	stateValue := 0.0
	if dp.PlayerToAct() == e.Player {
		infoState := dp.InformationState()
		node, ok := e.tree[infoState]
		if !ok {
			node = newCfValueTreeNode(dp.NumActions())
			e.tree[infoState] = node
			*siblings = append(*siblings, infoState)
		}

		actionValues := e.valuesPool.alloc(dp.NumActions())
		sampler.SampleTargetPlayerActions(policy, func(a int, prob, samplingProb float64) {
			var childKeys []string
			cfv := e.counterfactualValue(&childKeys, dp, profile, sampler, iwReachProb/samplingProb, a)
			actionValues[a] = cfv
			stateValue += prob * cfv
			node.ChildKeys[a] = append(node.ChildKeys[a], childKeys...)
		})

		node.Values.add(actionValues, stateValue)
		e.valuesPool.free(actionValues)
	} else {
		sampler.SampleExternalPlayerActions(policy, func(a int, prob, samplingProb float64) {
			if prob > 0 {
				stateValue += e.counterfactualValue(siblings, dp, profile, sampler, prob*iwReachProb/samplingProb, a)
			}
		})
	}

	return stateValue
}
