package efr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/leduc"
	"github.com/timpalpant/go-efr/sampling"
)

type evaluationCase struct {
	name              string
	policy            efr.Policy
	player            int
	ev                float64
	numHistories      int
	numValueHistories int
}

func TestPolicyEvaluation_Leduc(t *testing.T) {
	testCases := []evaluationCase{
		{"always zero", alwaysZero, 0, 0.0, 450, 300},
		{"always zero", alwaysZero, 1, 0.0, 450, 300},
		{"always max", alwaysMaxAction, 0, 0.0, 2340, 450},
		{"always max", alwaysMaxAction, 1, 0.0, 810, 450},
		{"uniform", efr.UniformRandomPolicy(), 0, -0.078125, 3780, 3780},
		{"uniform", efr.UniformRandomPolicy(), 1, 0.078125, 3780, 3780},
	}

	root := efr.NewCachedDecisionPoint(leduc.NewGame().NewInitialState())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkEvaluators(t, root, tc)
		})
	}
}

func checkEvaluators(t *testing.T, root *efr.CachedDecisionPoint, tc evaluationCase) {
	reachProbPlayer := 1 - tc.player
	withReach := efr.PolicyRegretsAndReachProbs(root, tc.player, tc.policy, nullSampler, reachProbPlayer)
	regrets := efr.PolicyCounterfactualRegrets(root, tc.player, tc.policy, nullSampler)
	tree := efr.NewCfValueTreeEvaluator(tc.player).Evaluate(root, tc.policy, nullSampler)

	assert.InDelta(t, tc.ev, withReach.EV, 1e-9)
	assert.Equal(t, withReach.EV, regrets.EV)
	assert.Equal(t, withReach.EV, tree.EV)
	assert.Equal(t, tc.numHistories, withReach.NumHistories)
	assert.Equal(t, tc.numHistories, regrets.NumHistories)
	assert.Equal(t, tc.numHistories, tree.NumHistories)

	require.Equal(t, len(regrets.Regrets), len(withReach.Regrets))
	require.Equal(t, len(regrets.Regrets), len(tree.Tree))
	for infoState, cfv := range withReach.Regrets {
		other, ok := regrets.Regrets[infoState]
		require.True(t, ok, infoState)
		node, ok := tree.Tree[infoState]
		require.True(t, ok, infoState)

		assert.InDelta(t, cfv.EV, other.EV, 1e-9)
		assert.InDelta(t, cfv.EV, node.Values.EV, 1e-9)
		require.Len(t, other.V, len(cfv.V))
		require.Len(t, node.Values.V, len(cfv.V))
		for a := range cfv.V {
			assert.InDelta(t, cfv.V[a], other.V[a], 1e-9)
			assert.InDelta(t, cfv.V[a], node.Values.V[a], 1e-9)
		}
	}

	// Every node of the value tree is reachable from the initial states.
	require.NotEmpty(t, tree.InitialInfoStates)
	numInfoStates := 0
	stack := append([]string(nil), tree.InitialInfoStates...)
	for len(stack) > 0 {
		infoState := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		numInfoStates++

		node := tree.Tree[infoState]
		require.NotNil(t, node, infoState)
		for _, children := range node.ChildKeys {
			stack = append(stack, children...)
		}
	}
	assert.Equal(t, len(regrets.Regrets), numInfoStates)

	v, n := efr.PolicyValue(root, tc.player, tc.policy, nullSampler)
	assert.InDelta(t, tc.ev, v, 1e-9)
	assert.Equal(t, tc.numValueHistories, n)

	weighted := efr.PolicyReachWeightedRegrets(root, tc.player, tc.policy, nullSampler)
	assert.InDelta(t, tc.ev, weighted.EV, 1e-9)
	assert.Equal(t, tc.numHistories, weighted.NumHistories)
}

func TestPolicyEvaluation_Deterministic(t *testing.T) {
	root := efr.NewCachedDecisionPoint(leduc.NewGame().NewInitialState())
	policy := efr.UniformRandomPolicy()

	regrets := efr.PolicyCounterfactualRegrets(root, 0, policy, nullSampler)
	again := efr.PolicyCounterfactualRegrets(root, 0, policy, nullSampler)
	assert.Equal(t, regrets, again)

	withReach := efr.PolicyRegretsAndReachProbs(root, 0, policy, nullSampler, 1)
	withReachAgain := efr.PolicyRegretsAndReachProbs(root, 0, policy, nullSampler, 1)
	assert.Equal(t, withReach, withReachAgain)
	assert.Equal(t, regrets.EV, withReach.EV)
	assert.Equal(t, regrets.NumHistories, withReach.NumHistories)
}

func TestPolicyValue_SampledMeanConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sampled evaluation in short mode")
	}

	root := efr.NewCachedDecisionPoint(leduc.NewGame().NewInitialState())
	policy := efr.UniformRandomPolicy()
	exact, _ := efr.PolicyValue(root, 0, policy, nullSampler)
	require.Equal(t, -0.078125, exact)

	const numSamples = 200000
	testCases := []struct {
		sampler string
		delta   float64
	}{
		{"chance", 0.015},
		{"external", 0.025},
		{"outcome", 0.05},
	}

	for _, tc := range testCases {
		t.Run(tc.sampler, func(t *testing.T) {
			s, err := sampling.New(tc.sampler, 11)
			require.NoError(t, err)

			mean := 0.0
			for i := 0; i < numSamples; i++ {
				v, _ := efr.PolicyValue(root, 0, policy, s)
				require.False(t, math.IsNaN(v))
				mean += (v - mean) / float64(i+1)
			}

			assert.InDelta(t, exact, mean, tc.delta)
		})
	}
}

func TestPolicyRegretsAndReachProbsFromState(t *testing.T) {
	game := leduc.NewGame()
	root := efr.NewCachedDecisionPoint(game.NewInitialState())
	policy := efr.UniformRandomPolicy()

	cached := efr.PolicyRegretsAndReachProbs(root, 0, policy, nullSampler, 1)
	raw := efr.PolicyRegretsAndReachProbsFromState(game.NewInitialState(), 0, policy, nullSampler, 1)

	assert.InDelta(t, cached.EV, raw.EV, 1e-9)
	assert.Equal(t, cached.NumHistories, raw.NumHistories)
	require.Equal(t, len(cached.ReachProbs), len(raw.ReachProbs))
	for infoState, probs := range cached.ReachProbs {
		require.Contains(t, raw.ReachProbs, infoState)
		assert.InDeltaSlice(t, probs, raw.ReachProbs[infoState], 1e-9)
	}
}

func TestPolicyRegretsAndReachProbs_ReachTable(t *testing.T) {
	root := efr.NewCachedDecisionPoint(leduc.NewGame().NewInitialState())
	result := efr.PolicyRegretsAndReachProbs(root, 0, efr.UniformRandomPolicy(), nullSampler, efr.NoPlayer)
	assert.Empty(t, result.ReachProbs)
	assert.NotEmpty(t, result.Regrets)
}

func TestCfValues(t *testing.T) {
	cfv := efr.NewCfValues(3)
	cfv.V[0], cfv.V[1], cfv.V[2] = 1.0, 2.0, -1.0
	cfv.EV = 0.5

	assert.InDelta(t, 2.0, cfv.Value([]float64{0, 1, 0}), 1e-12)
	assert.InDelta(t, 1.5, cfv.Regret([]float64{0, 1, 0}), 1e-12)
	assert.InDelta(t, -1.5, cfv.Regret([]float64{0, 0, 1}), 1e-12)

	cfv.Reset()
	assert.Equal(t, []float64{0, 0, 0}, cfv.V)
	assert.Equal(t, 0.0, cfv.EV)
}
