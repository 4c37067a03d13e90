package efr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/kuhn"
	"github.com/timpalpant/go-efr/sampling"
)

// infoState is a bare decision state that only exposes an information
// state and its number of legal actions.
type infoState struct {
	efr.State
	key        string
	numActions int
}

func (s infoState) InformationState() string { return s.key }
func (s infoState) CurrentPlayer() int       { return 0 }

func (s infoState) LegalActions() []efr.Action {
	actions := make([]efr.Action, s.numActions)
	for i := range actions {
		actions[i] = efr.Action(i)
	}
	return actions
}

func leaf(ev float64, values ...float64) *efr.CfValueTreeNode {
	return &efr.CfValueTreeNode{
		Values:    &efr.CfValues{V: values, EV: ev},
		ChildKeys: make([][]string, len(values)),
	}
}

func TestTabularLearner_UnknownStatesAreUniform(t *testing.T) {
	l := efr.NewTabularLearner(efr.ImmediateExternal)
	assert.Equal(t, []float64{0.5, 0.5}, l.Response(infoState{key: "a", numActions: 2}))
	assert.Equal(t, 0, l.NumInfoStates())
	assert.Equal(t, "immediate_external", familyName(l.Family()))
}

func TestTabularLearner_DominantAction(t *testing.T) {
	for _, name := range efr.DeviationFamilyNames() {
		family, err := efr.DeviationFamilyByName(name)
		require.NoError(t, err)

		t.Run(name, func(t *testing.T) {
			l := efr.NewTabularLearner(family)
			tree := map[string]*efr.CfValueTreeNode{"a": leaf(0, 1, 0, -1)}
			l.Update([]string{"a"}, tree)

			assert.Equal(t, 1, l.NumInfoStates())
			assert.InDeltaSlice(t, []float64{1, 0, 0}, l.Response(infoState{key: "a", numActions: 3}), 1e-9)
		})
	}
}

func TestTabularLearner_SingleActionStatesAreSkipped(t *testing.T) {
	tree := map[string]*efr.CfValueTreeNode{
		"a": {Values: efr.NewCfValues(1), ChildKeys: [][]string{{"b"}}},
		"b": leaf(0, 0, 1),
	}

	l := efr.NewTabularLearner(efr.CausalPartialSequence)
	l.Update([]string{"a"}, tree)
	assert.Equal(t, 1, l.NumInfoStates())
	assert.InDeltaSlice(t, []float64{0, 1}, l.Response(infoState{key: "b", numActions: 2}), 1e-9)
}

func TestTabularLearner_RegretUpdate(t *testing.T) {
	testCases := []struct {
		name     string
		opts     []efr.LearnerOption
		expected []float64
	}{
		{"cumulative", nil, []float64{0.25, 0.75}},
		{"regret matching+", []efr.LearnerOption{efr.WithRegretUpdate(efr.RegretMatchingPlus)}, []float64{0.2, 0.8}},
	}

	state := infoState{key: "a", numActions: 2}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := efr.NewTabularLearner(efr.ImmediateExternal, tc.opts...)
			l.Update([]string{"a"}, map[string]*efr.CfValueTreeNode{"a": leaf(0.5, 1, 0)})
			require.InDeltaSlice(t, []float64{1, 0}, l.Response(state), 1e-9)

			l.Update([]string{"a"}, map[string]*efr.CfValueTreeNode{"a": leaf(0, 0, 2)})
			assert.InDeltaSlice(t, tc.expected, l.Response(state), 1e-9)
		})
	}
}

func TestTabularLearner_AdaNormalHedge(t *testing.T) {
	l := efr.NewTabularLearner(efr.ImmediateExternal, efr.WithLink(efr.AdaNormalHedgeLink(2.0)))
	l.Update([]string{"a"}, map[string]*efr.CfValueTreeNode{"a": leaf(0.5, 1, 0)})

	response := l.Response(infoState{key: "a", numActions: 2})
	assert.InDelta(t, 1.0, response[0]+response[1], 1e-9)
	assert.Greater(t, response[0], response[1])
	assert.Greater(t, response[1], 0.0)
}

func TestTabularLearner_Clone(t *testing.T) {
	state := infoState{key: "a", numActions: 2}
	l := efr.NewTabularLearner(efr.ImmediateExternal)
	l.Update([]string{"a"}, map[string]*efr.CfValueTreeNode{"a": leaf(0.5, 1, 0)})

	clone := l.Clone()
	l.Update([]string{"a"}, map[string]*efr.CfValueTreeNode{"a": leaf(0, 0, 2)})

	assert.InDeltaSlice(t, []float64{1, 0}, clone.Response(state), 1e-9)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, l.Response(state), 1e-9)
	assert.NoError(t, clone.Close())
}

func TestTabularLearner_AlternateUpdatesReachableInfoStates(t *testing.T) {
	root := efr.NewCachedDecisionPoint(kuhn.NewRoot())
	learners := efr.NewTabularLearners(2, efr.TwiceInformedPartialSequence)
	profile := efr.NewCfTreeLearnerProfile(learners)

	profile.UpdateAlternateAndReturnEv(root, nullSampler)
	assert.Equal(t, 6, learners[0].NumInfoStates())
	// Player 0 now plays a pure strategy, so the value tree of player 1 only
	// reaches the information states that follow player 0's chosen actions.
	assert.Equal(t, 3, learners[1].NumInfoStates())
}

func TestTabularLearner_UpdatesEveryInfoStateAgainstUniform(t *testing.T) {
	root := efr.NewCachedDecisionPoint(kuhn.NewRoot())
	learners := efr.NewTabularLearners(2, efr.TwiceInformedPartialSequence)
	profile := efr.NewCfTreeLearnerProfile(learners)

	profile.UpdateAndReturnEv(root, nullSampler, uniformCompatriots())
	for player, l := range learners {
		assert.Equal(t, 6, l.NumInfoStates(), "player %d", player)
	}
}

func TestTabularLearner_SampledUpdates(t *testing.T) {
	for _, name := range []string{"chance", "external", "outcome"} {
		t.Run(name, func(t *testing.T) {
			s, err := sampling.New(name, 11)
			require.NoError(t, err)

			root := efr.NewCachedDecisionPoint(kuhn.NewRoot())
			learners := efr.NewTabularLearners(2, efr.ImmediateExternal)
			profile := efr.NewCfTreeLearnerProfile(learners)
			for i := 0; i < 50; i++ {
				profile.UpdateAlternateAndReturnEv(root, s)
			}

			for player, l := range learners {
				assert.NotZero(t, l.NumInfoStates(), "player %d", player)
			}

			efr.ForEachDecisionPoint(root, func(dp efr.DecisionPoint) {
				response := learners[dp.PlayerToAct()].Response(dp.State())
				sum := 0.0
				for _, p := range response {
					assert.GreaterOrEqual(t, p, 0.0)
					sum += p
				}
				assert.InDelta(t, 1.0, sum, 1e-9)
			}, efr.AllPlayers)
		})
	}
}

func TestCFR_AverageStrategyConverges(t *testing.T) {
	root := efr.NewCachedDecisionPoint(kuhn.NewRoot())
	profile := efr.NewCfTreeLearnerProfile(efr.NewTabularLearners(2, efr.ImmediateExternal))

	avg := efr.NewMapPolicy()
	for i := 0; i < 500; i++ {
		profile.UpdateAlternateAndReturnEv(root, nullSampler)
		avg.Avg(profile.Frozen(), root, 1.0, efr.AllPlayers)
	}

	exploitability, err := efr.Exploitability(root, avg)
	require.NoError(t, err)
	assert.Less(t, exploitability, 0.05)
}
