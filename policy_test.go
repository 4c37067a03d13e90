package efr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/kuhn"
)

// firstDecision returns the cached Kuhn tree positioned at the first
// decision of player 0 after the given deal.
func firstDecision(deal int) *efr.CachedDecisionPoint {
	dp := efr.NewCachedDecisionPoint(kuhn.NewRoot())
	dp.Apply(0, deal)
	return dp
}

func TestMapPolicy_Response(t *testing.T) {
	state := firstDecision(0).State()
	mp := efr.NewMapPolicy()
	assert.Equal(t, []float64{0.5, 0.5}, mp.Response(state))

	mp.Set(state.InformationState(), []float64{0.3, 0.7})
	assert.Equal(t, []float64{0.3, 0.7}, mp.Response(state))

	mp.Set(state.InformationState(), []float64{1, 3})
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, mp.Response(state), 1e-12)

	mp.Set(state.InformationState(), []float64{0, 0})
	assert.Equal(t, []float64{0.5, 0.5}, mp.Response(state))

	weights, ok := mp.Get(state.InformationState())
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, weights)

	mp.Set(state.InformationState(), []float64{math.NaN(), 1})
	response := mp.Response(state)
	assert.True(t, math.IsNaN(response[0]))
	assert.Equal(t, 1.0, response[1])
}

func TestMapPolicy_Clone(t *testing.T) {
	mp := efr.NewMapPolicyFromTable(map[string][]float64{"a": {1, 0}})
	clone := mp.Clone()
	clone.Set("b", []float64{0, 1})
	weights, _ := clone.Get("a")
	weights[0] = 0.5

	assert.Equal(t, 1, mp.Len())
	original, _ := mp.Get("a")
	assert.Equal(t, []float64{1, 0}, original)
}

func TestMapPolicy_Avg(t *testing.T) {
	root := efr.NewCachedDecisionPoint(kuhn.NewRoot())

	mp := efr.NewMapPolicy()
	mp.Avg(efr.UniformRandomPolicy(), root, 1.0, efr.AllPlayers)
	assert.Equal(t, 12, mp.Len())

	// Player 0 reaches its second decision by checking with probability 0.5.
	dp := firstDecision(0)
	weights, ok := mp.Get(dp.InformationState())
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, weights, 1e-12)
	dp.Apply(0, 0)
	dp.Apply(1, 0)
	require.Equal(t, 0, dp.PlayerToAct())
	weights, ok = mp.Get(dp.InformationState())
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.25, 0.25}, weights, 1e-12)

	onlyPlayer0 := efr.NewMapPolicy()
	onlyPlayer0.Avg(alwaysZero, root, 0.5, 0)
	onlyPlayer0.Avg(alwaysMaxAction, root, 0.5, 0)
	assert.Equal(t, 6, onlyPlayer0.Len())
	weights, _ = onlyPlayer0.Get(firstDecision(0).InformationState())
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, weights, 1e-12)
	assert.True(t, root.IsRoot())
}

func TestProfile(t *testing.T) {
	profile := efr.NewProfile(alwaysZero, alwaysMaxAction)
	require.Equal(t, 2, profile.NumPlayers())

	dp := firstDecision(2)
	assert.Equal(t, []float64{1, 0}, profile.Response(dp.State()))
	dp.Apply(0, 0)
	assert.Equal(t, []float64{0, 1}, profile.Response(dp.State()))

	substituted := profile.WithSubstitute(alwaysZero, 1)
	assert.Equal(t, []float64{1, 0}, substituted.Response(dp.State()))
	assert.Equal(t, []float64{0, 1}, profile.Response(dp.State()))
}

func TestActionsAndProbsTable(t *testing.T) {
	root := efr.NewCachedDecisionPoint(kuhn.NewRoot())
	table := efr.ActionsAndProbsTable(root, efr.UniformRandomPolicy())
	assert.Len(t, table, 12)
	for infoState, actionProbs := range table {
		require.Len(t, actionProbs, 2, infoState)
		for _, ap := range actionProbs {
			assert.Equal(t, 0.5, ap.Prob)
		}
	}
}
