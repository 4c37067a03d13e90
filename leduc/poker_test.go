package leduc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/tree"
)

func TestPoker_InfoSets(t *testing.T) {
	root := NewRoot()
	assert.Equal(t, 936, tree.CountInfoSets(root))
	assert.Equal(t, 468, tree.NumStates(root, 0))
	assert.Equal(t, 468, tree.NumStates(root, 1))
}

func TestPoker_Utilities(t *testing.T) {
	game := NewGame()
	maxSeen, minSeen := 0.0, 0.0
	tree.Visit(game.NewInitialState(), func(state efr.State) {
		if !state.IsTerminal() {
			return
		}

		returns := state.Returns()
		assert.Equal(t, 0.0, returns[0]+returns[1], "%v", state)
		for _, r := range returns {
			if r > maxSeen {
				maxSeen = r
			}
			if r < minSeen {
				minSeen = r
			}
		}
	})

	assert.Equal(t, game.MaxUtility(), maxSeen)
	assert.Equal(t, game.MinUtility(), minSeen)
}

func TestPoker_LegalActions(t *testing.T) {
	var state efr.State = NewRoot()
	require.Len(t, state.ChanceOutcomes(), 6)
	state = state.Child(0)
	require.Len(t, state.ChanceOutcomes(), 5)
	state = state.Child(2)

	require.False(t, state.IsChanceNode())
	assert.Equal(t, 0, state.CurrentPlayer())
	assert.Equal(t, []efr.Action{Call, Raise}, state.LegalActions())

	state = state.Child(Raise)
	assert.Equal(t, 1, state.CurrentPlayer())
	assert.Equal(t, []efr.Action{Fold, Call, Raise}, state.LegalActions())

	state = state.Child(Raise)
	assert.Equal(t, []efr.Action{Fold, Call}, state.LegalActions())

	state = state.Child(Call)
	require.True(t, state.IsChanceNode())
	assert.Len(t, state.ChanceOutcomes(), 4)
}

func TestPoker_Showdown(t *testing.T) {
	deal := func(cards ...efr.Action) efr.State {
		var state efr.State = NewRoot()
		state = state.Child(cards[0]).Child(cards[1])
		state = state.Child(Call).Child(Call)
		state = state.Child(cards[2])
		return state.Child(Raise).Child(Call)
	}

	testCases := []struct {
		name  string
		cards []efr.Action
		want  []float64
	}{
		{"pair wins", []efr.Action{0, 5, 1}, []float64{5, -5}},
		{"high card wins", []efr.Action{2, 5, 0}, []float64{-5, 5}},
		{"tie", []efr.Action{4, 5, 0}, []float64{0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := deal(tc.cards...)
			require.True(t, state.IsTerminal())
			assert.Equal(t, tc.want, state.Returns())
		})
	}
}

func TestPoker_Fold(t *testing.T) {
	var state efr.State = NewRoot()
	state = state.Child(0).Child(5).Child(Raise).Child(Fold)
	require.True(t, state.IsTerminal())
	assert.Equal(t, []float64{1, -1}, state.Returns())
}
