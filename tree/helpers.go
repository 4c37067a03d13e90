// Package tree implements brute-force walks over the raw states of a game.
package tree

import (
	"github.com/timpalpant/go-efr"
)

// Children returns the states reachable in one step from state.
func Children(state efr.State) []efr.State {
	if state.IsTerminal() {
		return nil
	}

	var result []efr.State
	if state.IsChanceNode() {
		for _, outcome := range state.ChanceOutcomes() {
			result = append(result, state.Child(outcome.Action))
		}
	} else {
		for _, a := range state.LegalActions() {
			result = append(result, state.Child(a))
		}
	}

	return result
}

func Visit(root efr.State, visitor func(state efr.State)) {
	visitor(root)
	for _, child := range Children(root) {
		Visit(child, visitor)
	}
}

func VisitInfoSets(root efr.State, visitor func(player int, infoSet string)) {
	seen := make(map[string]struct{})
	Visit(root, func(state efr.State) {
		if !state.IsChanceNode() && !state.IsTerminal() {
			player := state.CurrentPlayer()
			infoSet := state.InformationState()
			if _, ok := seen[infoSet]; ok {
				return
			}

			visitor(player, infoSet)
			seen[infoSet] = struct{}{}
		}
	})
}

// ForEachState calls f with the first state visited in each information
// state of player. A negative player matches every player.
func ForEachState(root efr.State, f func(state efr.State), player int) {
	seen := make(map[string]struct{})
	Visit(root, func(state efr.State) {
		if state.IsChanceNode() || state.IsTerminal() {
			return
		}

		if player >= 0 && state.CurrentPlayer() != player {
			return
		}

		infoSet := state.InformationState()
		if _, ok := seen[infoSet]; !ok {
			f(state)
			seen[infoSet] = struct{}{}
		}
	})
}

// NumStates returns the number of information states of player.
func NumStates(root efr.State, player int) int {
	total := 0
	ForEachState(root, func(efr.State) { total++ }, player)
	return total
}

func CountTerminalNodes(root efr.State) int {
	total := 0
	Visit(root, func(state efr.State) {
		if state.IsTerminal() {
			total++
		}
	})

	return total
}

func CountNodes(root efr.State) int {
	total := 0
	Visit(root, func(state efr.State) { total++ })
	return total
}

func CountInfoSets(root efr.State) int {
	total := 0
	VisitInfoSets(root, func(player int, infoSet string) { total++ })
	return total
}

// PlayerSize summarizes the decisions of one player: the number of
// information states with at least two actions, the range of their action
// counts and the range of the number of earlier decisions of the player on
// the way to them.
type PlayerSize struct {
	NumInfoSets int
	MinActions  int
	MaxActions  int
	MinDepth    int
	MaxDepth    int
}

func (s *PlayerSize) add(numActions, depth int) {
	if s.NumInfoSets == 0 {
		s.MinActions, s.MaxActions = numActions, numActions
		s.MinDepth, s.MaxDepth = depth, depth
	}

	s.NumInfoSets++
	s.MinActions = min(s.MinActions, numActions)
	s.MaxActions = max(s.MaxActions, numActions)
	s.MinDepth = min(s.MinDepth, depth)
	s.MaxDepth = max(s.MaxDepth, depth)
}

// Merge returns the size of the union of the decisions of s and other.
func (s PlayerSize) Merge(other PlayerSize) PlayerSize {
	switch {
	case s.NumInfoSets == 0:
		return other
	case other.NumInfoSets == 0:
		return s
	}

	return PlayerSize{
		NumInfoSets: s.NumInfoSets + other.NumInfoSets,
		MinActions:  min(s.MinActions, other.MinActions),
		MaxActions:  max(s.MaxActions, other.MaxActions),
		MinDepth:    min(s.MinDepth, other.MinDepth),
		MaxDepth:    max(s.MaxDepth, other.MaxDepth),
	}
}

// Size returns the size of player's part of the game rooted at root.
func Size(root efr.State, player int) PlayerSize {
	var size PlayerSize
	seen := make(map[string]struct{})
	var visit func(state efr.State, depth int)
	visit = func(state efr.State, depth int) {
		if state.IsTerminal() {
			return
		}

		if state.IsChanceNode() {
			for _, outcome := range state.ChanceOutcomes() {
				visit(state.Child(outcome.Action), depth)
			}
			return
		}

		actions := state.LegalActions()
		childDepth := depth
		if state.CurrentPlayer() == player {
			childDepth++
			infoSet := state.InformationState()
			if _, ok := seen[infoSet]; !ok && len(actions) > 1 {
				size.add(len(actions), depth)
				seen[infoSet] = struct{}{}
			}
		}

		for _, a := range actions {
			visit(state.Child(a), childDepth)
		}
	}

	visit(root, 0)
	return size
}
