package efr

import (
	"math"
)

// Action identifies a move in a game. Actions are game-defined integers.
type Action int

// ActionProb pairs a chance outcome with its probability.
type ActionProb struct {
	Action Action
	Prob   float64
}

const (
	// ChancePlayer is the acting player at a chance node.
	ChancePlayer = -1
	// TerminalPlayer is the acting player reported for terminal states.
	TerminalPlayer = -4
	// NoPlayer is the acting player of a cached decision point that
	// does not correspond to a player decision.
	NoPlayer = -1
	// AllPlayers is a player indicator that matches every player.
	AllPlayers = math.MinInt
)

// PlayerInSet reports whether player belongs to the set named by indicator.
// A nonnegative indicator names a single player; a negative indicator i
// names every player except -i-1.
func PlayerInSet(player, indicator int) bool {
	if indicator >= 0 {
		return player == indicator
	}
	return player != -indicator-1
}

// State is a history of an extensive-form game. Implementations are
// supplied by the game; this package only navigates them.
type State interface {
	NumPlayers() int
	// NumDistinctActions bounds the number of legal actions at any state.
	NumDistinctActions() int
	IsTerminal() bool
	IsChanceNode() bool
	// CurrentPlayer returns the acting player, or ChancePlayer at a chance
	// node. It must not be called on terminal states.
	CurrentPlayer() int
	// LegalActions returns the ordered legal actions at a decision node.
	LegalActions() []Action
	// ChanceOutcomes returns the outcome distribution of a chance node.
	ChanceOutcomes() []ActionProb
	// Returns gives each player's utility at a terminal state.
	Returns() []float64
	// InformationState returns the key identifying the acting player's
	// information state.
	InformationState() string
	// Child returns the state reached by playing a. The receiver is
	// not modified.
	Child(a Action) State
	Clone() State
}

// Game describes an extensive-form game.
type Game interface {
	Name() string
	NumPlayers() int
	NumDistinctActions() int
	MaxUtility() float64
	MinUtility() float64
	NewInitialState() State
}
