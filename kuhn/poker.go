// Package kuhn implements Kuhn Poker as an efr.Game, adapted from:
// https://justinsermeno.com/posts/cfr/.
package kuhn

import (
	"fmt"

	"github.com/timpalpant/go-efr"
)

const (
	chance  = efr.ChancePlayer
	player0 = 0
	player1 = 1
)

// Actions available to the players.
const (
	Pass efr.Action = iota
	Bet
)

const (
	random = 'r'
	check  = 'c'
	bet    = 'b'
)

type Card int

const (
	Jack Card = iota
	Queen
	King
)

var cardStr = [...]string{
	"J",
	"Q",
	"K",
}

func (c Card) String() string {
	return cardStr[c]
}

// Game implements efr.Game for two-player Kuhn Poker.
type Game struct{}

var _ efr.Game = Game{}

func NewGame() Game { return Game{} }

func (Game) Name() string               { return "kuhn_poker" }
func (Game) NumPlayers() int            { return 2 }
func (Game) NumDistinctActions() int    { return 2 }
func (Game) MaxUtility() float64        { return 2 }
func (Game) MinUtility() float64        { return -2 }
func (Game) NewInitialState() efr.State { return NewRoot() }

// PokerNode implements efr.State for Kuhn Poker. Nodes are immutable.
type PokerNode struct {
	player  int
	history string

	// Private card held by either player.
	p0Card, p1Card Card
}

var _ efr.State = &PokerNode{}

// NewRoot returns the initial chance node, before any cards are dealt.
func NewRoot() *PokerNode {
	return &PokerNode{player: chance}
}

// String implements fmt.Stringer.
func (k *PokerNode) String() string {
	return fmt.Sprintf("Player %v's turn. History: %5s [Cards: P0 - %s, P1 - %s]",
		k.player, k.history, k.p0Card, k.p1Card)
}

func (k *PokerNode) NumPlayers() int         { return 2 }
func (k *PokerNode) NumDistinctActions() int { return 2 }

func (k *PokerNode) IsTerminal() bool {
	return (k.history == "rrcc" || k.history == "rrcbc" ||
		k.history == "rrcbb" || k.history == "rrbc" || k.history == "rrbb")
}

func (k *PokerNode) IsChanceNode() bool {
	return len(k.history) < 2
}

func (k *PokerNode) CurrentPlayer() int {
	if k.IsTerminal() {
		panic(fmt.Errorf("acting player of terminal node: %v", k))
	}

	return k.player
}

func (k *PokerNode) LegalActions() []efr.Action {
	if k.IsTerminal() || k.IsChanceNode() {
		return nil
	}

	return []efr.Action{Pass, Bet}
}

func (k *PokerNode) ChanceOutcomes() []efr.ActionProb {
	switch len(k.history) {
	case 0:
		return []efr.ActionProb{
			{Action: efr.Action(Jack), Prob: 1.0 / 3},
			{Action: efr.Action(Queen), Prob: 1.0 / 3},
			{Action: efr.Action(King), Prob: 1.0 / 3},
		}
	case 1:
		var result []efr.ActionProb
		for _, card := range []Card{Jack, Queen, King} {
			if card == k.p0Card {
				continue // Both players can't be dealt the same card.
			}

			result = append(result, efr.ActionProb{Action: efr.Action(card), Prob: 0.5})
		}
		return result
	}

	return nil
}

func (k *PokerNode) Child(a efr.Action) efr.State {
	child := *k
	switch len(k.history) {
	case 0:
		child.p0Card = Card(a)
		child.history += string(random)
	case 1:
		child.p1Card = Card(a)
		child.player = player0
		child.history += string(random)
	default:
		if a == Pass {
			child.history += string(check)
		} else {
			child.history += string(bet)
		}
		child.player = 1 - k.player
	}

	return &child
}

func (k *PokerNode) Clone() efr.State {
	child := *k
	return &child
}

// Returns implements efr.State.
func (k *PokerNode) Returns() []float64 {
	u0 := k.utility(player0)
	return []float64{u0, -u0}
}

func (k *PokerNode) utility(player int) float64 {
	cardPlayer := k.playerCard(player)
	cardOpponent := k.playerCard(1 - player)

	// By convention, terminal nodes are labeled with the player whose
	// turn it would be (i.e. not the last acting player).

	if k.history == "rrcbc" || k.history == "rrbc" {
		// Last player folded. The current player wins.
		if k.player == player {
			return 1.0
		} else {
			return -1.0
		}
	} else if k.history == "rrcc" {
		// Showdown with no bets.
		if cardPlayer > cardOpponent {
			return 1.0
		} else {
			return -1.0
		}
	}

	// Showdown with 1 bet.
	if k.history != "rrcbb" && k.history != "rrbb" {
		panic("unexpected history: " + k.history)
	}

	if cardPlayer > cardOpponent {
		return 2.0
	}

	return -2.0
}

// InformationState implements efr.State.
func (k *PokerNode) InformationState() string {
	return k.playerCard(k.player).String() + "-" + k.history
}

func (k *PokerNode) playerCard(player int) Card {
	if player == player0 {
		return k.p0Card
	}

	return k.p1Card
}
