// Package leduc implements two-player Leduc Hold'em as an efr.Game.
//
// The deck holds two suits of three ranks. Each player antes 1 and is dealt
// one private card; a betting round follows, then one public card is dealt
// and a second betting round follows. Each round allows at most two raises,
// of 2 chips in the first round and 4 chips in the second. At showdown a
// player whose private card pairs the public card wins, otherwise the higher
// private card wins, and equal ranks split the pot.
package leduc

import (
	"fmt"
	"strings"

	"github.com/timpalpant/go-efr"
)

// Actions available to the players.
const (
	Fold efr.Action = iota
	Call
	Raise
)

const (
	numPlayers  = 2
	numCards    = 6
	numSuits    = 2
	ante        = 1
	maxRaises   = 2
	firstRaise  = 2
	secondRaise = 4
	noCard      = -1
)

// Game implements efr.Game for Leduc Hold'em.
type Game struct{}

var _ efr.Game = Game{}

func NewGame() Game { return Game{} }

func (Game) Name() string               { return "leduc_poker" }
func (Game) NumPlayers() int            { return numPlayers }
func (Game) NumDistinctActions() int    { return 3 }
func (Game) MaxUtility() float64        { return 13 }
func (Game) MinUtility() float64        { return -13 }
func (Game) NewInitialState() efr.State { return NewRoot() }

// PokerNode implements efr.State for Leduc Hold'em. Nodes are immutable.
type PokerNode struct {
	player       int
	round        int
	stakes       int
	numRaises    int
	numCalls     int
	ante         [numPlayers]int
	privateCards [numPlayers]int
	publicCard   int
	folded       int

	// Betting sequence of each round.
	sequences [2][]efr.Action
}

var _ efr.State = &PokerNode{}

// NewRoot returns the initial chance node, before any cards are dealt.
func NewRoot() *PokerNode {
	return &PokerNode{
		player:       efr.ChancePlayer,
		round:        1,
		stakes:       ante,
		ante:         [numPlayers]int{ante, ante},
		privateCards: [numPlayers]int{noCard, noCard},
		publicCard:   noCard,
		folded:       -1,
	}
}

func rank(card int) int { return card / numSuits }

func (k *PokerNode) String() string {
	return fmt.Sprintf("Player %d's turn. Round %d [Cards: P0 - %d, P1 - %d, Public - %d] [Ante: %v] %v",
		k.player, k.round, k.privateCards[0], k.privateCards[1], k.publicCard, k.ante, k.sequences)
}

func (k *PokerNode) NumPlayers() int         { return numPlayers }
func (k *PokerNode) NumDistinctActions() int { return 3 }

func (k *PokerNode) IsTerminal() bool {
	return k.folded >= 0 || (k.round == 2 && k.player == efr.TerminalPlayer)
}

func (k *PokerNode) IsChanceNode() bool {
	return k.player == efr.ChancePlayer
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

	var result []efr.Action
	if k.stakes > k.ante[k.player] {
		result = append(result, Fold)
	}

	result = append(result, Call)
	if k.numRaises < maxRaises {
		result = append(result, Raise)
	}

	return result
}

func (k *PokerNode) isDealt(card int) bool {
	return card == k.privateCards[0] || card == k.privateCards[1] || card == k.publicCard
}

func (k *PokerNode) ChanceOutcomes() []efr.ActionProb {
	if !k.IsChanceNode() {
		return nil
	}

	var cards []int
	for card := 0; card < numCards; card++ {
		if !k.isDealt(card) {
			cards = append(cards, card)
		}
	}

	result := make([]efr.ActionProb, len(cards))
	for i, card := range cards {
		result[i] = efr.ActionProb{Action: efr.Action(card), Prob: 1.0 / float64(len(cards))}
	}

	return result
}

func (k *PokerNode) Child(a efr.Action) efr.State {
	child := k.clone()
	if k.IsChanceNode() {
		child.deal(int(a))
	} else {
		child.bet(a)
	}

	return child
}

func (k *PokerNode) clone() *PokerNode {
	child := *k
	for i := range child.sequences {
		child.sequences[i] = append([]efr.Action(nil), k.sequences[i]...)
	}
	return &child
}

func (k *PokerNode) deal(card int) {
	if k.isDealt(card) || card < 0 || card >= numCards {
		panic(fmt.Errorf("card %d cannot be dealt: %v", card, k))
	}

	switch {
	case k.privateCards[0] == noCard:
		k.privateCards[0] = card
	case k.privateCards[1] == noCard:
		k.privateCards[1] = card
		k.player = 0
	default:
		k.publicCard = card
		k.player = 0
	}
}

func (k *PokerNode) bet(a efr.Action) {
	p := k.player
	k.sequences[k.round-1] = append(k.sequences[k.round-1], a)

	switch a {
	case Fold:
		k.folded = p
		k.player = efr.TerminalPlayer
		return
	case Call:
		k.ante[p] = k.stakes
		k.numCalls++
	case Raise:
		amount := firstRaise
		if k.round == 2 {
			amount = secondRaise
		}
		k.stakes += amount
		k.ante[p] = k.stakes
		k.numRaises++
		k.numCalls = 0
	default:
		panic(fmt.Errorf("illegal action %d: %v", a, k))
	}

	roundOver := (k.numRaises == 0 && k.numCalls == numPlayers) ||
		(k.numRaises > 0 && k.numCalls == numPlayers-1)
	if !roundOver {
		k.player = 1 - p
		return
	}

	if k.round == 2 {
		k.player = efr.TerminalPlayer
		return
	}

	k.round = 2
	k.numRaises = 0
	k.numCalls = 0
	k.player = efr.ChancePlayer
}

func (k *PokerNode) Clone() efr.State {
	return k.clone()
}

// Returns implements efr.State.
func (k *PokerNode) Returns() []float64 {
	if !k.IsTerminal() {
		return []float64{0, 0}
	}

	if k.folded >= 0 {
		winner := 1 - k.folded
		result := make([]float64, numPlayers)
		result[winner] = float64(k.ante[k.folded])
		result[k.folded] = -float64(k.ante[k.folded])
		return result
	}

	s0, s1 := k.handStrength(0), k.handStrength(1)
	switch {
	case s0 > s1:
		return []float64{float64(k.ante[1]), -float64(k.ante[1])}
	case s1 > s0:
		return []float64{-float64(k.ante[0]), float64(k.ante[0])}
	}

	return []float64{0, 0}
}

func (k *PokerNode) handStrength(player int) int {
	card := k.privateCards[player]
	if rank(card) == rank(k.publicCard) {
		return numCards + rank(card)
	}
	return rank(card)
}

// InformationState implements efr.State.
func (k *PokerNode) InformationState() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Player: %d][Private: %d][Round %d][Public: %d]",
		k.player, k.privateCards[k.player], k.round, k.publicCard)
	for i, seq := range k.sequences {
		fmt.Fprintf(&sb, "[Round%d:", i+1)
		for _, a := range seq {
			fmt.Fprintf(&sb, " %d", a)
		}
		sb.WriteString("]")
	}
	return sb.String()
}
