package efr

import (
	"fmt"

	"github.com/timpalpant/go-efr/internal/sampling"
)

// DecisionPoint is a navigable position in a game tree in which chance
// outcomes and trivial (single-action) decisions have been collapsed: from
// each decision point, an action leads to a distribution over the next
// non-trivial decision points or terminal histories.
type DecisionPoint interface {
	NumPlayers() int
	NumDistinctActions() int

	// State returns the game state at this decision point, or nil if the
	// decision point does not retain one (the artificial root, and
	// terminals unless they are saved).
	State() State
	InformationState() string
	NumActions() int
	IsRoot() bool
	// PlayerToAct returns the acting player, or NoPlayer if this decision
	// point is not a player decision.
	PlayerToAct() int
	IsTerminal() bool
	// Returns gives each player's utility at a terminal decision point.
	Returns() []float64
	TerminalsAreSaved() bool

	// OutcomeProbabilities returns the probability of each successor of
	// action. The result must not be modified.
	OutcomeProbabilities(action int) []float64
	NumOutcomes(action int) int

	// Apply moves to the given successor of action.
	Apply(action, outcome int)
	// Undo moves to the parent decision point.
	Undo()
	// UndoAll moves to the root.
	UndoAll()
}

// ApplySampledOutcome applies the outcome of action selected by x, a uniform
// random number in [0, 1), and returns its probability.
func ApplySampledOutcome(dp DecisionPoint, action int, x float64) float64 {
	probs := dp.OutcomeProbabilities(action)
	outcome := sampling.SampleIndex(probs, x, 0)
	prob := probs[outcome]
	dp.Apply(action, outcome)
	return prob
}

type outcomes struct {
	indices []int
	probs   []float64
}

func (o *outcomes) push(idx int, prob float64) {
	o.indices = append(o.indices, idx)
	o.probs = append(o.probs, prob)
}

type historyCache struct {
	state    State
	parent   int
	infoKey  string
	player   int
	outcomes []outcomes
	returns  []float64
}

func (h *historyCache) isTerminal() bool {
	return len(h.returns) > 0
}

func newStateCache(state State, parent int) historyCache {
	if state.IsTerminal() {
		return historyCache{
			state:   state,
			parent:  parent,
			player:  NoPlayer,
			returns: state.Returns(),
		}
	}

	player := state.CurrentPlayer()
	if player < 0 {
		panic(fmt.Errorf("decision state has acting player %d", player))
	}

	return historyCache{
		state:   state,
		parent:  parent,
		infoKey: state.InformationState(),
		player:  player,
	}
}

// CacheOption configures a CachedDecisionPoint.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	saveRoot      bool
	saveTerminals bool
}

// SaveRoot retains a chance root as the root decision point rather than
// replacing it with an artificial root.
func SaveRoot() CacheOption {
	return func(o *cacheOptions) { o.saveRoot = true }
}

// SaveTerminals retains the game state of terminal histories.
func SaveTerminals() CacheOption {
	return func(o *cacheOptions) { o.saveTerminals = true }
}

// CachedDecisionPoint implements DecisionPoint by lazily expanding the game
// tree into an append-only arena of histories addressed by index. Node 0 is
// the root.
type CachedDecisionPoint struct {
	numPlayers         int
	numDistinctActions int
	saveTerminals      bool

	idx       int
	histories []historyCache
}

var _ DecisionPoint = &CachedDecisionPoint{}

// NewCachedDecisionPoint returns a decision point positioned at the root of
// the tree starting from root.
func NewCachedDecisionPoint(root State, opts ...CacheOption) *CachedDecisionPoint {
	var o cacheOptions
	for _, opt := range opts {
		opt(&o)
	}

	dp := &CachedDecisionPoint{
		numPlayers:         root.NumPlayers(),
		numDistinctActions: root.NumDistinctActions(),
		saveTerminals:      o.saveTerminals,
	}

	switch {
	case root.IsTerminal():
		if dp.saveTerminals {
			dp.histories = append(dp.histories, newStateCache(root, 0))
		} else {
			dp.histories = append(dp.histories, historyCache{
				player:  NoPlayer,
				returns: root.Returns(),
			})
		}
	case root.IsChanceNode() && o.saveRoot:
		dp.histories = append(dp.histories, historyCache{
			state:    root,
			player:   NoPlayer,
			outcomes: make([]outcomes, 1),
		})
		dp.cacheChance(root, 1.0, 0)
	default:
		dp.histories = append(dp.histories, historyCache{
			player:   NoPlayer,
			outcomes: make([]outcomes, 1),
		})
		dp.recursiveCache(root, 1.0, 0)
	}

	return dp
}

func (dp *CachedDecisionPoint) cacheChance(state State, prob float64, aidx int) {
	for _, outcome := range state.ChanceOutcomes() {
		dp.recursiveCache(state.Child(outcome.Action), prob*outcome.Prob, aidx)
	}
}

func (dp *CachedDecisionPoint) recursiveCache(child State, prob float64, aidx int) {
	if child.IsChanceNode() {
		dp.cacheChance(child, prob, aidx)
		return
	}

	if !child.IsTerminal() {
		actions := child.LegalActions()
		if len(actions) == 0 {
			panic(fmt.Errorf("non-terminal state without legal actions: %v", child))
		} else if len(actions) < 2 {
			dp.recursiveCache(child.Child(actions[0]), prob, aidx)
			return
		}
	} else if !dp.saveTerminals {
		dp.histories[dp.idx].outcomes[aidx].push(len(dp.histories), prob)
		dp.histories = append(dp.histories, historyCache{
			parent:  dp.idx,
			player:  NoPlayer,
			returns: child.Returns(),
		})
		return
	}

	dp.histories[dp.idx].outcomes[aidx].push(len(dp.histories), prob)
	dp.histories = append(dp.histories, newStateCache(child, dp.idx))
}

func (dp *CachedDecisionPoint) cacheOutcomes() {
	h := &dp.histories[dp.idx]
	if h.isTerminal() || len(h.outcomes) > 0 {
		return
	}

	state := h.state
	actions := state.LegalActions()
	h.outcomes = make([]outcomes, len(actions))
	for aidx, action := range actions {
		dp.recursiveCache(state.Child(action), 1.0, aidx)
	}
}

func (dp *CachedDecisionPoint) NumPlayers() int         { return dp.numPlayers }
func (dp *CachedDecisionPoint) NumDistinctActions() int { return dp.numDistinctActions }
func (dp *CachedDecisionPoint) TerminalsAreSaved() bool { return dp.saveTerminals }

func (dp *CachedDecisionPoint) State() State             { return dp.histories[dp.idx].state }
func (dp *CachedDecisionPoint) InformationState() string { return dp.histories[dp.idx].infoKey }
func (dp *CachedDecisionPoint) NumActions() int          { return len(dp.histories[dp.idx].outcomes) }
func (dp *CachedDecisionPoint) IsRoot() bool             { return dp.idx == 0 }
func (dp *CachedDecisionPoint) PlayerToAct() int         { return dp.histories[dp.idx].player }
func (dp *CachedDecisionPoint) IsTerminal() bool         { return dp.histories[dp.idx].isTerminal() }
func (dp *CachedDecisionPoint) Returns() []float64       { return dp.histories[dp.idx].returns }

func (dp *CachedDecisionPoint) OutcomeProbabilities(action int) []float64 {
	return dp.histories[dp.idx].outcomes[action].probs
}

func (dp *CachedDecisionPoint) NumOutcomes(action int) int {
	return len(dp.histories[dp.idx].outcomes[action].indices)
}

func (dp *CachedDecisionPoint) Apply(action, outcome int) {
	dp.idx = dp.histories[dp.idx].outcomes[action].indices[outcome]
	dp.cacheOutcomes()
}

func (dp *CachedDecisionPoint) Undo() {
	dp.idx = dp.histories[dp.idx].parent
}

func (dp *CachedDecisionPoint) UndoAll() {
	dp.idx = 0
}

// NumCachedHistories returns the number of histories expanded so far.
func (dp *CachedDecisionPoint) NumCachedHistories() int {
	return len(dp.histories)
}

// Clone returns an independent decision point positioned at the root with a
// copy of the histories expanded so far. The clone and the original may be
// used from different goroutines.
func (dp *CachedDecisionPoint) Clone() *CachedDecisionPoint {
	histories := make([]historyCache, len(dp.histories))
	copy(histories, dp.histories)
	return &CachedDecisionPoint{
		numPlayers:         dp.numPlayers,
		numDistinctActions: dp.numDistinctActions,
		saveTerminals:      dp.saveTerminals,
		histories:          histories,
	}
}

// ForEachDecisionPoint calls f once for each distinct information state of
// player reachable from root, in depth-first order. A negative player
// visits the information states of every player.
func ForEachDecisionPoint(root DecisionPoint, f func(DecisionPoint), player int) {
	seen := make(map[string]struct{})
	if root.NumActions() < 2 {
		for outcome := 0; outcome < root.NumOutcomes(0); outcome++ {
			root.Apply(0, outcome)
			forEachDecisionPoint(seen, root, f, player)
			root.Undo()
		}
	} else {
		forEachDecisionPoint(seen, root, f, player)
	}
}

func forEachDecisionPoint(seen map[string]struct{}, dp DecisionPoint, f func(DecisionPoint), player int) {
	if dp.IsTerminal() {
		return
	}

	if player < 0 || player == dp.PlayerToAct() {
		infoState := dp.InformationState()
		if _, ok := seen[infoState]; !ok {
			f(dp)
			seen[infoState] = struct{}{}
		}
	}

	for a := 0; a < dp.NumActions(); a++ {
		for outcome := 0; outcome < dp.NumOutcomes(a); outcome++ {
			dp.Apply(a, outcome)
			forEachDecisionPoint(seen, dp, f, player)
			dp.Undo()
		}
	}
}

// NumStates returns the number of distinct information states of player.
func NumStates(root DecisionPoint, player int) int {
	count := 0
	ForEachDecisionPoint(root, func(DecisionPoint) { count++ }, player)
	return count
}

// NumStatesWithAction returns, for each action of the game, the number of
// distinct information states of player at which it is legal.
func NumStatesWithAction(root DecisionPoint, player int) []int {
	counts := make([]int, root.NumDistinctActions())
	ForEachDecisionPoint(root, func(dp DecisionPoint) {
		for _, a := range dp.State().LegalActions() {
			counts[a]++
		}
	}, player)
	return counts
}
