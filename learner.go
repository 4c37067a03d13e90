package efr

import (
	"expvar"
	"math"

	"github.com/golang/glog"

	"github.com/timpalpant/go-efr/internal/f64"
	"github.com/timpalpant/go-efr/internal/policy"
)

var learnerInfoStates = expvar.NewInt("efr.learner_info_states")

// Link maps accumulated regrets to nonnegative deviation weights.
type Link = policy.Link

// ReLULink weights each deviation by its positive regret, as in regret
// matching.
func ReLULink(regrets []float64, yield func(i int, w float64)) {
	for i, r := range regrets {
		yield(i, f64.Relu(r))
	}
}

// AdaNormalHedgeLink returns a link that weights deviations with
// AdaNormalHedge, scaled by the game's utility diameter. The accumulated
// absolute regret of each deviation is approximated by the magnitude of its
// accumulated regret.
func AdaNormalHedgeLink(utilityDiameter float64) Link {
	return func(regrets []float64, yield func(i int, w float64)) {
		weights := make([]float64, len(regrets))
		c := make([]float64, len(regrets))
		for i, r := range regrets {
			c[i] = math.Abs(r)
		}

		AdaNormalHedgeWeights(weights, regrets, c, utilityDiameter)
		for i, w := range weights {
			yield(i, w)
		}
	}
}

// DecisionInfoStore holds the learner record of every information state a
// TabularLearner has updated.
//
// Records returned by Get may be copies: callers must Put a record back
// after modifying it. Implementations backed by external storage panic if
// the storage fails.
type DecisionInfoStore interface {
	Get(infoState string) (*policy.Info, bool)
	Put(infoState string, info *policy.Info)
	Len() int
	// Range calls f for every stored record until f returns false.
	Range(f func(infoState string, info *policy.Info) bool)
	Close() error
}

// MemoryInfoStore is a DecisionInfoStore that keeps records in a map.
type MemoryInfoStore struct {
	infos map[string]*policy.Info
}

var _ DecisionInfoStore = &MemoryInfoStore{}

func NewMemoryInfoStore() *MemoryInfoStore {
	return &MemoryInfoStore{infos: make(map[string]*policy.Info)}
}

func (s *MemoryInfoStore) Get(infoState string) (*policy.Info, bool) {
	info, ok := s.infos[infoState]
	return info, ok
}

func (s *MemoryInfoStore) Put(infoState string, info *policy.Info) {
	s.infos[infoState] = info
}

func (s *MemoryInfoStore) Len() int { return len(s.infos) }

func (s *MemoryInfoStore) Range(f func(infoState string, info *policy.Info) bool) {
	for infoState, info := range s.infos {
		if !f(infoState, info) {
			return
		}
	}
}

func (s *MemoryInfoStore) Close() error { return nil }

// TabularLearner learns an immediate strategy at every information state of
// a single player by minimizing the regret of the behavioral deviations
// selected by its DeviationFamily. TabularLearner implements Policy.
type TabularLearner struct {
	family DeviationFamily
	update RegretUpdate
	link   Link
	infos  DecisionInfoStore
}

var _ Policy = &TabularLearner{}

// LearnerOption configures a TabularLearner.
type LearnerOption func(*TabularLearner)

// WithRegretUpdate replaces the default CumulativeRegret update rule.
func WithRegretUpdate(update RegretUpdate) LearnerOption {
	return func(l *TabularLearner) { l.update = update }
}

// WithLink replaces the default ReLULink.
func WithLink(link Link) LearnerOption {
	return func(l *TabularLearner) { l.link = link }
}

// WithInfoStore keeps learner records in store instead of in memory.
func WithInfoStore(store DecisionInfoStore) LearnerOption {
	return func(l *TabularLearner) { l.infos = store }
}

func NewTabularLearner(family DeviationFamily, opts ...LearnerOption) *TabularLearner {
	l := &TabularLearner{
		family: family,
		update: CumulativeRegret,
		link:   ReLULink,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.infos == nil {
		l.infos = NewMemoryInfoStore()
	}

	return l
}

// NewTabularLearners returns one independent learner per player.
func NewTabularLearners(numPlayers int, family DeviationFamily, opts ...LearnerOption) []*TabularLearner {
	learners := make([]*TabularLearner, numPlayers)
	for i := range learners {
		learners[i] = NewTabularLearner(family, opts...)
	}
	return learners
}

func (l *TabularLearner) Family() DeviationFamily { return l.family }

// NumInfoStates returns the number of information states with a record.
func (l *TabularLearner) NumInfoStates() int { return l.infos.Len() }

// Response implements Policy. Information states that were never updated
// play uniformly at random.
func (l *TabularLearner) Response(state State) []float64 {
	info, ok := l.infos.Get(state.InformationState())
	if !ok {
		return f64.Uniform(len(state.LegalActions()))
	}

	return append([]float64(nil), info.Response()...)
}

type replayEntry struct {
	infoState string
	reach     int // Index into the call's reach list arena.
}

// Update replays a counterfactual value tree of this learner's player from
// its initial information states, updating the record of every information
// state with at least two actions.
func (l *TabularLearner) Update(initialInfoStates []string, tree map[string]*CfValueTreeNode) {
	reachLists := make([]policy.ReachProbs, 1, len(tree)+1)
	reachLists[0] = policy.ReachProbs{Prev: []float64{1.0}, Next: []float64{1.0}}

	stack := make([]replayEntry, 0, len(tree))
	for _, infoState := range initialInfoStates {
		stack = append(stack, replayEntry{infoState, 0})
	}

	nUpdated, nCreated := 0, 0
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := tree[entry.infoState]
		numActions := len(node.Values.V)
		if numActions < 2 {
			for _, child := range node.ChildKeys[0] {
				stack = append(stack, replayEntry{child, entry.reach})
			}
			continue
		}

		pred := reachLists[entry.reach]
		ex := policy.ReachProbs{
			Prev: l.family.ExternalPredecessors(pred.Prev),
			Next: l.family.ExternalPredecessors(pred.Next),
		}
		in := policy.ReachProbs{
			Prev: l.family.InternalPredecessors(pred.Prev),
			Next: l.family.InternalPredecessors(pred.Next),
		}

		info, ok := l.infos.Get(entry.infoState)
		if !ok {
			info = policy.New(numActions, ex.Len(), in.Len())
			nCreated++
		}

		prevPolicy := append([]float64(nil), info.Response()...)
		info.Update(node.Values.V, node.Values.EV, l.update, l.link, ex, in)
		l.infos.Put(entry.infoState, info)
		nUpdated++

		nextPolicy := info.Response()
		for a, children := range node.ChildKeys {
			if len(children) == 0 {
				continue
			}

			reachLists = append(reachLists, policy.ReachProbs{
				Prev: l.family.Successors(pred.Prev, prevPolicy, a),
				Next: l.family.Successors(pred.Next, nextPolicy, a),
			})
			for _, child := range children {
				stack = append(stack, replayEntry{child, len(reachLists) - 1})
			}
		}
	}

	learnerInfoStates.Add(int64(nCreated))
	glog.V(1).Infof("Updated %d information states (%d new)", nUpdated, nCreated)
}

// Clone returns a deep copy of l whose records are kept in memory.
func (l *TabularLearner) Clone() *TabularLearner {
	infos := NewMemoryInfoStore()
	l.infos.Range(func(infoState string, info *policy.Info) bool {
		infos.Put(infoState, info.Clone())
		return true
	})

	return &TabularLearner{
		family: l.family,
		update: l.update,
		link:   l.link,
		infos:  infos,
	}
}

// Close releases the learner's record store.
func (l *TabularLearner) Close() error {
	return l.infos.Close()
}
