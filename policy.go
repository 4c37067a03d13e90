package efr

// Policy maps a decision state to a distribution over its legal actions,
// in the order returned by LegalActions.
type Policy interface {
	Response(state State) []float64
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc func(state State) []float64

func (f PolicyFunc) Response(state State) []float64 { return f(state) }

// ActionProbs pairs the response of policy at state with the legal actions.
func ActionProbs(policy Policy, state State) []ActionProb {
	actions := state.LegalActions()
	response := policy.Response(state)
	result := make([]ActionProb, len(actions))
	for i, a := range actions {
		result[i] = ActionProb{Action: a, Prob: response[i]}
	}

	return result
}

// ActionsAndProbsTable tabulates the response of policy at every
// information state reachable from root.
func ActionsAndProbsTable(root DecisionPoint, policy Policy) map[string][]ActionProb {
	result := make(map[string][]ActionProb)
	ForEachDecisionPoint(root, func(dp DecisionPoint) {
		result[dp.InformationState()] = ActionProbs(policy, dp.State())
	}, AllPlayers)
	return result
}

// MapPolicy implements Policy with a table of (possibly unnormalized) action
// weights keyed by information state. Information states absent from the
// table are played uniformly at random.
type MapPolicy struct {
	table map[string][]float64
}

var _ Policy = &MapPolicy{}

func NewMapPolicy() *MapPolicy {
	return &MapPolicy{table: make(map[string][]float64)}
}

// NewMapPolicyFromTable returns a MapPolicy that takes ownership of table.
func NewMapPolicyFromTable(table map[string][]float64) *MapPolicy {
	return &MapPolicy{table: table}
}

// UniformRandomPolicy plays every legal action with equal probability.
func UniformRandomPolicy() *MapPolicy {
	return NewMapPolicy()
}

// Response implements Policy. Stored weights that sum to more or less than
// exactly 1 are normalized; weights summing to 0 yield the uniform
// distribution. Weights with a NaN sum are returned unchanged.
func (mp *MapPolicy) Response(state State) []float64 {
	weights, ok := mp.table[state.InformationState()]
	if !ok {
		n := len(state.LegalActions())
		result := make([]float64, n)
		for i := range result {
			result[i] = 1.0 / float64(n)
		}
		return result
	}

	result := append([]float64(nil), weights...)
	z := 0.0
	for _, w := range result {
		z += w
	}

	if z > 1.0 || z < 1.0 {
		SafeDivide(result, z, true)
	}

	return result
}

// Set replaces the weights of infoState.
func (mp *MapPolicy) Set(infoState string, weights []float64) {
	mp.table[infoState] = weights
}

// Get returns the stored weights of infoState, if any.
func (mp *MapPolicy) Get(infoState string) ([]float64, bool) {
	weights, ok := mp.table[infoState]
	return weights, ok
}

func (mp *MapPolicy) Len() int { return len(mp.table) }

// Clone returns a deep copy of mp.
func (mp *MapPolicy) Clone() *MapPolicy {
	table := make(map[string][]float64, len(mp.table))
	for k, v := range mp.table {
		table[k] = append([]float64(nil), v...)
	}
	return &MapPolicy{table: table}
}

// Avg adds weight times the sequence weights of other to the table, for the
// information states of players in playerIndicator. Repeated calls
// accumulate the average strategy of a sequence of policies. root must be
// positioned at the root of a tree whose first action enumerates the
// initial decision points.
func (mp *MapPolicy) Avg(other Policy, root DecisionPoint, weight float64, playerIndicator int) {
	reachProbs := make([]float64, root.NumPlayers())
	for i := range reachProbs {
		reachProbs[i] = 1.0
	}

	seqProbs := make(map[string][]float64)
	for outcome := 0; outcome < root.NumOutcomes(0); outcome++ {
		root.Apply(0, outcome)
		accumulateSeqProbs(seqProbs, reachProbs, other, root, playerIndicator)
		root.Undo()
	}

	for infoState, probs := range seqProbs {
		weights, ok := mp.table[infoState]
		if !ok {
			weights = make([]float64, len(probs))
			mp.table[infoState] = weights
		}

		for a, p := range probs {
			weights[a] += weight * p
		}
	}
}

func accumulateSeqProbs(seqProbs map[string][]float64, reachProbs []float64,
	policy Policy, dp DecisionPoint, playerIndicator int) {
	if dp.IsTerminal() {
		return
	}

	player := dp.PlayerToAct()
	reachProb := reachProbs[player]
	response := policy.Response(dp.State())

	infoState := dp.InformationState()
	if _, ok := seqProbs[infoState]; !ok && PlayerInSet(player, playerIndicator) {
		probs := make([]float64, len(response))
		for a, p := range response {
			probs[a] = reachProb * p
		}
		seqProbs[infoState] = probs
	}

	for a, p := range response {
		for outcome := 0; outcome < dp.NumOutcomes(a); outcome++ {
			reachProbs[player] = reachProb * p
			dp.Apply(a, outcome)
			accumulateSeqProbs(seqProbs, reachProbs, policy, dp, playerIndicator)
			dp.Undo()
		}
	}

	reachProbs[player] = reachProb
}

// Profile assigns a policy to each player. It implements Policy by
// delegating to the policy of the acting player.
type Profile struct {
	policies []Policy
}

var _ Policy = &Profile{}

func NewProfile(policies ...Policy) *Profile {
	return &Profile{policies: policies}
}

func (p *Profile) NumPlayers() int { return len(p.policies) }

// Player returns the policy of player i.
func (p *Profile) Player(i int) Policy { return p.policies[i] }

func (p *Profile) Response(state State) []float64 {
	return p.policies[state.CurrentPlayer()].Response(state)
}

// WithSubstitute returns a new profile in which player plays policy and
// every other player plays as in p.
func (p *Profile) WithSubstitute(policy Policy, player int) *Profile {
	policies := append([]Policy(nil), p.policies...)
	policies[player] = policy
	return &Profile{policies: policies}
}
