package efr

import (
	"expvar"

	"github.com/timpalpant/go-efr/sampling"
)

var decisionHistories = expvar.NewInt("efr.decision_histories")

// CfValues holds the counterfactual value of each action at an information
// state and the counterfactual value of the state under the evaluated policy.
type CfValues struct {
	V  []float64
	EV float64
}

func NewCfValues(numActions int) *CfValues {
	return &CfValues{V: make([]float64, numActions)}
}

// Value returns the counterfactual value of playing policy.
func (c *CfValues) Value(policy []float64) float64 {
	v := 0.0
	for a, p := range policy {
		v += c.V[a] * p
	}
	return v
}

// Regret returns the gain in counterfactual value from playing policy
// instead of the evaluated policy.
func (c *CfValues) Regret(policy []float64) float64 {
	return c.Value(policy) - c.EV
}

func (c *CfValues) Reset() {
	for i := range c.V {
		c.V[i] = 0
	}
	c.EV = 0
}

func (c *CfValues) add(actionValues []float64, ev float64) {
	c.EV += ev
	for a, v := range actionValues {
		c.V[a] += v
	}
}

func getOrCreateCfValues(table map[string]*CfValues, infoState string, numActions int) *CfValues {
	cfv, ok := table[infoState]
	if !ok {
		cfv = NewCfValues(numActions)
		table[infoState] = cfv
	}
	return cfv
}

// RegretsAndReachProbs is the result of PolicyRegretsAndReachProbs.
type RegretsAndReachProbs struct {
	// EV is the (importance-weighted) value of the regret player.
	EV float64
	// Regrets holds the counterfactual values of each information state of
	// the regret player.
	Regrets map[string]*CfValues
	// ReachProbs holds, for each information state of the reach-probability
	// player, the importance-weighted probability of playing each action.
	ReachProbs   map[string][]float64
	NumHistories int
}

// RegretTable is the result of the direct counterfactual regret evaluators.
type RegretTable struct {
	EV           float64
	Regrets      map[string]*CfValues
	NumHistories int
}

type regretAndReachProbEvaluator struct {
	regretPlayer    int
	reachProbPlayer int
	profile         Policy
	sampler         sampling.Sampler

	reachProbs   []float64
	regrets      map[string]*CfValues
	reachTable   map[string][]float64
	numHistories int
}

func newRegretAndReachProbEvaluator(regretPlayer int, profile Policy, sampler sampling.Sampler,
	numPlayers, reachProbPlayer int) *regretAndReachProbEvaluator {
	reachProbs := make([]float64, numPlayers)
	for i := range reachProbs {
		reachProbs[i] = 1.0
	}

	return &regretAndReachProbEvaluator{
		regretPlayer:    regretPlayer,
		reachProbPlayer: reachProbPlayer,
		profile:         profile,
		sampler:         sampler,
		reachProbs:      reachProbs,
		regrets:         make(map[string]*CfValues),
		reachTable:      make(map[string][]float64),
	}
}

func (e *regretAndReachProbEvaluator) saveRegrets(player int) bool {
	return player == e.regretPlayer
}

func (e *regretAndReachProbEvaluator) saveReachProbs(player int) bool {
	return player == e.reachProbPlayer
}

func (e *regretAndReachProbEvaluator) result(ev float64) RegretsAndReachProbs {
	decisionHistories.Add(int64(e.numHistories))
	return RegretsAndReachProbs{
		EV:           ev,
		Regrets:      e.regrets,
		ReachProbs:   e.reachTable,
		NumHistories: e.numHistories,
	}
}

func (e *regretAndReachProbEvaluator) addReachProbs(infoState string, policy []float64, weight float64, skipZero bool) {
	reachProbs, ok := e.reachTable[infoState]
	if !ok {
		reachProbs = make([]float64, len(policy))
		e.reachTable[infoState] = reachProbs
	}

	for a, p := range policy {
		if !skipZero || p > 0 {
			reachProbs[a] += weight * p
		}
	}
}

// PolicyRegretsAndReachProbs walks the cached tree under profile, resolving
// branches with sampler, and returns the counterfactual values of
// regretPlayer together with the sequence reach probabilities of
// reachProbPlayer (pass NoPlayer to skip them).
func PolicyRegretsAndReachProbs(root DecisionPoint, regretPlayer int, profile Policy,
	sampler sampling.Sampler, reachProbPlayer int) RegretsAndReachProbs {
	e := newRegretAndReachProbEvaluator(regretPlayer, profile, sampler, root.NumPlayers(), reachProbPlayer)
	ev := e.counterfactualValue(root, 1.0, 1.0, 0)
	return e.result(ev)
}

// PolicyRegretsAndReachProbsFromState is PolicyRegretsAndReachProbs over
// the raw game states starting at root.
func PolicyRegretsAndReachProbsFromState(root State, regretPlayer int, profile Policy,
	sampler sampling.Sampler, reachProbPlayer int) RegretsAndReachProbs {
	e := newRegretAndReachProbEvaluator(regretPlayer, profile, sampler, root.NumPlayers(), reachProbPlayer)
	ev := e.evaluateState(root, 1.0, 1.0)
	return e.result(ev)
}

func (e *regretAndReachProbEvaluator) evaluateState(state State, chanceIW, playerSamplingProb float64) float64 {
	if state.IsTerminal() {
		return state.Returns()[e.regretPlayer] * chanceIW *
			CounterfactualReachProb(e.reachProbs, e.regretPlayer) / playerSamplingProb
	} else if state.IsChanceNode() {
		outcomes := state.ChanceOutcomes()
		probs := make([]float64, len(outcomes))
		for i, outcome := range outcomes {
			probs[i] = outcome.Prob
		}

		stateValue := 0.0
		e.sampler.SampleChanceNode(probs, func(idx int, iw float64) {
			child := state.Child(outcomes[idx].Action)
			stateValue += e.evaluateState(child, chanceIW*iw, playerSamplingProb)
		})
		return stateValue
	}

	e.numHistories++

	player := state.CurrentPlayer()
	actions := state.LegalActions()
	policy := e.profile.Response(state)
	infoState := state.InformationState()
	myReachProb := e.reachProbs[player]

	if e.saveReachProbs(player) {
		e.addReachProbs(infoState, policy, myReachProb/playerSamplingProb, true)
	}

	stateValue := 0.0
	if e.saveRegrets(player) {
		actionValues := make([]float64, len(actions))
		e.sampler.SampleTargetPlayerActions(policy, func(idx int, prob, samplingProb float64) {
			v := e.evaluateState(state.Child(actions[idx]), chanceIW, playerSamplingProb*samplingProb)
			actionValues[idx] = v
			stateValue += prob * v
		})

		getOrCreateCfValues(e.regrets, infoState, len(actions)).add(actionValues, stateValue)
	} else {
		e.sampler.SampleExternalPlayerActions(policy, func(idx int, prob, samplingProb float64) {
			nextReachProb := myReachProb * prob
			if !e.saveReachProbs(player) || nextReachProb > 0 {
				e.reachProbs[player] = nextReachProb
				stateValue += e.evaluateState(state.Child(actions[idx]), chanceIW, playerSamplingProb*samplingProb)
			}
		})

		e.reachProbs[player] = myReachProb
	}

	return stateValue
}

func (e *regretAndReachProbEvaluator) evaluate(dp DecisionPoint, chanceIW, playerSamplingProb float64) float64 {
	if dp.IsTerminal() {
		return dp.Returns()[e.regretPlayer] * chanceIW *
			CounterfactualReachProb(e.reachProbs, e.regretPlayer) / playerSamplingProb
	}

	e.numHistories++

	player := dp.PlayerToAct()
	policy := e.profile.Response(dp.State())
	infoState := dp.InformationState()
	numActions := dp.NumActions()
	myReachProb := e.reachProbs[player]

	if e.saveReachProbs(player) {
		e.addReachProbs(infoState, policy, myReachProb/playerSamplingProb, false)
	}

	stateValue := 0.0
	if e.saveRegrets(player) {
		actionValues := make([]float64, numActions)
		e.sampler.SampleTargetPlayerActions(policy, func(a int, prob, samplingProb float64) {
			cfv := e.counterfactualValue(dp, chanceIW, playerSamplingProb*samplingProb, a)
			actionValues[a] = cfv
			stateValue += prob * cfv
		})

		getOrCreateCfValues(e.regrets, infoState, numActions).add(actionValues, stateValue)
	} else {
		e.sampler.SampleExternalPlayerActions(policy, func(a int, prob, samplingProb float64) {
			nextReachProb := myReachProb * prob
			if !e.saveReachProbs(player) || nextReachProb > 0 {
				stateValue += e.externalCounterfactualValue(
					dp, chanceIW, playerSamplingProb*samplingProb, a, nextReachProb)
			}
		})

		e.reachProbs[player] = myReachProb
	}

	return stateValue
}

func (e *regretAndReachProbEvaluator) counterfactualValue(dp DecisionPoint, chanceIW, playerSamplingProb float64, a int) float64 {
	v := 0.0
	e.sampler.SampleChanceOutcomes(dp.OutcomeProbabilities(a), func(outcome int, prob, samplingProb float64) {
		dp.Apply(a, outcome)
		v += e.evaluate(dp, chanceIW*prob/samplingProb, playerSamplingProb)
		dp.Undo()
	})
	return v
}

func (e *regretAndReachProbEvaluator) externalCounterfactualValue(dp DecisionPoint, chanceIW, playerSamplingProb float64,
	a int, nextReachProb float64) float64 {
	v := 0.0
	e.sampler.SampleChanceOutcomes(dp.OutcomeProbabilities(a), func(outcome int, prob, samplingProb float64) {
		e.reachProbs[dp.PlayerToAct()] = nextReachProb
		dp.Apply(a, outcome)
		v += e.evaluate(dp, chanceIW*prob/samplingProb, playerSamplingProb)
		dp.Undo()
	})
	return v
}

// regretEvaluator computes counterfactual values with the sampling
// correction folded into a single importance weight.
type regretEvaluator struct {
	regretPlayer int
	profile      Policy
	sampler      sampling.Sampler

	reachProbs   []float64
	regrets      map[string]*CfValues
	numHistories int
}

type backupFunc func(dp DecisionPoint, iw float64) float64

func newRegretEvaluator(regretPlayer int, profile Policy, sampler sampling.Sampler, numPlayers int) *regretEvaluator {
	reachProbs := make([]float64, numPlayers)
	for i := range reachProbs {
		reachProbs[i] = 1.0
	}

	return &regretEvaluator{
		regretPlayer: regretPlayer,
		profile:      profile,
		sampler:      sampler,
		reachProbs:   reachProbs,
		regrets:      make(map[string]*CfValues),
	}
}

func (e *regretEvaluator) terminalValue(dp DecisionPoint, iw float64) float64 {
	return dp.Returns()[e.regretPlayer] * iw * CounterfactualReachProb(e.reachProbs, e.regretPlayer)
}

func (e *regretEvaluator) counterfactualValue(dp DecisionPoint, iw float64, a int, backup backupFunc) float64 {
	v := 0.0
	e.sampler.SampleChanceOutcomes(dp.OutcomeProbabilities(a), func(outcome int, prob, samplingProb float64) {
		dp.Apply(a, outcome)
		v += backup(dp, iw*prob/samplingProb)
		dp.Undo()
	})
	return v
}

func (e *regretEvaluator) counterfactualValueWithReach(dp DecisionPoint, iw float64, a int,
	nextReachProb float64, backup backupFunc) float64 {
	v := 0.0
	e.sampler.SampleChanceOutcomes(dp.OutcomeProbabilities(a), func(outcome int, prob, samplingProb float64) {
		e.reachProbs[dp.PlayerToAct()] = nextReachProb
		dp.Apply(a, outcome)
		v += backup(dp, iw*prob/samplingProb)
		dp.Undo()
	})
	return v
}

func (e *regretEvaluator) counterfactualRegrets(dp DecisionPoint, iw float64) float64 {
	if dp.IsTerminal() {
		return e.terminalValue(dp, iw)
	}

	e.numHistories++

	policy := e.profile.Response(dp.State())
	player := dp.PlayerToAct()

	stateValue := 0.0
	if player == e.regretPlayer {
		actionValues := make([]float64, dp.NumActions())
		e.sampler.SampleTargetPlayerActions(policy, func(a int, prob, samplingProb float64) {
			cfv := e.counterfactualValue(dp, iw/samplingProb, a, e.counterfactualRegrets)
			actionValues[a] = cfv
			stateValue += prob * cfv
		})

		getOrCreateCfValues(e.regrets, dp.InformationState(), dp.NumActions()).add(actionValues, stateValue)
	} else {
		myReachProb := e.reachProbs[player]
		e.sampler.SampleExternalPlayerActions(policy, func(a int, prob, samplingProb float64) {
			nextReachProb := myReachProb * prob
			if nextReachProb > 0 {
				stateValue += e.counterfactualValueWithReach(
					dp, iw/samplingProb, a, nextReachProb, e.counterfactualRegrets)
			}
		})

		e.reachProbs[player] = myReachProb
	}

	return stateValue
}

func (e *regretEvaluator) reachWeightedRegrets(dp DecisionPoint, iw float64) float64 {
	if dp.IsTerminal() {
		return e.terminalValue(dp, iw)
	}

	e.numHistories++

	player := dp.PlayerToAct()
	policy := e.profile.Response(dp.State())
	myReachProb := e.reachProbs[player]

	stateValue := 0.0
	if player == e.regretPlayer {
		actionValues := make([]float64, dp.NumActions())
		e.sampler.SampleTargetPlayerActions(policy, func(a int, prob, samplingProb float64) {
			cfv := e.counterfactualValueWithReach(dp, iw/samplingProb, a, myReachProb*prob, e.reachWeightedRegrets)
			actionValues[a] = myReachProb * cfv
			stateValue += prob * cfv
		})

		getOrCreateCfValues(e.regrets, dp.InformationState(), dp.NumActions()).
			add(actionValues, myReachProb*stateValue)
	} else {
		e.sampler.SampleExternalPlayerActions(policy, func(a int, prob, samplingProb float64) {
			nextReachProb := myReachProb * prob
			if nextReachProb > 0 {
				stateValue += e.counterfactualValueWithReach(
					dp, iw/samplingProb, a, nextReachProb, e.reachWeightedRegrets)
			}
		})
	}

	e.reachProbs[player] = myReachProb
	return stateValue
}

func (e *regretEvaluator) result(ev float64) RegretTable {
	decisionHistories.Add(int64(e.numHistories))
	return RegretTable{EV: ev, Regrets: e.regrets, NumHistories: e.numHistories}
}

// PolicyCounterfactualRegrets returns the counterfactual values of each
// information state of regretPlayer under profile.
func PolicyCounterfactualRegrets(root DecisionPoint, regretPlayer int, profile Policy, sampler sampling.Sampler) RegretTable {
	e := newRegretEvaluator(regretPlayer, profile, sampler, root.NumPlayers())
	ev := e.counterfactualValue(root, 1.0, 0, e.counterfactualRegrets)
	return e.result(ev)
}

// PolicyReachWeightedRegrets is like PolicyCounterfactualRegrets, but the
// values of each information state are weighted by regretPlayer's own
// probability of reaching it.
func PolicyReachWeightedRegrets(root DecisionPoint, regretPlayer int, profile Policy, sampler sampling.Sampler) RegretTable {
	e := newRegretEvaluator(regretPlayer, profile, sampler, root.NumPlayers())
	ev := e.counterfactualValue(root, 1.0, 0, e.reachWeightedRegrets)
	return e.result(ev)
}

type valueEvaluator struct {
	player       int
	profile      Policy
	sampler      sampling.Sampler
	numHistories int
}

func (e *valueEvaluator) actionValue(dp DecisionPoint, iwReachProb float64, a int) float64 {
	v := 0.0
	e.sampler.SampleChanceOutcomes(dp.OutcomeProbabilities(a), func(outcome int, prob, samplingProb float64) {
		dp.Apply(a, outcome)
		v += e.value(dp, iwReachProb*prob/samplingProb)
		dp.Undo()
	})
	return v
}

func (e *valueEvaluator) value(dp DecisionPoint, iwReachProb float64) float64 {
	if dp.IsTerminal() {
		return dp.Returns()[e.player] * iwReachProb
	}

	e.numHistories++

	policy := e.profile.Response(dp.State())
	stateValue := 0.0
	visit := func(a int, prob, samplingProb float64) {
		if prob > 0 {
			stateValue += e.actionValue(dp, prob*iwReachProb/samplingProb, a)
		}
	}

	if dp.PlayerToAct() == e.player {
		e.sampler.SampleTargetPlayerActions(policy, visit)
	} else {
		e.sampler.SampleExternalPlayerActions(policy, visit)
	}

	return stateValue
}

// PolicyValue returns the expected value of player under profile, and the
// number of decision histories visited.
func PolicyValue(root DecisionPoint, player int, profile Policy, sampler sampling.Sampler) (float64, int) {
	e := &valueEvaluator{player: player, profile: profile, sampler: sampler}
	ev := e.actionValue(root, 1.0, 0)
	decisionHistories.Add(int64(e.numHistories))
	return ev, e.numHistories
}
