package efr

import (
	"github.com/timpalpant/go-efr/sampling"
)

// AdaptiveProfile is a strategy profile that adapts, one round at a time,
// to the play of other profiles.
type AdaptiveProfile interface {
	// Strategy returns the current policy of player.
	Strategy(player int) Policy
	// UpdateAndReturnEv adapts each player's strategy to play against the
	// other players of compatriots and returns the average over players of
	// the value of the strategy in effect before the update.
	UpdateAndReturnEv(root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64
	// UpdateAlternateAndReturnEv adapts each player's strategy in turn to
	// play against the profile's own other players.
	UpdateAlternateAndReturnEv(root DecisionPoint, s sampling.Sampler) float64
	// Frozen returns a snapshot of the current strategies that does not
	// change with later updates.
	Frozen() *Profile
}

// Ev returns the average over players of the value of p's strategy when
// the other players play as in compatriots.
func Ev(p AdaptiveProfile, root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		v, _ := PolicyValue(root, player, compatriots.WithSubstitute(p.Strategy(player), player), s)
		avg += (v - avg) / float64(player+1)
	}
	return avg
}

// ToMapPolicy tabulates the sequence weights of p's current strategies.
func ToMapPolicy(p AdaptiveProfile, root DecisionPoint) *MapPolicy {
	mp := NewMapPolicy()
	mp.Avg(p.Frozen(), root, 1.0, AllPlayers)
	return mp
}

func notPlayer(player int) int { return -player - 1 }

// CfTreeLearnerProfile updates one TabularLearner per player from the
// counterfactual value tree of the player's current strategy.
type CfTreeLearnerProfile struct {
	learners   []*TabularLearner
	evaluators []*CfValueTreeEvaluator
}

var _ AdaptiveProfile = &CfTreeLearnerProfile{}

func NewCfTreeLearnerProfile(learners []*TabularLearner) *CfTreeLearnerProfile {
	evaluators := make([]*CfValueTreeEvaluator, len(learners))
	for i := range evaluators {
		evaluators[i] = NewCfValueTreeEvaluator(i)
	}

	return &CfTreeLearnerProfile{
		learners:   learners,
		evaluators: evaluators,
	}
}

func (p *CfTreeLearnerProfile) Strategy(player int) Policy { return p.learners[player] }

// Learner returns the learner of player.
func (p *CfTreeLearnerProfile) Learner(player int) *TabularLearner { return p.learners[player] }

func (p *CfTreeLearnerProfile) UpdateAndReturnEv(root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		profile := compatriots.WithSubstitute(p.learners[player], player)
		avg += (p.update(root, s, profile, player) - avg) / float64(player+1)
	}
	return avg
}

func (p *CfTreeLearnerProfile) UpdateAlternateAndReturnEv(root DecisionPoint, s sampling.Sampler) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		avg += (p.update(root, s, p.live(), player) - avg) / float64(player+1)
	}
	return avg
}

func (p *CfTreeLearnerProfile) update(root DecisionPoint, s sampling.Sampler, profile *Profile, player int) float64 {
	result := p.evaluators[player].Evaluate(root, profile, s)
	p.learners[player].Update(result.InitialInfoStates, result.Tree)
	return result.EV
}

func (p *CfTreeLearnerProfile) live() *Profile {
	policies := make([]Policy, len(p.learners))
	for i, l := range p.learners {
		policies[i] = l
	}
	return NewProfile(policies...)
}

func (p *CfTreeLearnerProfile) Frozen() *Profile {
	policies := make([]Policy, len(p.learners))
	for i, l := range p.learners {
		policies[i] = l.Clone()
	}
	return NewProfile(policies...)
}

// mapPolicyProfile holds one MapPolicy per player. Players start out
// uniformly random.
type mapPolicyProfile struct {
	profile []*MapPolicy
}

func newMapPolicyProfile(numPlayers int) mapPolicyProfile {
	profile := make([]*MapPolicy, numPlayers)
	for i := range profile {
		profile[i] = NewMapPolicy()
	}
	return mapPolicyProfile{profile}
}

func (p *mapPolicyProfile) Strategy(player int) Policy { return p.profile[player] }

func (p *mapPolicyProfile) live() *Profile {
	policies := make([]Policy, len(p.profile))
	for i, mp := range p.profile {
		policies[i] = mp
	}
	return NewProfile(policies...)
}

func (p *mapPolicyProfile) Frozen() *Profile {
	policies := make([]Policy, len(p.profile))
	for i, mp := range p.profile {
		policies[i] = mp.Clone()
	}
	return NewProfile(policies...)
}

func (p *mapPolicyProfile) value(root DecisionPoint, s sampling.Sampler, profile *Profile, player int) float64 {
	v, _ := PolicyValue(root, player, profile, s)
	return v
}

// BestResponseProfile replaces each player's strategy with a best response
// to the other players.
type BestResponseProfile struct {
	mapPolicyProfile
}

var _ AdaptiveProfile = &BestResponseProfile{}

func NewBestResponseProfile(numPlayers int) *BestResponseProfile {
	return &BestResponseProfile{newMapPolicyProfile(numPlayers)}
}

// UpdateAndReturnEv returns the average best response value, since the
// value of a best response is known without further evaluation.
func (p *BestResponseProfile) UpdateAndReturnEv(root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		policy, v := NewBestResponse(compatriots).Policy(root, notPlayer(player))
		p.profile[player] = policy
		avg += (v - avg) / float64(player+1)
	}
	return avg
}

func (p *BestResponseProfile) UpdateAlternateAndReturnEv(root DecisionPoint, s sampling.Sampler) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		policy, v := NewBestResponse(p.live()).Policy(root, notPlayer(player))
		p.profile[player] = policy
		avg += (v - avg) / float64(player+1)
	}
	return avg
}

// PolicyIterationProfile plays, each round, a best response to the
// compatriots of the previous round.
type PolicyIterationProfile struct {
	mapPolicyProfile
}

var _ AdaptiveProfile = &PolicyIterationProfile{}

func NewPolicyIterationProfile(numPlayers int) *PolicyIterationProfile {
	return &PolicyIterationProfile{newMapPolicyProfile(numPlayers)}
}

func (p *PolicyIterationProfile) UpdateAndReturnEv(root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		v := p.value(root, s, compatriots.WithSubstitute(p.profile[player], player), player)
		p.profile[player], _ = NewBestResponse(compatriots).Policy(root, notPlayer(player))
		avg += (v - avg) / float64(player+1)
	}
	return avg
}

func (p *PolicyIterationProfile) UpdateAlternateAndReturnEv(root DecisionPoint, s sampling.Sampler) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		v := p.value(root, s, p.live(), player)
		p.profile[player], _ = NewBestResponse(p.live()).Policy(root, notPlayer(player))
		avg += (v - avg) / float64(player+1)
	}
	return avg
}

// AntiPolicyIterationProfile plays a best response to a policy iteration
// learner that is itself trained against the compatriots.
type AntiPolicyIterationProfile struct {
	mapPolicyProfile
	policyIteration *PolicyIterationProfile
}

var _ AdaptiveProfile = &AntiPolicyIterationProfile{}

func NewAntiPolicyIterationProfile(numPlayers int) *AntiPolicyIterationProfile {
	return &AntiPolicyIterationProfile{
		mapPolicyProfile: newMapPolicyProfile(numPlayers),
		policyIteration:  NewPolicyIterationProfile(numPlayers),
	}
}

func (p *AntiPolicyIterationProfile) UpdateAndReturnEv(root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		v := p.value(root, s, compatriots.WithSubstitute(p.profile[player], player), player)
		avg += (v - avg) / float64(player+1)
	}

	p.policyIteration.UpdateAndReturnEv(root, s, compatriots)
	piProfile := p.policyIteration.Frozen()
	for player := 0; player < root.NumPlayers(); player++ {
		p.profile[player], _ = NewBestResponse(piProfile).Policy(root, notPlayer(player))
	}

	return avg
}

func (p *AntiPolicyIterationProfile) UpdateAlternateAndReturnEv(root DecisionPoint, s sampling.Sampler) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		v := p.value(root, s, p.live(), player)
		avg += (v - avg) / float64(player+1)

		p.policyIteration.UpdateAndReturnEv(root, s, p.Frozen())
		p.profile[player], _ = NewBestResponse(p.policyIteration.Frozen()).Policy(root, notPlayer(player))
	}
	return avg
}

// FictitiousPlayProfile plays a best response to the empirical average of
// the compatriots' past play.
type FictitiousPlayProfile struct {
	mapPolicyProfile
	empiricalPlay *MapPolicy
}

var _ AdaptiveProfile = &FictitiousPlayProfile{}

func NewFictitiousPlayProfile(numPlayers int) *FictitiousPlayProfile {
	return &FictitiousPlayProfile{
		mapPolicyProfile: newMapPolicyProfile(numPlayers),
		empiricalPlay:    NewMapPolicy(),
	}
}

func (p *FictitiousPlayProfile) UpdateAndReturnEv(root DecisionPoint, s sampling.Sampler, compatriots *Profile) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		v := p.value(root, s, compatriots.WithSubstitute(p.profile[player], player), player)
		avg += (v - avg) / float64(player+1)
	}

	p.empiricalPlay.Avg(compatriots, root, 1.0, AllPlayers)
	for player := 0; player < root.NumPlayers(); player++ {
		p.profile[player], _ = NewBestResponse(p.empiricalPlay).Policy(root, notPlayer(player))
	}

	return avg
}

func (p *FictitiousPlayProfile) UpdateAlternateAndReturnEv(root DecisionPoint, s sampling.Sampler) float64 {
	avg := 0.0
	for player := 0; player < root.NumPlayers(); player++ {
		profile := p.live()
		v := p.value(root, s, profile, player)
		avg += (v - avg) / float64(player+1)

		p.empiricalPlay.Avg(profile, root, 1.0, notPlayer(player))
		p.profile[player], _ = NewBestResponse(p.empiricalPlay).Policy(root, notPlayer(player))
	}
	return avg
}

// LabeledProfile names a constructor of adaptive profiles.
type LabeledProfile struct {
	Label string
	New   func(numPlayers int, utilityDiameter float64) AdaptiveProfile
}

func learnerProfile(label string, family DeviationFamily) LabeledProfile {
	return LabeledProfile{
		Label: label,
		New: func(numPlayers int, utilityDiameter float64) AdaptiveProfile {
			return NewCfTreeLearnerProfile(NewTabularLearners(numPlayers, family))
		},
	}
}

var (
	efficientProfiles = []LabeledProfile{
		learnerProfile("CFR", ImmediateExternal),
		learnerProfile("CFR_EX+IN", ImmediateExIn),
		learnerProfile("CFR_IN", ImmediateInternal),
		learnerProfile("A-EFR_IN", InformedAction),
		learnerProfile("BPS-EFR", BlindPartialSequence),
		learnerProfile("TIPS-EFR", TwiceInformedPartialSequence),
		learnerProfile("CSPS-EFR", CausalPartialSequence),
		learnerProfile("CFPS-EFR", CounterfactualPartialSequence),
		learnerProfile("CFPS-EFR_EX+IN", CounterfactualPartialSequenceExIn),
		learnerProfile("TIPS-EFR_EX+IN", TwiceInformedPartialSequenceExIn),
	}

	expensiveProfiles = []LabeledProfile{
		learnerProfile("BEHAV-EFR", Behavioral),
	}
)

// ProfilesInGroup returns the catalogue of learner profiles. Group 0 holds
// the efficient EFR instances; any larger group adds behavioral deviation
// EFR, whose cost grows exponentially with the depth of the game.
func ProfilesInGroup(group int) []LabeledProfile {
	profiles := append([]LabeledProfile(nil), efficientProfiles...)
	if group > 0 {
		profiles = append(profiles, expensiveProfiles...)
	}
	return profiles
}

// ProfileLabels returns the labels of profiles in order.
func ProfileLabels(profiles []LabeledProfile) []string {
	labels := make([]string, len(profiles))
	for i, p := range profiles {
		labels[i] = p.Label
	}
	return labels
}
