package ldbstore

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/internal/policy"
	"github.com/timpalpant/go-efr/kuhn"
	"github.com/timpalpant/go-efr/sampling"
)

func TestInfoStore_PutGet(t *testing.T) {
	s, err := New(t.TempDir(), &opt.Options{})
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	info := policy.New(3, 2, 1)
	info.Update([]float64{1, 0, 0}, 0, efr.CumulativeRegret, efr.ReLULink,
		policy.ReachProbs{Prev: []float64{1, 1}, Next: []float64{1, 1}},
		policy.ReachProbs{Prev: []float64{1}, Next: []float64{1}})
	s.Put("a", info)
	s.Put("a", info)
	s.Put("b", policy.New(2, 1, 0))
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, info.Response(), got.Response())
	assert.Equal(t, info.Round(), got.Round())

	keys := make(map[string]bool)
	s.Range(func(infoState string, _ *policy.Info) bool {
		keys[infoState] = true
		return true
	})
	assert.Equal(t, map[string]bool{"a": true, "b": true}, keys)
}

func TestInfoStore_GobReopens(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, &opt.Options{})
	require.NoError(t, err)
	s.Put("a", policy.New(2, 1, 0))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(s))
	require.NoError(t, s.Close())

	var reopened InfoStore
	require.NoError(t, gob.NewDecoder(&buf).Decode(&reopened))
	defer reopened.Close()
	assert.Equal(t, 1, reopened.Len())
}

func TestInfoStore_MatchesMemoryLearner(t *testing.T) {
	s, err := New(t.TempDir(), &opt.Options{})
	require.NoError(t, err)

	root := efr.NewCachedDecisionPoint(kuhn.NewGame().NewInitialState())
	onDisk := efr.NewCfTreeLearnerProfile([]*efr.TabularLearner{
		efr.NewTabularLearner(efr.CausalPartialSequence, efr.WithInfoStore(s)),
		efr.NewTabularLearner(efr.CausalPartialSequence),
	})
	inMemory := efr.NewCfTreeLearnerProfile(efr.NewTabularLearners(2, efr.CausalPartialSequence))
	defer onDisk.Learner(0).Close()

	sampler := sampling.NewNullSampler()
	for i := 0; i < 10; i++ {
		assert.InDelta(t,
			inMemory.UpdateAlternateAndReturnEv(root, sampler),
			onDisk.UpdateAlternateAndReturnEv(root, sampler), 1e-12)
	}

	assert.Equal(t, inMemory.Learner(0).NumInfoStates(), onDisk.Learner(0).NumInfoStates())
	efr.ForEachDecisionPoint(root, func(dp efr.DecisionPoint) {
		assert.InDeltaSlice(t,
			inMemory.Strategy(0).Response(dp.State()),
			onDisk.Strategy(0).Response(dp.State()), 1e-12)
	}, 0)
}
