// Package tournament runs learning tournaments between adaptive profiles:
// every row profile adapts, iteration after iteration, to the play of every
// column profile, and the expected value and running time of each update is
// recorded.
package tournament

import (
	"expvar"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/sampling"
)

var matchups = expvar.NewInt("tournament.matchups")

// BestResponseLabel labels the best response row of a fixed tournament.
const BestResponseLabel = "BR"

// Config describes a tournament.
type Config struct {
	Game       efr.Game
	Sampler    string
	Seed       uint64
	Iterations int
	// Workers bounds the number of matchups run concurrently.
	Workers  int
	Profiles []efr.LabeledProfile
	// Records, if not nil, receives one record per update.
	Records *zerolog.Logger
}

func (c Config) validate() error {
	if c.Iterations < 1 {
		return errors.Errorf("tournament needs at least one iteration, got %d", c.Iterations)
	}

	if len(c.Profiles) == 0 {
		return errors.New("tournament needs at least one profile")
	}

	if _, err := sampling.New(c.Sampler, c.Seed); err != nil {
		return err
	}

	return nil
}

// samplers returns one sampler per seed, or the first construction error.
func (c Config) samplers(seeds []uint64) ([]sampling.Sampler, error) {
	result := make([]sampling.Sampler, len(seeds))
	for i, seed := range seeds {
		s, err := sampling.New(c.Sampler, seed)
		if err != nil {
			return nil, err
		}
		result[i] = s
	}
	return result, nil
}

func (c Config) utilityDiameter() float64 {
	return c.Game.MaxUtility() - c.Game.MinUtility()
}

func (c Config) record(kind string, t int, row, col string, v, ms float64) {
	if c.Records == nil {
		return
	}

	c.Records.Info().
		Str("tournament", kind).
		Int("t", t).
		Str("learner", row).
		Str("env", col).
		Float64("ev", v).
		Float64("ms", ms).
		Send()
}

// Result holds the expected values and update times of a tournament,
// indexed by row, column and iteration.
type Result struct {
	RowLabels    []string
	ColLabels    []string
	Values       [][][]float64
	Milliseconds [][][]float64
}

func newResult(rowLabels, colLabels []string, iterations int) *Result {
	alloc := func() [][][]float64 {
		m := make([][][]float64, len(rowLabels))
		for row := range m {
			m[row] = make([][]float64, len(colLabels))
			for col := range m[row] {
				m[row][col] = make([]float64, iterations)
			}
		}
		return m
	}

	return &Result{
		RowLabels:    rowLabels,
		ColLabels:    colLabels,
		Values:       alloc(),
		Milliseconds: alloc(),
	}
}

// WriteTable writes one table per iteration with an "(ev, ms)" entry for
// every row and column.
func (r *Result) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "learner/env  %s  \n", strings.Join(r.ColLabels, "  ")); err != nil {
		return err
	}

	iterations := 0
	if len(r.Values) > 0 && len(r.Values[0]) > 0 {
		iterations = len(r.Values[0][0])
	}

	for t := 0; t < iterations; t++ {
		if _, err := fmt.Fprintf(w, "t = %d\n", t); err != nil {
			return err
		}

		for row, label := range r.RowLabels {
			var b strings.Builder
			b.WriteString(label)
			b.WriteString("  ")
			for col := range r.ColLabels {
				fmt.Fprintf(&b, "(%g, %g)  ", r.Values[row][col][t], r.Milliseconds[row][col][t])
			}
			b.WriteString("\n")
			if _, err := io.WriteString(w, b.String()); err != nil {
				return err
			}
		}
	}

	return nil
}

func elapsedMilliseconds(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// updateOrEv updates p against compatriots, except on the final iteration
// where the value of p is only measured.
func updateOrEv(p efr.AdaptiveProfile, root efr.DecisionPoint, s sampling.Sampler,
	compatriots *efr.Profile, final bool) float64 {
	if final {
		return efr.Ev(p, root, s, compatriots)
	}

	return p.UpdateAndReturnEv(root, s, compatriots)
}

// NumFixedEntries returns the number of table entries a fixed tournament
// between n profiles computes per iteration.
func NumFixedEntries(n int) int { return n * (n + 1) }

// NumSimultaneousEntries returns the number of table entries a
// simultaneous tournament between n profiles computes per iteration.
func NumSimultaneousEntries(n int) int { return (n*n + n) / 2 }

// RunFixed runs a tournament with fixed compatriots: each column profile
// learns in self-play, and every row profile, plus a best response, adapts
// to the column profile's current strategy at every iteration.
func RunFixed(cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	labels := efr.ProfileLabels(cfg.Profiles)
	rowLabels := append(append([]string(nil), labels...), BestResponseLabel)
	result := newResult(rowLabels, labels, cfg.Iterations)
	template := efr.NewCachedDecisionPoint(cfg.Game.NewInitialState(), efr.SaveTerminals())

	seeds := make([]uint64, len(cfg.Profiles))
	for col := range seeds {
		seeds[col] = cfg.Seed + uint64(col)
	}
	samplers, err := cfg.samplers(seeds)
	if err != nil {
		return nil, err
	}

	pool := NewPool(cfg.Workers)
	for col := range cfg.Profiles {
		col := col
		root := template.Clone()
		pool.Go(func() {
			runFixedColumn(cfg, result, root, samplers[col], col)
		})
	}

	pool.Wait()
	return result, nil
}

func runFixedColumn(cfg Config, result *Result, root *efr.CachedDecisionPoint, sampler sampling.Sampler, col int) {
	numPlayers := root.NumPlayers()
	utilityDiameter := cfg.utilityDiameter()
	colProfile := cfg.Profiles[col].New(numPlayers, utilityDiameter)
	rows := make([]efr.AdaptiveProfile, 0, len(cfg.Profiles)+1)
	for _, p := range cfg.Profiles {
		rows = append(rows, p.New(numPlayers, utilityDiameter))
	}
	rows = append(rows, efr.NewBestResponseProfile(numPlayers))

	for t := 0; t < cfg.Iterations; t++ {
		final := t == cfg.Iterations-1
		frozen := colProfile.Frozen()
		for row, p := range rows {
			start := time.Now()
			v := updateOrEv(p, root, sampler, frozen, final)
			ms := elapsedMilliseconds(start)
			result.Values[row][col][t] = v
			result.Milliseconds[row][col][t] = ms
			cfg.record("fixed", t, result.RowLabels[row], result.ColLabels[col], v, ms)
		}

		if !final {
			colProfile.UpdateAndReturnEv(root, sampler, colProfile.Frozen())
		}

		glog.V(2).Infof("%s: finished iteration %d", result.ColLabels[col], t)
	}

	matchups.Add(int64(len(rows)))
	glog.V(1).Infof("Finished fixed matchups against %s", result.ColLabels[col])
}

// RunSimultaneous runs a tournament in which every pair of profiles learns
// simultaneously, each adapting to the other's strategy of the previous
// iteration. Diagonal entries average the values of the two copies.
func RunSimultaneous(cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	labels := efr.ProfileLabels(cfg.Profiles)
	n := len(labels)
	result := newResult(labels, labels, cfg.Iterations)
	template := efr.NewCachedDecisionPoint(cfg.Game.NewInitialState(), efr.SaveTerminals())

	var seeds []uint64
	for col := 0; col < n; col++ {
		for row := col; row < n; row++ {
			seeds = append(seeds, cfg.Seed+uint64(row*n+col))
		}
	}
	samplers, err := cfg.samplers(seeds)
	if err != nil {
		return nil, err
	}

	pool := NewPool(cfg.Workers)
	i := 0
	for col := 0; col < n; col++ {
		for row := col; row < n; row++ {
			row, col, sampler := row, col, samplers[i]
			i++
			root := template.Clone()
			pool.Go(func() {
				runSimultaneousPair(cfg, result, root, sampler, row, col)
			})
		}
	}

	pool.Wait()
	return result, nil
}

func runSimultaneousPair(cfg Config, result *Result, root *efr.CachedDecisionPoint,
	sampler sampling.Sampler, row, col int) {
	numPlayers := root.NumPlayers()
	utilityDiameter := cfg.utilityDiameter()
	rowProfile := cfg.Profiles[row].New(numPlayers, utilityDiameter)
	colProfile := cfg.Profiles[col].New(numPlayers, utilityDiameter)

	for t := 0; t < cfg.Iterations; t++ {
		final := t == cfg.Iterations-1
		rowFrozen := rowProfile.Frozen()
		colFrozen := colProfile.Frozen()

		start := time.Now()
		v := updateOrEv(rowProfile, root, sampler, colFrozen, final)
		result.Values[row][col][t] = v
		result.Milliseconds[row][col][t] = elapsedMilliseconds(start)

		start = time.Now()
		v = updateOrEv(colProfile, root, sampler, rowFrozen, final)
		result.Values[col][row][t] += v
		result.Milliseconds[col][row][t] += elapsedMilliseconds(start)

		if row == col {
			result.Values[row][row][t] /= 2.0
			result.Milliseconds[row][row][t] /= 2.0
		}

		cfg.record("simultaneous", t, result.RowLabels[row], result.ColLabels[col],
			result.Values[row][col][t], result.Milliseconds[row][col][t])
		if row != col {
			cfg.record("simultaneous", t, result.RowLabels[col], result.ColLabels[row],
				result.Values[col][row][t], result.Milliseconds[col][row][t])
		}
	}

	matchups.Add(1)
	glog.V(1).Infof("Finished simultaneous matchup %s vs %s", result.RowLabels[row], result.ColLabels[col])
}
