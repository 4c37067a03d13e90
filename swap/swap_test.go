package swap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestInternalSwap(t *testing.T) {
	phi := New([]int{0, 2, 2})
	assert.False(t, phi.IsExternal())

	assert.Equal(t, []float64{1, 0, 0}, phi.ApplyAction(0))
	assert.Equal(t, []float64{0, 0, 1}, phi.ApplyAction(1))
	assert.Equal(t, []float64{0, 0, 1}, phi.ApplyAction(2))

	assert.Equal(t, []float64{1, 0, 0}, phi.ApplyPolicy([]float64{1, 0, 0}))
	assert.Equal(t, []float64{0.5, 0, 0.5}, phi.ApplyPolicy([]float64{0.5, 0.5, 0}))
	assert.Equal(t, []float64{0.2, 0, 0.8}, phi.ApplyPolicy([]float64{0.2, 0.3, 0.5}))
}

func TestRegret(t *testing.T) {
	phi := New([]int{0, 2, 2})
	v := []float64{1, -1, 3}
	policy := []float64{0.2, 0.3, 0.5}
	ev := 0.2*1 + 0.3*-1 + 0.5*3

	assert.InDelta(t, 0.3*(3-(-1)), phi.Regret(v, ev, policy), 1e-12)
}

func TestExternal(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			transformations := External(n)
			require.Len(t, transformations, n)

			for a1, phi := range transformations {
				assert.True(t, phi.IsExternal())
				for a2 := 0; a2 < n; a2++ {
					dist := phi.ApplyAction(a2)
					for a3 := 0; a3 < n; a3++ {
						want := 0.0
						if a3 == a1 {
							want = 1.0
						}
						assert.Equal(t, want, dist[a3])
					}
				}
			}
		})
	}
}

func TestInternal(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			transformations := Internal(n)
			require.Len(t, transformations, n*n-n)

			i := 0
			for a1 := 0; a1 < n; a1++ {
				for a2 := 0; a2 < n; a2++ {
					if a1 == a2 {
						continue
					}

					phi := transformations[i]
					i++
					// With two actions every swap sends both to one target.
					assert.Equal(t, n == 2, phi.IsExternal())
					assert.Equal(t, a2, phi.Target(a1))
					for a3 := 0; a3 < n; a3++ {
						want := 1.0
						if a3 == a1 {
							want = 0.0
						}
						assert.Equal(t, want, phi.ApplyAction(a3)[a3])
					}
				}
			}
		})
	}
}

func TestWeighted_Matrix(t *testing.T) {
	sum := NewWeighted(3)
	sum.Add(New([]int{0, 2, 2}), 2.0)
	sum.Add(New([]int{1, 2, 0}), 3.0)

	assert.Equal(t, 5.0, sum.WeightSum())
	want := mat.NewDense(3, 3, []float64{
		2, 0, 3,
		3, 0, 0,
		0, 5, 2,
	})
	assert.True(t, mat.Equal(want, sum.Matrix()))

	sum.Reset()
	assert.Equal(t, 0.0, sum.WeightSum())
	assert.True(t, sum.AllExternal())
	assert.True(t, mat.Equal(mat.NewDense(3, 3, nil), sum.Matrix()))
}

func TestWeighted_FixedPoint(t *testing.T) {
	testCases := []struct {
		name    string
		phis    [][]int
		weights []float64
		want    []float64
	}{
		{
			name:    "internal and swap",
			phis:    [][]int{{0, 2, 2}, {1, 2, 0}},
			weights: []float64{2, 3},
			want:    []float64{0.384615, 0.230769, 0.384615},
		},
		{
			name:    "internal external and swap",
			phis:    [][]int{{0, 2, 2}, {1, 2, 0}, {0, 0, 0}},
			weights: []float64{2, 3, 4},
			want:    []float64{0.636364, 0.212121, 0.151515},
		},
		{
			name:    "all external",
			phis:    [][]int{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}},
			weights: []float64{1, 2, 3},
			want:    []float64{1.0 / 6, 2.0 / 6, 0.5},
		},
		{
			name:    "zero weight",
			phis:    [][]int{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}},
			weights: []float64{0, 0, 0},
			want:    []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sum := NewWeighted(3)
			for i, phi := range tc.phis {
				sum.Add(New(phi), tc.weights[i])
			}

			pi := sum.FixedPoint(nil)
			require.Len(t, pi, 3)
			assert.InDeltaSlice(t, tc.want, pi, 1e-5)

			total := 0.0
			for _, p := range pi {
				total += p
			}
			assert.InDelta(t, 1.0, total, 1e-12)

			if sum.WeightSum() > 0 {
				// π is a fixed point of the normalized transformation.
				var pi2 mat.VecDense
				pi2.MulVec(sum.Matrix(), mat.NewVecDense(3, pi))
				pi2.ScaleVec(1/sum.WeightSum(), &pi2)
				for a := range pi {
					assert.InDelta(t, pi[a], pi2.AtVec(a), 1e-9)
				}
			}
		})
	}
}
