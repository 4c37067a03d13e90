package swap

import (
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/go-efr/internal/f64"
)

// Tolerance used to determine the numerical rank of the fixed-point system.
const rankCondition = 1e-12

// Weighted accumulates a nonnegatively weighted sum of transformations over
// the same number of actions.
type Weighted struct {
	n           int
	weightSum   float64
	internal    *mat.Dense
	external    []float64
	allExternal bool
}

func NewWeighted(n int) *Weighted {
	return &Weighted{
		n:           n,
		internal:    mat.NewDense(n, n, nil),
		external:    make([]float64, n),
		allExternal: true,
	}
}

func (w *Weighted) NumActions() int    { return w.n }
func (w *Weighted) WeightSum() float64 { return w.weightSum }
func (w *Weighted) AllExternal() bool  { return w.allExternal }

// Add accumulates phi with the given weight.
func (w *Weighted) Add(phi Transformation, weight float64) {
	w.weightSum += weight
	if phi.IsExternal() {
		w.external[phi.Target(0)] += weight
		return
	}

	w.allExternal = false
	for a := 0; a < w.n; a++ {
		target := phi.Target(a)
		w.internal.Set(target, a, w.internal.At(target, a)+weight)
	}
}

// Matrix returns the column-stochastic (up to WeightSum) matrix form of the
// accumulated transformations. Entry (i, j) is the weight moving action j
// onto action i.
func (w *Weighted) Matrix() *mat.Dense {
	m := mat.DenseCopyOf(w.internal)
	for i, ext := range w.external {
		for j := 0; j < w.n; j++ {
			m.Set(i, j, m.At(i, j)+ext)
		}
	}
	return m
}

// FixedPoint writes into dst the mixed strategy π with Mπ/W = π. If no
// weight has been accumulated the uniform distribution is returned.
func (w *Weighted) FixedPoint(dst []float64) []float64 {
	if len(dst) != w.n {
		dst = make([]float64, w.n)
	}

	if !(w.weightSum > 0) {
		f64.Fill(1.0/float64(w.n), dst)
		return dst
	}

	if w.allExternal {
		f64.ScalUnitaryTo(dst, 1.0/w.weightSum, w.external)
		return dst
	}

	// Least-squares solution of [M/W − I; 1ᵀ] π = e_{n+1}.
	m := w.Matrix()
	a := mat.NewDense(w.n+1, w.n, nil)
	for j := 0; j < w.n; j++ {
		for i := 0; i < w.n; i++ {
			a.Set(i, j, m.At(i, j)/w.weightSum)
		}
		a.Set(j, j, a.At(j, j)-1)
		a.Set(w.n, j, 1)
	}
	b := mat.NewVecDense(w.n+1, nil)
	b.SetVec(w.n, 1)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		f64.Fill(1.0/float64(w.n), dst)
		return dst
	}

	var pi mat.VecDense
	svd.SolveVecTo(&pi, b, svd.Rank(rankCondition))
	for i := range dst {
		dst[i] = clip(pi.AtVec(i))
	}

	return dst
}

// Reset clears all accumulated weight.
func (w *Weighted) Reset() {
	w.weightSum = 0
	w.internal.Zero()
	f64.Fill(0, w.external)
	w.allExternal = true
}

func clip(x float64) float64 {
	if x < 0 {
		return 0
	} else if x > 1 {
		return 1
	}
	return x
}
