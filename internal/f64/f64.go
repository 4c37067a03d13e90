// Package f64 implements float64 vector primitives used by the regret
// evaluators and learners.
package f64

import "math"

// ScalUnitary is
//  for i := range x {
//  	x[i] *= alpha
//  }
func ScalUnitary(alpha float64, x []float64) {
	for i := range x {
		x[i] *= alpha
	}
}

// ScalUnitaryTo is
//  for i, v := range x {
//  	dst[i] = alpha * v
//  }
func ScalUnitaryTo(dst []float64, alpha float64, x []float64) {
	for i, v := range x {
		dst[i] = alpha * v
	}
}

// Add is
//  for i, v := range s {
//  	dst[i] += v
//  }
func Add(dst, s []float64) {
	for i, v := range s {
		dst[i] += v
	}
}

// AddConst is
//  for i := range x {
//  	x[i] += alpha
//  }
func AddConst(alpha float64, x []float64) {
	for i := range x {
		x[i] += alpha
	}
}

// Sum is
//  var sum float64
//  for i := range x {
//      sum += x[i]
//  }
func Sum(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum
}

// Uniform returns a new vector of length n with every entry 1/n.
func Uniform(n int) []float64 {
	result := make([]float64, n)
	Fill(1.0/float64(n), result)
	return result
}

// Fill sets every element of x to alpha.
func Fill(alpha float64, x []float64) {
	for i := range x {
		x[i] = alpha
	}
}

// Relu returns max(0, x).
func Relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Square returns x*x.
func Square(x float64) float64 { return x * x }

// MaxAbs returns the largest absolute value in x. x must be non-empty.
func MaxAbs(x []float64) float64 {
	max := math.Abs(x[0])
	for _, v := range x[1:] {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}

// MaxPositive returns the largest element of x, or zero if no element is positive.
func MaxPositive(x []float64) float64 {
	var max float64
	for _, v := range x {
		if v > max {
			max = v
		}
	}
	return max
}
