package efr

import (
	"math"
	"testing"
)

func TestCounterfactualReachProb(t *testing.T) {
	reachProbs := []float64{0.5, 0.25, 2.0}
	if p := CounterfactualReachProb(reachProbs, 1); p != 1.0 {
		t.Errorf("expected %v, got %v", 1.0, p)
	}

	if p := CounterfactualReachProb(reachProbs, 2); p != 0.125 {
		t.Errorf("expected %v, got %v", 0.125, p)
	}
}

func TestCounterfactualReturns(t *testing.T) {
	returns := CounterfactualReturns([]float64{1, -1}, 0.5, []float64{0.5, 0.25}, 0.5)
	expected := []float64{0.25, -0.5}
	for i := range expected {
		if math.Abs(returns[i]-expected[i]) > 1e-12 {
			t.Errorf("player %d: expected %v, got %v", i, expected[i], returns[i])
		}
	}
}

func TestSafeDivide(t *testing.T) {
	v := []float64{1, 3}
	SafeDivide(v, 4, true)
	if v[0] != 0.25 || v[1] != 0.75 {
		t.Errorf("expected [0.25 0.75], got %v", v)
	}

	v = []float64{0, 0, 0, 0}
	SafeDivide(v, 0, true)
	for _, x := range v {
		if x != 0.25 {
			t.Errorf("expected uniform, got %v", v)
		}
	}

	v = []float64{1, -1}
	SafeDivide(v, 0, false)
	if v[0] != 1 || v[1] != -1 {
		t.Errorf("expected unchanged, got %v", v)
	}
}

func TestMaxPositiveValue(t *testing.T) {
	if x := MaxPositiveValue([]float64{-1, -2}); x != 0 {
		t.Errorf("expected 0, got %v", x)
	}

	if x := MaxPositiveValue([]float64{-1, 3, 2}); x != 3 {
		t.Errorf("expected 3, got %v", x)
	}

	if x := MaxAbs([]float64{-4, 3}); x != 4 {
		t.Errorf("expected 4, got %v", x)
	}
}

func TestAdaNormalHedgeWeights(t *testing.T) {
	weights := []float64{7, 7}
	if z := AdaNormalHedgeWeights(weights, []float64{1, 1}, []float64{0, 0}, 0); z != 0 {
		t.Errorf("expected 0 normalizer without a utility scale, got %v", z)
	}
	if weights[0] != 7 || weights[1] != 7 {
		t.Errorf("weights modified without a utility scale: %v", weights)
	}

	z := AdaNormalHedgeWeights(weights, []float64{0, 0}, []float64{0, 0}, 1)
	expected := 1 - math.Exp(-1.0/3)
	for _, w := range weights {
		if math.Abs(w-expected) > 1e-12 {
			t.Errorf("expected weight %v, got %v", expected, w)
		}
	}
	if math.Abs(z-2*expected) > 1e-12 {
		t.Errorf("expected normalizer %v, got %v", 2*expected, z)
	}

	AdaNormalHedgeWeights(weights, []float64{2, -2}, []float64{2, 2}, 2)
	if !(weights[0] > weights[1]) {
		t.Errorf("expected larger regret to get larger weight: %v", weights)
	}
}
