package efr

import (
	"math"
)

// MultiplicativeCheckpointMarker spaces checkpoints geometrically: after
// Skip iterations, the n-th checkpoint falls on the first iteration t with
// t - Skip >= Factor^n.
type MultiplicativeCheckpointMarker struct {
	Factor float64
	Skip   int
}

// IsCheckpoint reports whether iteration t reaches the n-th checkpoint.
// Every iteration is a checkpoint if Factor is not greater than 1.
func (m MultiplicativeCheckpointMarker) IsCheckpoint(t, n int) bool {
	if !(m.Factor > 1) {
		return true
	}

	if t <= m.Skip {
		return false
	}

	return math.Log(float64(t-m.Skip))/math.Log(m.Factor) >= float64(n)
}
