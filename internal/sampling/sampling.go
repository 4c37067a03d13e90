package sampling

// SampleIndex returns the first index i at which the cumulative probability
// of the epsilon-mixed distribution (epsilon/n + (1-epsilon)*pv[i]) exceeds x.
// If rounding error leaves the cumulative sum at or below x, the last index
// is returned.
func SampleIndex(pv []float64, x, epsilon float64) int {
	n := float64(len(pv))
	var cumProb float64
	for i, p := range pv {
		cumProb += epsilon/n + (1.0-epsilon)*p
		if cumProb > x {
			return i
		}
	}

	return len(pv) - 1
}
