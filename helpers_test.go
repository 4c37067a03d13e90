package efr_test

import (
	"fmt"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/sampling"
)

var nullSampler = sampling.NewNullSampler()

// alwaysZero plays the first legal action.
var alwaysZero = efr.PolicyFunc(func(state efr.State) []float64 {
	response := make([]float64, len(state.LegalActions()))
	response[0] = 1.0
	return response
})

// alwaysMaxAction plays the last legal action.
var alwaysMaxAction = efr.PolicyFunc(func(state efr.State) []float64 {
	response := make([]float64, len(state.LegalActions()))
	response[len(response)-1] = 1.0
	return response
})

// familyName identifies a deviation family by its registered name, since
// families hold functions and cannot be compared directly.
func familyName(family efr.DeviationFamily) string {
	return fmt.Sprint(family)
}
