package fundamental

import "math"

// GrowthRate returns the percentage change from initial to last, rounded
// half to even to a whole percent.
func GrowthRate(initial, last float64) (float64, error) {
	if initial == 0 {
		return 0, &ErrInvalidParameter{Name: "initial value", Value: initial, Reason: "must be non-zero"}
	}
	return math.RoundToEven((last - initial) / initial * 100), nil
}
