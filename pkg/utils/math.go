package utils

// Ratio returns num/den as a float64. If den is zero, returns 0.
func Ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
