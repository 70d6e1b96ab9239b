package models

import "math"

// Round rounds v to the given number of decimals, ties to even. Every rounded number that
// ends up in an AnalysisResult goes through here so stored values stay reproducible.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.RoundToEven(v*p) / p
}
