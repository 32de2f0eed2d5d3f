package utils

import "math"

// RoundMoney rounds to two decimals, the smallest unit the ledgers store.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func ToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func FromCents(c int64) float64 {
	return float64(c) / 100
}

func MaxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func MinFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
