package utils

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

// HumanCount shortens large counts like asset totals: 950, 4.2K, 1.3M
func HumanCount[N constraints.Integer](input N) string {
	n := float64(input)
	switch {
	case n >= 1e6:
		return strconv.FormatFloat(n/1e6, 'f', 1, 64) + "M"
	case n >= 1e3:
		return strconv.FormatFloat(n/1e3, 'f', 1, 64) + "K"
	}
	return strconv.FormatInt(int64(input), 10)
}
