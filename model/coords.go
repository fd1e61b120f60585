package model

import (
	"math"
	"strconv"
)

// FormatDegrees renders a coordinate rounded to six decimal places
// without trailing zeros, as used in every outgoing URL.
func FormatDegrees(v float64) string {
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		// avoid "-0"
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
