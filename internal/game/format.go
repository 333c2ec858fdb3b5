package game

import (
	"math"
	"strconv"
	"strings"
)

var amountUnits = []struct {
	suffix string
	base   float64
}{
	{"T", 1e12},
	{"B", 1e9},
	{"M", 1e6},
	{"K", 1e3},
}

// FormatAmount renders a counter compactly: whole numbers below 1000, then
// K/M/B/T with two decimals (one from ten units up), trailing zeros dropped.
func FormatAmount(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	if n < 1000 {
		return strconv.FormatFloat(math.Floor(n), 'f', 0, 64)
	}
	for _, u := range amountUnits {
		if n < u.base {
			continue
		}
		prec := 2
		if n >= u.base*10 {
			prec = 1
		}
		out := strconv.FormatFloat(n/u.base, 'f', prec, 64)
		if strings.Contains(out, ".") {
			out = strings.TrimRight(out, "0")
			out = strings.TrimSuffix(out, ".")
		}
		return out + u.suffix
	}
	return strconv.FormatFloat(math.Floor(n), 'f', 0, 64)
}
