package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

type Formatter struct {
}

// FormatPercent renders two decimals with a % suffix, "N/A" for non-finite input.
func (m *Formatter) FormatPercent(num float64) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return "N/A"
	}

	return decimal.NewFromFloat(num).StringFixed(2) + "%"
}
