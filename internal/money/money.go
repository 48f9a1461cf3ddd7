// Package money converts between user-facing decimal amounts and the integer
// minor units stored for every balance and transaction amount.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minMinorUnit = decimal.NewFromInt(math.MinInt64)
	maxMinorUnit = decimal.NewFromInt(math.MaxInt64)
)

// ToMinorUnit parses a decimal display value and returns it scaled to the
// currency's minor unit, rounded half away from zero. Empty, malformed or
// out of range input yields 0.
func ToMinorUnit(displayValue string, decimalPlaces int32) int64 {
	minor, ok := ParseMinorUnit(displayValue, decimalPlaces)
	if !ok {
		return 0
	}
	return minor
}

// ParseMinorUnit is ToMinorUnit that reports whether the value was a decimal
// number whose scaled value fits in an int64.
func ParseMinorUnit(displayValue string, decimalPlaces int32) (int64, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(displayValue))
	if err != nil {
		return 0, false
	}
	scaled := value.Shift(decimalPlaces).Round(0)
	if scaled.LessThan(minMinorUnit) || scaled.GreaterThan(maxMinorUnit) {
		return 0, false
	}
	return scaled.IntPart(), true
}

// ToDisplayValue formats minor units with exactly decimalPlaces fraction digits.
func ToDisplayValue(minorUnit int64, decimalPlaces int32) string {
	return decimal.New(minorUnit, -decimalPlaces).StringFixed(decimalPlaces)
}
