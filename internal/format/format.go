// Package format renders money and ratios for display: whole currency units and
// one-decimal percentages.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPercentDecimals is the precision used when none is requested.
const DefaultPercentDecimals = 1

// Currency renders v as whole dollars with thousands separators, e.g. -$1,235.
// Undefined values render as $0.
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0"
	}
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + groupThousands(d.String())
}

// Percent renders a fraction as a percentage, 0.0675 -> 6.8%. The optional argument
// overrides the number of decimals.
func Percent(v float64, decimals ...int) string {
	places := DefaultPercentDecimals
	if len(decimals) > 0 && decimals[0] >= 0 {
		places = decimals[0]
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(int32(places)) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
