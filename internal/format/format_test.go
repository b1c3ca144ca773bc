package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999.4, "$999"},
		{999.5, "$1,000"},
		{65000, "$65,000"},
		{1249125, "$1,249,125"},
		{-1234.6, "-$1,235"},
		{math.NaN(), "$0"},
		{math.Inf(1), "$0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "input %v", tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "43.0%", Percent(0.43))
	assert.Equal(t, "6.75%", Percent(0.0675, 2))
	assert.Equal(t, "45%", Percent(0.451, 0))
	assert.Equal(t, "0.0%", Percent(math.NaN()))
	assert.Equal(t, "-2.5%", Percent(-0.025))
}
