package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal_Exact(t *testing.T) {
	assert.True(t, d("0.30").Equal(LineTotal(d("0.10"), 3)))
	assert.True(t, d("20").Equal(LineTotal(d("5"), 4)))
	assert.True(t, decimal.Zero.Equal(LineTotal(d("9.99"), 0)))
}

func TestSum(t *testing.T) {
	assert.True(t, d("25").Equal(Sum(d("20"), d("5"))))
	assert.True(t, decimal.Zero.Equal(Sum()))
	assert.True(t, d("0.3").Equal(Sum(d("0.1"), d("0.2"))))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5", "$5.00"},
		{"20", "$20.00"},
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"1000000", "$1,000,000.00"},
		{"999.995", "$1,000.00"},
		{"-12.5", "-$12.50"},
		{"0.005", "$0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format("$", d(tt.in)))
		})
	}
	assert.Equal(t, "€7.10", Format("€", d("7.1")))
}

func TestParse(t *testing.T) {
	v, err := Parse(" 12.50 ")
	require.NoError(t, err)
	assert.True(t, d("12.5").Equal(v))

	_, err = Parse("abc")
	assert.Error(t, err)
	_, err = Parse("-1")
	assert.Error(t, err)
}
