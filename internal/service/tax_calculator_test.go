package service

import (
	"testing"

	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateGST_IntraState(t *testing.T) {
	testCases := []struct {
		name         string
		taxableBase  decimal.Decimal
		taxRate      decimal.Decimal
		expectedCGST string
		expectedSGST string
		expectedTax  string
	}{
		{
			name:         "standard_18_percent",
			taxableBase:  decimal.NewFromInt(1000),
			taxRate:      decimal.NewFromInt(18),
			expectedCGST: "90",
			expectedSGST: "90",
			expectedTax:  "180",
		},
		{
			name:         "5_percent_on_odd_base",
			taxableBase:  decimal.NewFromFloat(333.33),
			taxRate:      decimal.NewFromInt(5),
			expectedCGST: "8.33",
			expectedSGST: "8.33",
			expectedTax:  "16.66",
		},
		{
			name:         "zero_rate",
			taxableBase:  decimal.NewFromInt(500),
			taxRate:      decimal.Zero,
			expectedCGST: "0",
			expectedSGST: "0",
			expectedTax:  "0",
		},
		{
			name:         "zero_base",
			taxableBase:  decimal.Zero,
			taxRate:      decimal.NewFromInt(18),
			expectedCGST: "0",
			expectedSGST: "0",
			expectedTax:  "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			breakup, err := CalculateGST(tc.taxableBase, tc.taxRate, false)
			assert.NoError(t, err)
			assert.True(t, breakup.CGSTAmount.Equal(decimal.RequireFromString(tc.expectedCGST)),
				"cgst: expected %s got %s", tc.expectedCGST, breakup.CGSTAmount)
			assert.True(t, breakup.SGSTAmount.Equal(decimal.RequireFromString(tc.expectedSGST)),
				"sgst: expected %s got %s", tc.expectedSGST, breakup.SGSTAmount)
			assert.True(t, breakup.IGSTAmount.IsZero())
			assert.True(t, breakup.TotalTax.Equal(decimal.RequireFromString(tc.expectedTax)),
				"total: expected %s got %s", tc.expectedTax, breakup.TotalTax)
		})
	}
}

func TestCalculateGST_InterState(t *testing.T) {
	breakup, err := CalculateGST(decimal.NewFromInt(1000), decimal.NewFromInt(18), true)
	assert.NoError(t, err)
	assert.True(t, breakup.IGSTAmount.Equal(decimal.NewFromInt(180)))
	assert.True(t, breakup.CGSTAmount.IsZero())
	assert.True(t, breakup.SGSTAmount.IsZero())
	assert.True(t, breakup.TotalTax.Equal(decimal.NewFromInt(180)))
	assert.True(t, breakup.IGSTRate.Equal(decimal.NewFromInt(18)))
}

func TestCalculateGST_SplitExclusivity(t *testing.T) {
	intra, err := CalculateGST(decimal.NewFromFloat(847.46), decimal.NewFromInt(18), false)
	assert.NoError(t, err)
	assert.True(t, intra.IGSTAmount.IsZero())
	assert.True(t, intra.CGSTAmount.Add(intra.SGSTAmount).Equal(intra.TotalTax))

	inter, err := CalculateGST(decimal.NewFromFloat(847.46), decimal.NewFromInt(18), true)
	assert.NoError(t, err)
	assert.True(t, inter.CGSTAmount.IsZero())
	assert.True(t, inter.SGSTAmount.IsZero())
	assert.True(t, inter.IGSTAmount.Equal(inter.TotalTax))
}

func TestCalculateGST_InvalidInputs(t *testing.T) {
	_, err := CalculateGST(decimal.NewFromInt(-1), decimal.NewFromInt(18), false)
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = CalculateGST(decimal.NewFromInt(100), decimal.NewFromInt(-5), false)
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = CalculateGST(decimal.NewFromInt(100), decimal.NewFromInt(101), false)
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
