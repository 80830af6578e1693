package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []LineInput
		taxRate      float64
		wantSubtotal float64
		wantTax      float64
		wantTotal    float64
		wantErr      error
	}{
		{
			name:         "Single Line Default Rate",
			lines:        []LineInput{{ProductID: 1, Quantity: 10, UnitPrice: 10}},
			taxRate:      0.13,
			wantSubtotal: 100,
			wantTax:      13,
			wantTotal:    113,
		},
		{
			name: "Multiple Lines",
			lines: []LineInput{
				{ProductID: 1, Quantity: 2, UnitPrice: 49.99},
				{ProductID: 2, Quantity: 1, UnitPrice: 0.02},
			},
			taxRate:      0.13,
			wantSubtotal: 100,
			wantTax:      13,
			wantTotal:    113,
		},
		{
			name:         "Zero Tax Rate",
			lines:        []LineInput{{ProductID: 1, Quantity: 3, UnitPrice: 5}},
			taxRate:      0,
			wantSubtotal: 15,
			wantTax:      0,
			wantTotal:    15,
		},
		{
			name:         "Free Line Item",
			lines:        []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 0}},
			taxRate:      0.13,
			wantSubtotal: 0,
			wantTax:      0,
			wantTotal:    0,
		},
		{
			name:    "No Items",
			lines:   []LineInput{},
			taxRate: 0.13,
			wantErr: ErrNoItems,
		},
		{
			name:    "Zero Quantity",
			lines:   []LineInput{{ProductID: 1, Quantity: 0, UnitPrice: 10}},
			taxRate: 0.13,
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "Negative Quantity",
			lines:   []LineInput{{ProductID: 1, Quantity: -1, UnitPrice: 10}},
			taxRate: 0.13,
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "Negative Unit Price",
			lines:   []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: -5}},
			taxRate: 0.13,
			wantErr: ErrNegativePrice,
		},
		{
			name:    "Negative Tax Rate",
			lines:   []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
			taxRate: -0.1,
			wantErr: ErrNegativeTaxRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := CalculateTotals(tt.lines, tt.taxRate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidation(err))
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.wantSubtotal, totals.Subtotal, 1e-9)
			assert.InDelta(t, tt.wantTax, totals.TaxAmount, 1e-9)
			assert.InDelta(t, tt.wantTotal, totals.Total, 1e-9)
			assert.Len(t, totals.Lines, len(tt.lines))
			assert.GreaterOrEqual(t, totals.Total, totals.Subtotal)
		})
	}
}

func TestCalculateTotalsPerLineTotals(t *testing.T) {
	totals, err := CalculateTotals([]LineInput{
		{ProductID: 1, Quantity: 4, UnitPrice: 2.5},
		{ProductID: 2, Quantity: 1.5, UnitPrice: 10},
	}, 0.13)
	assert.NoError(t, err)
	assert.InDelta(t, 10, totals.Lines[0].TotalPrice, 1e-9)
	assert.InDelta(t, 15, totals.Lines[1].TotalPrice, 1e-9)
}

func TestCalculateTotalsDeterministic(t *testing.T) {
	lines := []LineInput{
		{ProductID: 1, Quantity: 3, UnitPrice: 0.1},
		{ProductID: 2, Quantity: 7, UnitPrice: 0.2},
	}
	first, err := CalculateTotals(lines, 0.13)
	assert.NoError(t, err)
	second, err := CalculateTotals(lines, 0.13)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidationErrorUnwrap(t *testing.T) {
	err := &ValidationError{Field: "items", Err: ErrNoItems}
	assert.True(t, errors.Is(err, ErrNoItems))
	assert.Contains(t, err.Error(), "items")
}
