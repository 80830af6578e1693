package services

// LineInput is one invoice line as submitted by the caller.
type LineInput struct {
	ProductID   uint    `json:"product_id" binding:"required"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// CalculatedLine is a line with its derived total.
type CalculatedLine struct {
	LineInput
	TotalPrice float64
}

// InvoiceTotals carries every derived monetary field for an invoice. The
// three totals are always produced together from the same line set.
type InvoiceTotals struct {
	Lines     []CalculatedLine
	Subtotal  float64
	TaxAmount float64
	Total     float64
}

// CalculateTotals derives per-line totals, subtotal, tax amount and grand
// total from the given lines and tax rate. It is pure: no side effects and
// identical output for identical input. Lines are summed left to right.
func CalculateTotals(lines []LineInput, taxRate float64) (InvoiceTotals, error) {
	if len(lines) == 0 {
		return InvoiceTotals{}, &ValidationError{Field: "items", Err: ErrNoItems}
	}
	if taxRate < 0 {
		return InvoiceTotals{}, &ValidationError{Field: "tax_rate", Err: ErrNegativeTaxRate}
	}

	totals := InvoiceTotals{Lines: make([]CalculatedLine, 0, len(lines))}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return InvoiceTotals{}, &ValidationError{Field: "items.quantity", Err: ErrInvalidQuantity}
		}
		if line.UnitPrice < 0 {
			return InvoiceTotals{}, &ValidationError{Field: "items.unit_price", Err: ErrNegativePrice}
		}
		lineTotal := line.Quantity * line.UnitPrice
		totals.Lines = append(totals.Lines, CalculatedLine{LineInput: line, TotalPrice: lineTotal})
		totals.Subtotal += lineTotal
	}

	totals.TaxAmount = totals.Subtotal * taxRate
	totals.Total = totals.Subtotal + totals.TaxAmount
	return totals, nil
}
