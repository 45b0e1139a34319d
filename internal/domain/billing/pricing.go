package billing

import (
	"github.com/shopspring/decimal"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/types"
)

// DefaultVATRate is the standard French VAT rate.
var DefaultVATRate = decimal.NewFromFloat(0.20)

// LineAmounts holds the computed amounts of a single line.
// SubtotalHT is net of discount; TotalTTC = SubtotalHT + VAT.
type LineAmounts struct {
	SubtotalHT     types.Money
	DiscountAmount types.Money
	VATAmount      types.Money
	TotalTTC       types.Money
}

// ComputeLine prices one line: gross = unitPrice * quantity,
// discount = gross * discountPct / 100, VAT applies to the net amount.
// All amounts are rounded to 2 decimal places. A zero quantity is a
// valid input and yields all-zero amounts; document-level validation
// decides whether such lines are acceptable.
func ComputeLine(unitPrice types.Money, quantity int, discountPct types.Percent, vatRate decimal.Decimal) (LineAmounts, error) {
	if quantity < 0 {
		return LineAmounts{}, apperror.NewValidation("quantity cannot be negative").
			WithDetail("quantity", quantity)
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, apperror.NewValidation("unit price cannot be negative").
			WithDetail("unitPrice", unitPrice)
	}
	if discountPct.IsNegative() || discountPct.GreaterThan(types.Hundred) {
		return LineAmounts{}, apperror.NewValidation("discount must be between 0 and 100").
			WithDetail("discountPct", discountPct)
	}
	if vatRate.IsNegative() {
		return LineAmounts{}, apperror.NewValidation("VAT rate cannot be negative").
			WithDetail("vatRate", vatRate)
	}

	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discount := gross.Mul(discountPct).Div(types.Hundred).Round(2)
	subtotal := gross.Sub(discount).Round(2)
	vat := subtotal.Mul(vatRate).Round(2)
	total := subtotal.Add(vat)

	return LineAmounts{
		SubtotalHT:     subtotal,
		DiscountAmount: discount,
		VATAmount:      vat,
		TotalTTC:       total,
	}, nil
}
