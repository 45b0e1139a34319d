package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pneutrack/internal/core/id"
	"pneutrack/internal/core/types"
)

func TestComputeLine(t *testing.T) {
	vat := DefaultVATRate

	tests := []struct {
		name         string
		unitPrice    string
		quantity     int
		discountPct  string
		wantSubtotal string
		wantDiscount string
		wantVAT      string
		wantTotal    string
	}{
		{
			name:      "two tyres with 10 percent discount",
			unitPrice: "100", quantity: 2, discountPct: "10",
			wantSubtotal: "180", wantDiscount: "20",
			wantVAT: "36", wantTotal: "216",
		},
		{
			name:      "no discount",
			unitPrice: "98.50", quantity: 4, discountPct: "0",
			wantSubtotal: "394", wantDiscount: "0",
			wantVAT: "78.8", wantTotal: "472.8",
		},
		{
			name:      "full discount",
			unitPrice: "50", quantity: 1, discountPct: "100",
			wantSubtotal: "0", wantDiscount: "50",
			wantVAT: "0", wantTotal: "0",
		},
		{
			name:      "rounding to cents",
			unitPrice: "19.99", quantity: 3, discountPct: "7.5",
			// gross 59.97, discount 4.50 (rounded from 4.49775)
			wantSubtotal: "55.47", wantDiscount: "4.5",
			wantVAT: "11.09", wantTotal: "66.56",
		},
		{
			name:      "free service line",
			unitPrice: "0", quantity: 1, discountPct: "0",
			wantSubtotal: "0", wantDiscount: "0",
			wantVAT: "0", wantTotal: "0",
		},
		{
			name:      "zero quantity yields zero amounts",
			unitPrice: "100", quantity: 0, discountPct: "10",
			wantSubtotal: "0", wantDiscount: "0",
			wantVAT: "0", wantTotal: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts, err := ComputeLine(
				types.MustMoney(tt.unitPrice),
				tt.quantity,
				types.MustMoney(tt.discountPct),
				vat,
			)
			require.NoError(t, err)

			assert.True(t, amounts.SubtotalHT.Equal(types.MustMoney(tt.wantSubtotal)),
				"subtotal: want %s, got %s", tt.wantSubtotal, amounts.SubtotalHT)
			assert.True(t, amounts.DiscountAmount.Equal(types.MustMoney(tt.wantDiscount)),
				"discount: want %s, got %s", tt.wantDiscount, amounts.DiscountAmount)
			assert.True(t, amounts.VATAmount.Equal(types.MustMoney(tt.wantVAT)),
				"vat: want %s, got %s", tt.wantVAT, amounts.VATAmount)
			assert.True(t, amounts.TotalTTC.Equal(types.MustMoney(tt.wantTotal)),
				"total: want %s, got %s", tt.wantTotal, amounts.TotalTTC)

			// TTC must always equal HT plus VAT.
			assert.True(t, amounts.TotalTTC.Equal(amounts.SubtotalHT.Add(amounts.VATAmount)))
		})
	}
}

func TestComputeLine_Invalid(t *testing.T) {
	vat := DefaultVATRate
	price := types.MustMoney("100")

	t.Run("negative quantity", func(t *testing.T) {
		_, err := ComputeLine(price, -1, types.Zero(), vat)
		require.Error(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := ComputeLine(types.MustMoney("-1"), 1, types.Zero(), vat)
		require.Error(t, err)
	})

	t.Run("discount above 100", func(t *testing.T) {
		_, err := ComputeLine(price, 1, types.MustMoney("101"), vat)
		require.Error(t, err)
	})

	t.Run("negative vat", func(t *testing.T) {
		_, err := ComputeLine(price, 1, types.Zero(), decimal.NewFromFloat(-0.2))
		require.Error(t, err)
	})
}

func TestRecalculateTotals(t *testing.T) {
	inv := NewInvoice(TypeFacture, id.New(), id.New())
	inv.Lines = []InvoiceLine{
		{
			SubtotalHT:     types.MustMoney("180"),
			DiscountAmount: types.MustMoney("20"),
			VATAmount:      types.MustMoney("36"),
			TotalTTC:       types.MustMoney("216"),
		},
		{
			SubtotalHT:     types.MustMoney("25"),
			DiscountAmount: types.Zero(),
			VATAmount:      types.MustMoney("5"),
			TotalTTC:       types.MustMoney("30"),
		},
	}

	inv.RecalculateTotals()

	assert.True(t, inv.TotalHT.Equal(types.MustMoney("205")))
	assert.True(t, inv.TotalDiscount.Equal(types.MustMoney("20")))
	assert.True(t, inv.TotalVAT.Equal(types.MustMoney("41")))
	assert.True(t, inv.TotalTTC.Equal(types.MustMoney("246")))
}
