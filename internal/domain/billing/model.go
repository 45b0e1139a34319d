// Package billing provides the Invoice document (facture / devis) with
// line pricing, stock reconciliation and payment tracking.
package billing

import (
	"context"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/entity"
	"pneutrack/internal/core/id"
	"pneutrack/internal/core/types"
)

// DocType distinguishes quotes from invoices.
type DocType string

const (
	TypeDevis   DocType = "devis"   // quote, never touches stock
	TypeFacture DocType = "facture" // invoice, mutates stock
)

// PaymentStatus tracks invoice settlement.
type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paye"
	PaymentPending   PaymentStatus = "a_payer"
	PaymentCancelled PaymentStatus = "annule"
)

// PaymentMethod is how the invoice was or will be settled.
type PaymentMethod string

const (
	MethodTransfer PaymentMethod = "virement"
	MethodCard     PaymentMethod = "carte"
	MethodCash     PaymentMethod = "especes"
	MethodCheque   PaymentMethod = "cheque"
)

// LineKind is the tagged-variant discriminator for invoice lines.
type LineKind string

const (
	LineProduct LineKind = "product"
	LineService LineKind = "service"
)

// Invoice represents a facture or devis document.
type Invoice struct {
	entity.Document

	// DocType is devis or facture
	DocType DocType `db:"doc_type" json:"docType"`

	// UserID references the staff member who issued the document
	UserID id.ID `db:"user_id" json:"userId"`

	// ClientID references the client catalog
	ClientID id.ID `db:"client_id" json:"clientId"`

	// AppointmentID optionally links the originating appointment
	AppointmentID *id.ID `db:"appointment_id" json:"appointmentId,omitempty"`

	// Payment tracking
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// Totals (calculated from lines)
	TotalHT       types.Money `db:"total_ht" json:"totalHt"`
	TotalDiscount types.Money `db:"total_discount" json:"totalDiscount"`
	TotalVAT      types.Money `db:"total_vat" json:"totalVat"`
	TotalTTC      types.Money `db:"total_ttc" json:"totalTtc"`

	// Table part: billed lines. Snapshots are immutable once persisted.
	Lines []InvoiceLine `db:"-" json:"lines"`
}

// InvoiceLine is one billed position, either a product or a prestation.
// Catalog prices are snapshotted at billing time.
type InvoiceLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Kind selects the referenced catalog
	Kind  LineKind `db:"kind" json:"kind"`
	RefID id.ID    `db:"ref_id" json:"refId"`

	// Label is the snapshotted catalog name
	Label string `db:"label" json:"label"`

	Quantity    int           `db:"quantity" json:"quantity"`
	UnitPrice   types.Money   `db:"unit_price" json:"unitPrice"`
	DiscountPct types.Percent `db:"discount_pct" json:"discountPct"`
	VATRate     types.Percent `db:"vat_rate" json:"vatRate"`

	// Computed amounts
	SubtotalHT     types.Money `db:"subtotal_ht" json:"subtotalHt"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	VATAmount      types.Money `db:"vat_amount" json:"vatAmount"`
	TotalTTC       types.Money `db:"total_ttc" json:"totalTtc"`
}

// NewInvoice creates a new document of the given type.
func NewInvoice(docType DocType, userID, clientID id.ID) *Invoice {
	return &Invoice{
		Document:      entity.NewDocument(),
		DocType:       docType,
		UserID:        userID,
		ClientID:      clientID,
		PaymentStatus: PaymentPending,
		Lines:         make([]InvoiceLine, 0),
	}
}

// AddLine appends a raw line. Amounts are computed by the service
// when the document is priced.
func (inv *Invoice) AddLine(kind LineKind, refID id.ID, quantity int, unitPrice types.Money, discountPct types.Percent) {
	inv.Lines = append(inv.Lines, InvoiceLine{
		LineID:      id.New(),
		LineNo:      len(inv.Lines) + 1,
		Kind:        kind,
		RefID:       refID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		DiscountPct: discountPct,
	})
}

// RecalculateTotals sums the line amounts into the document totals.
func (inv *Invoice) RecalculateTotals() {
	inv.TotalHT = types.Zero()
	inv.TotalDiscount = types.Zero()
	inv.TotalVAT = types.Zero()
	inv.TotalTTC = types.Zero()

	for _, line := range inv.Lines {
		inv.TotalHT = inv.TotalHT.Add(line.SubtotalHT)
		inv.TotalDiscount = inv.TotalDiscount.Add(line.DiscountAmount)
		inv.TotalVAT = inv.TotalVAT.Add(line.VATAmount)
		inv.TotalTTC = inv.TotalTTC.Add(line.TotalTTC)
	}
}

// IsFacture reports whether the document mutates stock.
func (inv *Invoice) IsFacture() bool {
	return inv.DocType == TypeFacture
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidDocType(inv.DocType) {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "docType").
			WithDetail("value", string(inv.DocType))
	}

	if id.IsNil(inv.UserID) {
		return apperror.NewValidation("user is required").
			WithDetail("field", "userId")
	}

	if id.IsNil(inv.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if !isValidPaymentStatus(inv.PaymentStatus) {
		return apperror.NewValidation("invalid payment status").
			WithDetail("field", "paymentStatus").
			WithDetail("value", string(inv.PaymentStatus))
	}

	if inv.PaymentMethod != "" && !isValidPaymentMethod(inv.PaymentMethod) {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(inv.PaymentMethod))
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range inv.Lines {
		if line.Kind != LineProduct && line.Kind != LineService {
			return apperror.NewValidation("invalid line kind").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(line.RefID) {
			return apperror.NewValidation("line reference is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.DiscountPct.IsNegative() || line.DiscountPct.GreaterThan(types.Hundred) {
			return apperror.NewValidation("discount must be between 0 and 100").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

func isValidDocType(t DocType) bool {
	return t == TypeDevis || t == TypeFacture
}

func isValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentCancelled:
		return true
	}
	return false
}

func isValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodTransfer, MethodCard, MethodCash, MethodCheque:
		return true
	}
	return false
}
