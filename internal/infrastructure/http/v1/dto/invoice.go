package dto

import (
	"time"

	"pneutrack/internal/core/id"
	"pneutrack/internal/core/types"
	"pneutrack/internal/domain/billing"
)

// --- Request DTOs ---

// InvoiceLineRequest is one line of a facture or devis.
type InvoiceLineRequest struct {
	Kind        string  `json:"kind" binding:"required,oneof=product service"`
	RefID       string  `json:"refId" binding:"required,uuid"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice,omitempty"`
	DiscountPct float64 `json:"discountPct,omitempty"`
}

// CreateInvoiceRequest for creating factures and devis.
type CreateInvoiceRequest struct {
	DocType       string               `json:"docType" binding:"required,oneof=devis facture"`
	ClientID      string               `json:"clientId" binding:"required,uuid"`
	AppointmentID string               `json:"appointmentId,omitempty"`
	Date          *time.Time           `json:"date,omitempty"`
	Comment       string               `json:"comment,omitempty"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity converts the request to a domain invoice.
// userID comes from the authenticated session, never from the body.
func (r *CreateInvoiceRequest) ToEntity(userID id.ID) *billing.Invoice {
	clientID, _ := id.Parse(r.ClientID)

	doc := billing.NewInvoice(billing.DocType(r.DocType), userID, clientID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	if r.AppointmentID != "" {
		if apptID, err := id.Parse(r.AppointmentID); err == nil {
			doc.AppointmentID = &apptID
		}
	}

	applyLines(doc, r.Lines)

	return doc
}

// UpdateInvoiceRequest for modifying documents.
// Document type and payment fields are immutable through this request.
type UpdateInvoiceRequest struct {
	ClientID      *string              `json:"clientId,omitempty"`
	AppointmentID *string              `json:"appointmentId,omitempty"`
	Date          *time.Time           `json:"date,omitempty"`
	Comment       *string              `json:"comment,omitempty"`
	Lines         []InvoiceLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies non-nil fields onto the existing document.
func (r *UpdateInvoiceRequest) ApplyTo(doc *billing.Invoice) {
	if r.ClientID != nil {
		if clientID, err := id.Parse(*r.ClientID); err == nil {
			doc.ClientID = clientID
		}
	}
	if r.AppointmentID != nil {
		if *r.AppointmentID == "" {
			doc.AppointmentID = nil
		} else if apptID, err := id.Parse(*r.AppointmentID); err == nil {
			doc.AppointmentID = &apptID
		}
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	if r.Lines != nil {
		doc.Lines = doc.Lines[:0]
		applyLines(doc, r.Lines)
	}
}

func applyLines(doc *billing.Invoice, lines []InvoiceLineRequest) {
	for _, line := range lines {
		refID, _ := id.Parse(line.RefID)
		doc.AddLine(
			billing.LineKind(line.Kind),
			refID,
			line.Quantity,
			types.NewMoney(line.UnitPrice),
			types.NewMoney(line.DiscountPct),
		)
	}
}

// UpdatePaymentRequest changes the payment status of a facture.
type UpdatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=paye a_payer annule"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// --- Response DTOs ---

// InvoiceLineResponse is one priced line in API responses.
type InvoiceLineResponse struct {
	LineID         string `json:"lineId"`
	LineNo         int    `json:"lineNo"`
	Kind           string `json:"kind"`
	RefID          string `json:"refId"`
	Label          string `json:"label"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unitPrice"`
	DiscountPct    string `json:"discountPct"`
	VATRate        string `json:"vatRate"`
	SubtotalHT     string `json:"subtotalHt"`
	DiscountAmount string `json:"discountAmount"`
	VATAmount      string `json:"vatAmount"`
	TotalTTC       string `json:"totalTtc"`
}

// InvoiceResponse represents a facture or devis in API responses.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	DocType       string                `json:"docType"`
	Date          time.Time             `json:"date"`
	UserID        string                `json:"userId"`
	ClientID      string                `json:"clientId"`
	AppointmentID *string               `json:"appointmentId,omitempty"`
	PaymentStatus string                `json:"paymentStatus"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	TotalHT       string                `json:"totalHt"`
	TotalDiscount string                `json:"totalDiscount"`
	TotalVAT      string                `json:"totalVat"`
	TotalTTC      string                `json:"totalTtc"`
	Comment       string                `json:"comment,omitempty"`
	Lines         []InvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	Version       int                   `json:"version"`
}

// FromInvoice creates a response from the domain invoice.
func FromInvoice(doc *billing.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:            doc.ID.String(),
		Number:        doc.Number,
		DocType:       string(doc.DocType),
		Date:          doc.Date,
		UserID:        doc.UserID.String(),
		ClientID:      doc.ClientID.String(),
		PaymentStatus: string(doc.PaymentStatus),
		PaymentMethod: string(doc.PaymentMethod),
		TotalHT:       doc.TotalHT.StringFixed(2),
		TotalDiscount: doc.TotalDiscount.StringFixed(2),
		TotalVAT:      doc.TotalVAT.StringFixed(2),
		TotalTTC:      doc.TotalTTC.StringFixed(2),
		Comment:       doc.Comment,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		Version:       doc.Version,
	}

	if doc.AppointmentID != nil {
		apptID := doc.AppointmentID.String()
		resp.AppointmentID = &apptID
	}

	resp.Lines = make([]InvoiceLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = InvoiceLineResponse{
			LineID:         line.LineID.String(),
			LineNo:         line.LineNo,
			Kind:           string(line.Kind),
			RefID:          line.RefID.String(),
			Label:          line.Label,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice.StringFixed(2),
			DiscountPct:    line.DiscountPct.StringFixed(2),
			VATRate:        line.VATRate.StringFixed(2),
			SubtotalHT:     line.SubtotalHT.StringFixed(2),
			DiscountAmount: line.DiscountAmount.StringFixed(2),
			VATAmount:      line.VATAmount.StringFixed(2),
			TotalTTC:       line.TotalTTC.StringFixed(2),
		}
	}

	return resp
}

// InvoiceListResponse wraps an invoice listing.
type InvoiceListResponse struct {
	Items      []*InvoiceResponse `json:"items"`
	TotalCount int                `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}
