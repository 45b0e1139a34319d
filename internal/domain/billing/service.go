package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
	"pneutrack/internal/core/tx"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/catalogs/product"
	"pneutrack/pkg/logger"
	"pneutrack/pkg/numerator"
)

// Service provides business operations for invoices and quotes.
//
// Every mutating operation runs in a single transaction. Product rows
// touched by a facture are locked with GetForUpdate before the stock
// check, so concurrent factures on the same product serialize.
type Service struct {
	repo         Repository
	products     ProductStore
	prestations  PrestationStore
	clients      ClientStore
	staff        StaffStore
	appointments AppointmentStore
	numerator    *numerator.Service
	txManager    tx.Manager
	vatRate      decimal.Decimal
}

// NewService creates a new billing service.
func NewService(
	repo Repository,
	products ProductStore,
	prestations PrestationStore,
	clients ClientStore,
	staff StaffStore,
	appointments AppointmentStore,
	num *numerator.Service,
	txManager tx.Manager,
	vatRate decimal.Decimal,
) *Service {
	if vatRate.IsZero() {
		vatRate = DefaultVATRate
	}
	return &Service{
		repo:         repo,
		products:     products,
		prestations:  prestations,
		clients:      clients,
		staff:        staff,
		appointments: appointments,
		numerator:    num,
		txManager:    txManager,
		vatRate:      vatRate,
	}
}

// Create creates a new facture or devis.
// A facture decrements product stock and completes a linked appointment.
func (s *Service) Create(ctx context.Context, doc *Invoice) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Allocated inside the transaction so a rollback releases the
		// sequence value and numbers stay gapless.
		if doc.Number == "" {
			number, err := s.nextNumber(ctx, doc.DocType)
			if err != nil {
				return err
			}
			doc.Number = number
		}

		if err := s.priceLines(ctx, doc, doc.IsFacture()); err != nil {
			return err
		}
		if doc.IsFacture() {
			if err := s.consumeStock(ctx, doc.Lines); err != nil {
				return err
			}
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if s.completesAppointment(doc) {
			if err := s.appointments.MarkDone(ctx, *doc.AppointmentID); err != nil {
				return fmt.Errorf("complete appointment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document created",
		"id", doc.ID, "number", doc.Number,
		"type", doc.DocType, "total_ttc", doc.TotalTTC)
	return nil
}

// Modify replaces the header and lines of an existing document.
// The document type cannot change; a devis becomes a facture only
// through ConvertToInvoice. Stock impact of a facture is restored for
// the old lines and applied for the new ones.
func (s *Service) Modify(ctx context.Context, doc *Invoice) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, doc); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}

		if existing.DocType != doc.DocType {
			return apperror.NewValidation("document type cannot be changed").
				WithDetail("docType", doc.DocType).
				WithDetail("hint", "use the convert operation for devis -> facture")
		}

		oldLines, err := s.repo.GetLines(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		doc.Number = existing.Number
		doc.Version = existing.Version
		doc.CreatedAt = existing.CreatedAt
		doc.PaymentStatus = existing.PaymentStatus
		doc.PaymentMethod = existing.PaymentMethod

		if existing.IsFacture() {
			if err := s.restoreStock(ctx, oldLines); err != nil {
				return err
			}
		}

		if err := s.priceLines(ctx, doc, doc.IsFacture()); err != nil {
			return err
		}
		if doc.IsFacture() {
			if err := s.consumeStock(ctx, doc.Lines); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// ConvertToInvoice turns a devis into a facture. One-directional.
// The facture gets a fresh FAC number, stock is decremented, and a
// linked appointment is completed.
func (s *Service) ConvertToInvoice(ctx context.Context, docID id.ID) (*Invoice, error) {
	var converted *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.DocType != TypeDevis {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only a devis can be converted").
				WithDetail("docType", doc.DocType)
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		number, err := s.nextNumber(ctx, TypeFacture)
		if err != nil {
			return err
		}

		doc.DocType = TypeFacture
		doc.Number = number
		doc.PaymentStatus = PaymentPending

		if err := s.consumeStock(ctx, doc.Lines); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if s.completesAppointment(doc) {
			if err := s.appointments.MarkDone(ctx, *doc.AppointmentID); err != nil {
				return fmt.Errorf("complete appointment: %w", err)
			}
		}

		converted = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "devis converted to facture",
		"id", converted.ID, "number", converted.Number)
	return converted, nil
}

// UpdatePayment changes the payment status and method of a facture.
// Does not touch the linked appointment.
func (s *Service) UpdatePayment(ctx context.Context, docID id.ID, status PaymentStatus, method PaymentMethod) (*Invoice, error) {
	if !isValidPaymentStatus(status) {
		return nil, apperror.NewValidation("invalid payment status").
			WithDetail("value", string(status))
	}
	if method != "" && !isValidPaymentMethod(method) {
		return nil, apperror.NewValidation("invalid payment method").
			WithDetail("value", string(method))
	}

	var updated *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.DocType != TypeFacture {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"payment applies only to factures").
				WithDetail("docType", doc.DocType)
		}

		doc.PaymentStatus = status
		if method != "" {
			doc.PaymentMethod = method
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment updated",
		"id", docID, "status", status, "method", method)
	return updated, nil
}

// Delete removes the document permanently.
// Deleting a facture restores the stock its lines consumed.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		if doc.IsFacture() {
			if err := s.restoreStock(ctx, lines); err != nil {
				return err
			}
		}

		if err := s.repo.Delete(ctx, docID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document deleted", "id", docID)
	return nil
}

// GetByID retrieves a document with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves documents with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}

// --- internals ---

func (s *Service) nextNumber(ctx context.Context, docType DocType) (string, error) {
	prefix := "DEV"
	if docType == TypeFacture {
		prefix = "FAC"
	}
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(prefix), nil, time.Now())
	if err != nil {
		return "", fmt.Errorf("generate number: %w", err)
	}
	return number, nil
}

// completesAppointment reports whether issuing this document flips the
// linked appointment to done. A cancelled facture leaves it alone.
func (s *Service) completesAppointment(doc *Invoice) bool {
	return doc.IsFacture() &&
		doc.AppointmentID != nil &&
		doc.PaymentStatus != PaymentCancelled
}

// checkReferences verifies the staff user, client, and linked appointment.
func (s *Service) checkReferences(ctx context.Context, doc *Invoice) error {
	user, err := s.staff.GetByID(ctx, doc.UserID)
	if err != nil {
		return apperror.NewNotFound("user", doc.UserID.String())
	}
	if !user.IsActive {
		return apperror.NewForbidden("user account is disabled")
	}

	cl, err := s.clients.GetByID(ctx, doc.ClientID)
	if err != nil {
		return apperror.NewNotFound("client", doc.ClientID.String())
	}
	if !cl.Active || cl.DeletionMark {
		return apperror.NewValidation("client is inactive").
			WithDetail("clientId", doc.ClientID)
	}

	if doc.AppointmentID != nil {
		exists, err := s.appointments.Exists(ctx, *doc.AppointmentID)
		if err != nil {
			return fmt.Errorf("check appointment: %w", err)
		}
		if !exists {
			return apperror.NewNotFound("appointment", doc.AppointmentID.String())
		}
	}

	return nil
}

// priceLines resolves line references against the catalogs, snapshots
// prices and labels, and computes amounts. When lock is true, product
// rows are locked so the subsequent stock mutation is race-free.
func (s *Service) priceLines(ctx context.Context, doc *Invoice, lock bool) error {
	for i := range doc.Lines {
		line := &doc.Lines[i]

		switch line.Kind {
		case LineProduct:
			prod, err := s.getProduct(ctx, line.RefID, lock)
			if err != nil {
				return err
			}
			if !prod.Active || prod.DeletionMark {
				return apperror.NewValidation("product is inactive").
					WithDetail("productId", line.RefID).
					WithDetail("lineNo", line.LineNo)
			}
			line.Label = prod.Name
			if line.UnitPrice.IsZero() {
				line.UnitPrice = prod.UnitPrice
			}

		case LineService:
			prest, err := s.prestations.GetByID(ctx, line.RefID)
			if err != nil {
				return apperror.NewNotFound("prestation", line.RefID.String())
			}
			if !prest.Active || prest.DeletionMark {
				return apperror.NewValidation("prestation is inactive").
					WithDetail("prestationId", line.RefID).
					WithDetail("lineNo", line.LineNo)
			}
			line.Label = prest.Name
			if line.UnitPrice.IsZero() {
				line.UnitPrice = prest.UnitPrice
			}
		}

		if line.VATRate.IsZero() {
			line.VATRate = s.vatRate
		}

		amounts, err := ComputeLine(line.UnitPrice, line.Quantity, line.DiscountPct, line.VATRate)
		if err != nil {
			return err
		}
		line.SubtotalHT = amounts.SubtotalHT
		line.DiscountAmount = amounts.DiscountAmount
		line.VATAmount = amounts.VATAmount
		line.TotalTTC = amounts.TotalTTC
		if id.IsNil(line.LineID) {
			line.LineID = id.New()
		}
		line.LineNo = i + 1
	}

	doc.RecalculateTotals()
	return nil
}

func (s *Service) getProduct(ctx context.Context, productID id.ID, lock bool) (*product.Product, error) {
	if lock {
		prod, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return prod, nil
	}
	prod, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return prod, nil
}

// consumeStock decrements stock for product lines.
// Caller must have locked the product rows (priceLines with lock=true).
func (s *Service) consumeStock(ctx context.Context, lines []InvoiceLine) error {
	for _, line := range lines {
		if line.Kind != LineProduct {
			continue
		}
		prod, err := s.products.GetForUpdate(ctx, line.RefID)
		if err != nil {
			return apperror.NewNotFound("product", line.RefID.String())
		}
		if prod.Stock < line.Quantity {
			return apperror.NewInsufficientStock(line.RefID.String(), line.Quantity, prod.Stock)
		}
		if err := s.products.AdjustStock(ctx, line.RefID, -line.Quantity); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
	}
	return nil
}

// restoreStock returns stock consumed by the given facture lines.
func (s *Service) restoreStock(ctx context.Context, lines []InvoiceLine) error {
	for _, line := range lines {
		if line.Kind != LineProduct {
			continue
		}
		if err := s.products.AdjustStock(ctx, line.RefID, line.Quantity); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}
	return nil
}
