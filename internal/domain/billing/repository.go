package billing

import (
	"context"
	"time"

	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/auth"
	"pneutrack/internal/domain/catalogs/client"
	"pneutrack/internal/domain/catalogs/prestation"
	"pneutrack/internal/domain/catalogs/product"
)

// Repository defines operations for invoice documents.
type Repository interface {
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error

	// Delete removes the document and its lines permanently.
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]InvoiceLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []InvoiceLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// GetForUpdate retrieves the document with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	ClientID      *id.ID
	UserID        *id.ID
	DocType       *DocType
	PaymentStatus *PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
}

// ProductStore exposes the product operations billing needs.
// GetForUpdate and AdjustStock must run inside a transaction.
type ProductStore interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)
	AdjustStock(ctx context.Context, productID id.ID, delta int) error
}

// PrestationStore exposes the prestation lookups billing needs.
type PrestationStore interface {
	GetByID(ctx context.Context, prestationID id.ID) (*prestation.Prestation, error)
}

// ClientStore exposes the client lookups billing needs.
type ClientStore interface {
	GetByID(ctx context.Context, clientID id.ID) (*client.Client, error)
}

// StaffStore exposes the staff lookups billing needs.
type StaffStore interface {
	GetByID(ctx context.Context, userID id.ID) (*auth.User, error)
}

// AppointmentStore exposes the appointment operations billing needs.
type AppointmentStore interface {
	Exists(ctx context.Context, apptID id.ID) (bool, error)
	MarkDone(ctx context.Context, apptID id.ID) error
}
