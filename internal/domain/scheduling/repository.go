package scheduling

import (
	"context"
	"time"

	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/auth"
)

// Repository defines operations for appointment documents.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, apptID id.ID) (*Appointment, error)
	Update(ctx context.Context, appt *Appointment) error

	// FindOverlapping returns non-cancelled appointments that overlap
	// [start, end) on the same worker or the same bay, excluding excludeID.
	FindOverlapping(ctx context.Context, workerID id.ID, bay int, start, end time.Time, excludeID id.ID) ([]Appointment, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Appointment], error)
}

// ListFilter for filtering appointments.
type ListFilter struct {
	domain.ListFilter

	ClientID *id.ID
	WorkerID *id.ID
	Bay      *int
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}

// StaffStore exposes the staff lookups the scheduler needs.
type StaffStore interface {
	GetByID(ctx context.Context, userID id.ID) (*auth.User, error)
}

// ClientStore exposes the client lookups the scheduler needs.
type ClientStore interface {
	Exists(ctx context.Context, clientID id.ID) (bool, error)
}
