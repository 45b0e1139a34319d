// Package scheduling provides the Appointment document (atelier rendez-vous)
// and the business-hours planning rules.
package scheduling

import (
	"context"
	"time"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/entity"
	"pneutrack/internal/core/id"
)

// Status defines the appointment lifecycle state.
type Status string

const (
	StatusBooked      Status = "booked"
	StatusRescheduled Status = "rescheduled"
	StatusCancelled   Status = "cancelled"
	StatusDone        Status = "done"
)

// Appointment represents a scheduled workshop slot for a client,
// assigned to one worker and one service bay.
type Appointment struct {
	entity.Document

	// ClientID references the client catalog
	ClientID id.ID `db:"client_id" json:"clientId"`

	// WorkerID references the staff user doing the work
	WorkerID id.ID `db:"worker_id" json:"workerId"`

	// Bay is the service bay number (1-based)
	Bay int `db:"bay" json:"bay"`

	// StartAt / EndAt delimit the slot, half-open [StartAt, EndAt)
	StartAt time.Time `db:"start_at" json:"startAt"`
	EndAt   time.Time `db:"end_at" json:"endAt"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`
}

// NewAppointment creates a new booked appointment.
func NewAppointment(clientID, workerID id.ID, bay int, startAt, endAt time.Time) *Appointment {
	a := &Appointment{
		Document: entity.NewDocument(),
		ClientID: clientID,
		WorkerID: workerID,
		Bay:      bay,
		StartAt:  startAt,
		EndAt:    endAt,
		Status:   StatusBooked,
	}
	a.Date = startAt
	return a
}

// Validate implements entity.Validatable.
func (a *Appointment) Validate(ctx context.Context) error {
	if id.IsNil(a.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if id.IsNil(a.WorkerID) {
		return apperror.NewValidation("worker is required").
			WithDetail("field", "workerId")
	}

	if a.Bay <= 0 {
		return apperror.NewValidation("bay must be positive").
			WithDetail("field", "bay")
	}

	if a.StartAt.IsZero() || a.EndAt.IsZero() {
		return apperror.NewValidation("start and end are required").
			WithDetail("field", "startAt")
	}

	if !a.StartAt.Before(a.EndAt) {
		return apperror.NewValidation("start must be before end").
			WithDetail("startAt", a.StartAt).
			WithDetail("endAt", a.EndAt)
	}

	if !isValidStatus(a.Status) {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(a.Status))
	}

	return nil
}

// Blocks reports whether the appointment occupies its slot.
// Cancelled appointments never block other bookings.
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}

// Overlaps checks the half-open interval overlap with [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && start.Before(a.EndAt)
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusBooked, StatusRescheduled, StatusCancelled, StatusDone:
		return true
	}
	return false
}
