package dto

import (
	"time"

	"pneutrack/internal/core/id"
	"pneutrack/internal/domain/scheduling"
)

// --- Request DTOs ---

// CreateAppointmentRequest for booking appointments.
type CreateAppointmentRequest struct {
	ClientID string    `json:"clientId" binding:"required,uuid"`
	WorkerID string    `json:"workerId" binding:"required,uuid"`
	Bay      int       `json:"bay" binding:"required,gt=0"`
	StartAt  time.Time `json:"startAt" binding:"required"`
	EndAt    time.Time `json:"endAt" binding:"required"`
	Comment  string    `json:"comment,omitempty"`
}

// ToEntity converts the request to a domain appointment.
func (r *CreateAppointmentRequest) ToEntity() *scheduling.Appointment {
	clientID, _ := id.Parse(r.ClientID)
	workerID, _ := id.Parse(r.WorkerID)

	appt := scheduling.NewAppointment(clientID, workerID, r.Bay, r.StartAt, r.EndAt)
	appt.Comment = r.Comment
	return appt
}

// UpdateAppointmentRequest for rescheduling appointments.
type UpdateAppointmentRequest struct {
	ClientID *string    `json:"clientId,omitempty"`
	WorkerID *string    `json:"workerId,omitempty"`
	Bay      *int       `json:"bay,omitempty"`
	StartAt  *time.Time `json:"startAt,omitempty"`
	EndAt    *time.Time `json:"endAt,omitempty"`
	Comment  *string    `json:"comment,omitempty"`
}

// ApplyTo applies non-nil fields onto the existing appointment.
func (r *UpdateAppointmentRequest) ApplyTo(appt *scheduling.Appointment) {
	if r.ClientID != nil {
		if clientID, err := id.Parse(*r.ClientID); err == nil {
			appt.ClientID = clientID
		}
	}
	if r.WorkerID != nil {
		if workerID, err := id.Parse(*r.WorkerID); err == nil {
			appt.WorkerID = workerID
		}
	}
	if r.Bay != nil {
		appt.Bay = *r.Bay
	}
	if r.StartAt != nil {
		appt.StartAt = *r.StartAt
		appt.Date = *r.StartAt
	}
	if r.EndAt != nil {
		appt.EndAt = *r.EndAt
	}
	if r.Comment != nil {
		appt.Comment = *r.Comment
	}
}

// --- Response DTOs ---

// AppointmentResponse represents an appointment in API responses.
type AppointmentResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	ClientID  string    `json:"clientId"`
	WorkerID  string    `json:"workerId"`
	Bay       int       `json:"bay"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// FromAppointment creates a response from the domain appointment.
func FromAppointment(appt *scheduling.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:        appt.ID.String(),
		Number:    appt.Number,
		ClientID:  appt.ClientID.String(),
		WorkerID:  appt.WorkerID.String(),
		Bay:       appt.Bay,
		StartAt:   appt.StartAt,
		EndAt:     appt.EndAt,
		Status:    string(appt.Status),
		Comment:   appt.Comment,
		CreatedAt: appt.CreatedAt,
		UpdatedAt: appt.UpdatedAt,
		Version:   appt.Version,
	}
}

// AppointmentListResponse wraps an appointment listing.
type AppointmentListResponse struct {
	Items      []*AppointmentResponse `json:"items"`
	TotalCount int                    `json:"totalCount"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}
