package scheduling

import (
	"context"
	"fmt"
	"time"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
	"pneutrack/internal/core/tx"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/auth"
	"pneutrack/pkg/logger"
	"pneutrack/pkg/numerator"
)

// Service provides business operations for appointments.
type Service struct {
	repo      Repository
	staff     StaffStore
	clients   ClientStore
	numerator *numerator.Service
	txManager tx.Manager
	hours     Hours

	// now is injectable for tests
	now func() time.Time
}

// NewService creates a new appointment service.
func NewService(
	repo Repository,
	staff StaffStore,
	clients ClientStore,
	num *numerator.Service,
	txManager tx.Manager,
	hours Hours,
) *Service {
	if hours == nil {
		hours = DefaultHours()
	}
	return &Service{
		repo:      repo,
		staff:     staff,
		clients:   clients,
		numerator: num,
		txManager: txManager,
		hours:     hours,
		now:       time.Now,
	}
}

// Create books a new appointment after validating business rules.
func (s *Service) Create(ctx context.Context, appt *Appointment) error {
	if err := appt.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkRules(ctx, appt); err != nil {
		return err
	}

	if appt.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("RDV"), nil, s.now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		appt.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkOverlap(ctx, appt, id.Nil()); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "appointment booked",
		"id", appt.ID, "number", appt.Number,
		"worker_id", appt.WorkerID, "bay", appt.Bay)
	return nil
}

// Modify reschedules or reassigns an existing appointment.
// The appointment's own slot never conflicts with itself.
func (s *Service) Modify(ctx context.Context, appt *Appointment) error {
	existing, err := s.repo.GetByID(ctx, appt.ID)
	if err != nil {
		return err
	}

	if existing.Status == StatusCancelled || existing.Status == StatusDone {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			fmt.Sprintf("cannot modify %s appointment", existing.Status))
	}

	if err := appt.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkRules(ctx, appt); err != nil {
		return err
	}

	if !existing.StartAt.Equal(appt.StartAt) || !existing.EndAt.Equal(appt.EndAt) {
		appt.Status = StatusRescheduled
	}
	appt.Number = existing.Number
	appt.Version = existing.Version

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkOverlap(ctx, appt, appt.ID); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "appointment updated", "id", appt.ID, "status", appt.Status)
	return nil
}

// Cancel marks the appointment cancelled, freeing its slot.
func (s *Service) Cancel(ctx context.Context, apptID id.ID) error {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return err
	}

	if appt.Status == StatusDone {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"cannot cancel a completed appointment")
	}

	appt.Status = StatusCancelled
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, appt)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "appointment cancelled", "id", apptID)
	return nil
}

// MarkDone marks the appointment completed.
// Called by the billing service when an invoice references the appointment.
func (s *Service) MarkDone(ctx context.Context, apptID id.ID) error {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return err
	}

	if appt.Status == StatusCancelled {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"cannot complete a cancelled appointment")
	}

	appt.Status = StatusDone
	return s.repo.Update(ctx, appt)
}

// GetByID retrieves an appointment.
func (s *Service) GetByID(ctx context.Context, apptID id.ID) (*Appointment, error) {
	return s.repo.GetByID(ctx, apptID)
}

// Exists reports whether the appointment exists.
func (s *Service) Exists(ctx context.Context, apptID id.ID) (bool, error) {
	_, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List retrieves appointments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Appointment], error) {
	return s.repo.List(ctx, filter)
}

// checkRules enforces the planning rules that do not need the repository:
// future start, business hours, client existence, worker role.
func (s *Service) checkRules(ctx context.Context, appt *Appointment) error {
	if appt.StartAt.Before(s.now()) {
		return apperror.NewValidation("appointment cannot start in the past").
			WithDetail("startAt", appt.StartAt)
	}

	if !s.hours.Fits(appt.StartAt, appt.EndAt) {
		return apperror.NewValidation("appointment is outside business hours").
			WithDetail("startAt", appt.StartAt).
			WithDetail("endAt", appt.EndAt)
	}

	exists, err := s.clients.Exists(ctx, appt.ClientID)
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !exists {
		return apperror.NewNotFound("client", appt.ClientID.String())
	}

	worker, err := s.staff.GetByID(ctx, appt.WorkerID)
	if err != nil {
		return apperror.NewNotFound("worker", appt.WorkerID.String())
	}
	if !worker.IsActive {
		return apperror.NewValidation("worker account is disabled").
			WithDetail("workerId", appt.WorkerID)
	}
	if !worker.HasRole(auth.RoleWorker) {
		return apperror.NewValidation("assigned user is not a worker").
			WithDetail("workerId", appt.WorkerID)
	}

	return nil
}

// checkOverlap rejects slots conflicting on the worker or the bay.
func (s *Service) checkOverlap(ctx context.Context, appt *Appointment, excludeID id.ID) error {
	conflicts, err := s.repo.FindOverlapping(ctx, appt.WorkerID, appt.Bay, appt.StartAt, appt.EndAt, excludeID)
	if err != nil {
		return fmt.Errorf("find overlapping: %w", err)
	}

	for _, c := range conflicts {
		if !c.Blocks() {
			continue
		}
		detail := "bay"
		if c.WorkerID == appt.WorkerID {
			detail = "worker"
		}
		return apperror.NewConflict("appointment slot is already taken").
			WithDetail("resource", detail).
			WithDetail("conflictingId", c.ID.String())
	}
	return nil
}
