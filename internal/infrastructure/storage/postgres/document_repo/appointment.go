package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/scheduling"
	"pneutrack/internal/infrastructure/storage/postgres"
)

// AppointmentRepo is the PostgreSQL repository for workshop appointments.
type AppointmentRepo struct {
	*BaseDocumentRepo[*scheduling.Appointment]
}

var appointmentColumns = postgres.ExtractDBColumns[scheduling.Appointment]()

// NewAppointmentRepo creates a new appointment repository.
func NewAppointmentRepo(txm *postgres.TxManager) *AppointmentRepo {
	return &AppointmentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			"doc_appointments",
			appointmentColumns,
			func() *scheduling.Appointment { return &scheduling.Appointment{} },
		),
	}
}

// FindOverlapping returns appointments that share the worker or the bay
// and intersect the [start, end) interval. Cancelled appointments do not
// block and are excluded. excludeID skips the appointment being modified
// (pass id.Nil to check all).
func (r *AppointmentRepo) FindOverlapping(ctx context.Context, workerID id.ID, bay int, start, end time.Time, excludeID id.ID) ([]scheduling.Appointment, error) {
	q := r.baseSelect().
		Where(squirrel.NotEq{"status": scheduling.StatusCancelled}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{
			squirrel.Eq{"worker_id": workerID},
			squirrel.Eq{"bay": bay},
		}).
		Where(squirrel.Lt{"start_at": end}).
		Where(squirrel.Gt{"end_at": start})

	if !id.IsNil(excludeID) {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query: %w", err)
	}

	var items []scheduling.Appointment
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find overlapping: %w", err)
	}

	return items, nil
}

// List retrieves appointments with scheduling-specific filtering.
func (r *AppointmentRepo) List(ctx context.Context, filter scheduling.ListFilter) (domain.ListResult[*scheduling.Appointment], error) {
	q := r.baseSelect()

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.WorkerID != nil {
		q = q.Where(squirrel.Eq{"worker_id": *filter.WorkerID})
	}
	if filter.Bay != nil {
		q = q.Where(squirrel.Eq{"bay": *filter.Bay})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"start_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"start_at": *filter.DateTo})
	}

	return r.listWith(ctx, q, filter.ListFilter)
}
