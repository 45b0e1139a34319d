package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/auth"
	"pneutrack/pkg/numerator"
)

// Monday 2026-03-02, 08:00 shop time.
var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func at(day int, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

// --- fakes ---

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct {
	mu  sync.Mutex
	val int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.val++
	return &seqRow{val: q.val}
}

type fakeApptRepo struct {
	items map[id.ID]*Appointment
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{items: make(map[id.ID]*Appointment)}
}

func (r *fakeApptRepo) Create(ctx context.Context, appt *Appointment) error {
	r.items[appt.ID] = appt
	return nil
}

func (r *fakeApptRepo) GetByID(ctx context.Context, apptID id.ID) (*Appointment, error) {
	appt, ok := r.items[apptID]
	if !ok {
		return nil, apperror.NewNotFound("appointment", apptID.String())
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeApptRepo) Update(ctx context.Context, appt *Appointment) error {
	if _, ok := r.items[appt.ID]; !ok {
		return apperror.NewNotFound("appointment", appt.ID.String())
	}
	r.items[appt.ID] = appt
	return nil
}

func (r *fakeApptRepo) FindOverlapping(ctx context.Context, workerID id.ID, bay int, start, end time.Time, excludeID id.ID) ([]Appointment, error) {
	var out []Appointment
	for _, a := range r.items {
		if a.ID == excludeID || a.Status == StatusCancelled {
			continue
		}
		if a.WorkerID != workerID && a.Bay != bay {
			continue
		}
		if a.Overlaps(start, end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeApptRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Appointment], error) {
	var items []*Appointment
	for _, a := range r.items {
		items = append(items, a)
	}
	return domain.ListResult[*Appointment]{Items: items, TotalCount: int64(len(items))}, nil
}

type fakeStaff struct {
	items map[id.ID]*auth.User
}

func (f *fakeStaff) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	u, ok := f.items[userID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

type fakeClients struct {
	items map[id.ID]bool
}

func (f *fakeClients) Exists(ctx context.Context, clientID id.ID) (bool, error) {
	return f.items[clientID], nil
}

// --- fixture ---

type schedulingFixture struct {
	service *Service
	repo    *fakeApptRepo
	staff   *fakeStaff

	clientID id.ID
	workerID id.ID
}

func newSchedulingFixture(t *testing.T) *schedulingFixture {
	t.Helper()

	worker := auth.NewUser("marc@pneutrack.fr", "hash")
	worker.Roles = []string{auth.RoleWorker}

	clientID := id.New()

	repo := newFakeApptRepo()
	staff := &fakeStaff{items: map[id.ID]*auth.User{worker.ID: worker}}

	service := NewService(
		repo,
		staff,
		&fakeClients{items: map[id.ID]bool{clientID: true}},
		numerator.New(&seqQuerier{}),
		&fakeTxManager{},
		DefaultHours(),
	)
	service.now = func() time.Time { return testNow }

	return &schedulingFixture{
		service:  service,
		repo:     repo,
		staff:    staff,
		clientID: clientID,
		workerID: worker.ID,
	}
}

func (f *schedulingFixture) book(t *testing.T, bay int, start, end time.Time) *Appointment {
	t.Helper()
	appt := NewAppointment(f.clientID, f.workerID, bay, start, end)
	require.NoError(t, f.service.Create(context.Background(), appt))
	return appt
}

// --- tests ---

func TestCreateAppointment(t *testing.T) {
	f := newSchedulingFixture(t)

	appt := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))

	assert.Equal(t, StatusBooked, appt.Status)
	assert.Contains(t, appt.Number, "RDV-")

	stored, err := f.service.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.Number, stored.Number)
}

func TestCreate_BusinessHours(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		ok    bool
	}{
		{"opening slot", at(3, 7, 0), at(3, 8, 0), true},
		{"closing slot", at(3, 18, 0), at(3, 19, 0), true},
		{"before opening", at(3, 6, 59), at(3, 8, 0), false},
		{"past closing", at(3, 18, 30), at(3, 19, 1), false},
		{"sunday closed", at(8, 9, 0), at(8, 10, 0), false},
		{"spans two days", at(4, 18, 0), at(5, 8, 0), false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := NewAppointment(f.clientID, f.workerID, i+10, tt.start, tt.end)
			err := f.service.Create(ctx, appt)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
			}
		})
	}
}

func TestCreate_PastStart(t *testing.T) {
	f := newSchedulingFixture(t)

	appt := NewAppointment(f.clientID, f.workerID, 1, at(2, 7, 30), at(2, 8, 30))
	err := f.service.Create(context.Background(), appt)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_UnknownClient(t *testing.T) {
	f := newSchedulingFixture(t)

	appt := NewAppointment(id.New(), f.workerID, 1, at(2, 9, 0), at(2, 10, 0))
	err := f.service.Create(context.Background(), appt)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_WorkerRoleRequired(t *testing.T) {
	f := newSchedulingFixture(t)

	admin := auth.NewUser("boss@pneutrack.fr", "hash")
	admin.Roles = []string{auth.RoleAdmin}
	f.staff.items[admin.ID] = admin

	appt := NewAppointment(f.clientID, admin.ID, 1, at(2, 9, 0), at(2, 10, 0))
	err := f.service.Create(context.Background(), appt)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_DisabledWorker(t *testing.T) {
	f := newSchedulingFixture(t)

	f.staff.items[f.workerID].IsActive = false

	appt := NewAppointment(f.clientID, f.workerID, 1, at(2, 9, 0), at(2, 10, 0))
	err := f.service.Create(context.Background(), appt)
	require.Error(t, err)
}

func TestCreate_Overlap(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	otherWorker := auth.NewUser("julie@pneutrack.fr", "hash")
	otherWorker.Roles = []string{auth.RoleWorker}
	f.staff.items[otherWorker.ID] = otherWorker

	f.book(t, 1, at(2, 9, 0), at(2, 10, 0))

	t.Run("same worker other bay", func(t *testing.T) {
		appt := NewAppointment(f.clientID, f.workerID, 2, at(2, 9, 30), at(2, 10, 30))
		err := f.service.Create(ctx, appt)
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("same bay other worker", func(t *testing.T) {
		appt := NewAppointment(f.clientID, otherWorker.ID, 1, at(2, 9, 30), at(2, 10, 30))
		err := f.service.Create(ctx, appt)
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("free worker and bay", func(t *testing.T) {
		appt := NewAppointment(f.clientID, otherWorker.ID, 2, at(2, 9, 30), at(2, 10, 30))
		assert.NoError(t, f.service.Create(ctx, appt))
	})

	t.Run("back to back is not a conflict", func(t *testing.T) {
		appt := NewAppointment(f.clientID, f.workerID, 1, at(2, 10, 0), at(2, 11, 0))
		assert.NoError(t, f.service.Create(ctx, appt))
	})
}

func TestCreate_CancelledSlotIsFree(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))
	require.NoError(t, f.service.Cancel(ctx, booked.ID))

	appt := NewAppointment(f.clientID, f.workerID, 1, at(2, 9, 0), at(2, 10, 0))
	assert.NoError(t, f.service.Create(ctx, appt))
}

func TestModify_Reschedule(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))

	// Shifting inside its own slot must not conflict with itself.
	updated := NewAppointment(f.clientID, f.workerID, 1, at(2, 9, 30), at(2, 10, 30))
	updated.ID = booked.ID

	require.NoError(t, f.service.Modify(ctx, updated))
	assert.Equal(t, StatusRescheduled, updated.Status)
	assert.Equal(t, booked.Number, updated.Number)
}

func TestModify_SameSlotKeepsStatus(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))

	updated := NewAppointment(f.clientID, f.workerID, 3, at(2, 9, 0), at(2, 10, 0))
	updated.ID = booked.ID

	require.NoError(t, f.service.Modify(ctx, updated))
	assert.Equal(t, StatusBooked, updated.Status)
	assert.Equal(t, 3, updated.Bay)
}

func TestModify_TerminalStates(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	cancelled := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))
	require.NoError(t, f.service.Cancel(ctx, cancelled.ID))

	done := f.book(t, 2, at(2, 11, 0), at(2, 12, 0))
	require.NoError(t, f.service.MarkDone(ctx, done.ID))

	for _, apptID := range []id.ID{cancelled.ID, done.ID} {
		updated := NewAppointment(f.clientID, f.workerID, 5, at(2, 14, 0), at(2, 15, 0))
		updated.ID = apptID

		err := f.service.Modify(ctx, updated)
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
	}
}

func TestCancel(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))
	require.NoError(t, f.service.Cancel(ctx, booked.ID))

	stored, err := f.service.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestCancel_DoneRejected(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))
	require.NoError(t, f.service.MarkDone(ctx, booked.ID))

	err := f.service.Cancel(ctx, booked.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestMarkDone_CancelledRejected(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))
	require.NoError(t, f.service.Cancel(ctx, booked.ID))

	err := f.service.MarkDone(ctx, booked.ID)
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	booked := f.book(t, 1, at(2, 9, 0), at(2, 10, 0))

	ok, err := f.service.Exists(ctx, booked.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.service.Exists(ctx, id.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppointmentValidate(t *testing.T) {
	clientID, workerID := id.New(), id.New()
	ctx := context.Background()

	t.Run("start must precede end", func(t *testing.T) {
		appt := NewAppointment(clientID, workerID, 1, at(2, 10, 0), at(2, 9, 0))
		require.Error(t, appt.Validate(ctx))

		appt = NewAppointment(clientID, workerID, 1, at(2, 10, 0), at(2, 10, 0))
		require.Error(t, appt.Validate(ctx))
	})

	t.Run("bay must be positive", func(t *testing.T) {
		appt := NewAppointment(clientID, workerID, 0, at(2, 9, 0), at(2, 10, 0))
		require.Error(t, appt.Validate(ctx))
	})

	t.Run("client and worker required", func(t *testing.T) {
		appt := NewAppointment(id.Nil(), workerID, 1, at(2, 9, 0), at(2, 10, 0))
		require.Error(t, appt.Validate(ctx))

		appt = NewAppointment(clientID, id.Nil(), 1, at(2, 9, 0), at(2, 10, 0))
		require.Error(t, appt.Validate(ctx))
	})
}

func TestHoursFits(t *testing.T) {
	hours := DefaultHours()

	assert.True(t, hours.Fits(at(2, 7, 0), at(2, 19, 0)))
	assert.False(t, hours.Fits(at(2, 6, 59), at(2, 8, 0)))
	assert.False(t, hours.Fits(at(2, 18, 0), at(2, 19, 1)))
	assert.False(t, hours.IsOpen(time.Sunday))
	assert.True(t, hours.IsOpen(time.Saturday))
}
