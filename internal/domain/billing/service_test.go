package billing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
	"pneutrack/internal/core/types"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/auth"
	"pneutrack/internal/domain/catalogs/client"
	"pneutrack/internal/domain/catalogs/prestation"
	"pneutrack/internal/domain/catalogs/product"
	"pneutrack/pkg/numerator"
)

// --- fakes ---

type fakeTxManager struct{ depth int }

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.depth++
	defer func() { f.depth-- }()
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

	// txm, when set, records allocations made outside a transaction.
	txm       *fakeTxManager
	outsideTx bool
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.txm != nil && q.txm.depth == 0 {
		q.outsideTx = true
	}
	q.val++
	return &seqRow{val: q.val}
}

type fakeRepo struct {
	docs  map[id.ID]*Invoice
	lines map[id.ID][]InvoiceLine
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Invoice),
		lines: make(map[id.ID][]InvoiceLine),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Invoice) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	return doc, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Invoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("invoice", doc.ID.String())
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	delete(r.lines, docID)
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]InvoiceLine, error) {
	return append([]InvoiceLine(nil), r.lines[docID]...), nil
}

func (r *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []InvoiceLine) error {
	r.lines[docID] = append([]InvoiceLine(nil), lines...)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	var items []*Invoice
	for _, doc := range r.docs {
		items = append(items, doc)
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return r.GetByID(ctx, docID)
}

type fakeProducts struct {
	items map[id.ID]*product.Product
}

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.items[productID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return p, nil
}

func (f *fakeProducts) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return f.GetByID(ctx, productID)
}

func (f *fakeProducts) AdjustStock(ctx context.Context, productID id.ID, delta int) error {
	p, ok := f.items[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	if p.Stock+delta < 0 {
		return apperror.NewInsufficientStock(productID.String(), -delta, p.Stock)
	}
	p.Stock += delta
	return nil
}

type fakePrestations struct {
	items map[id.ID]*prestation.Prestation
}

func (f *fakePrestations) GetByID(ctx context.Context, prestationID id.ID) (*prestation.Prestation, error) {
	p, ok := f.items[prestationID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return p, nil
}

type fakeClients struct {
	items map[id.ID]*client.Client
}

func (f *fakeClients) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	c, ok := f.items[clientID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return c, nil
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

type fakeAppointments struct {
	existing map[id.ID]bool
	done     []id.ID
}

func (f *fakeAppointments) Exists(ctx context.Context, apptID id.ID) (bool, error) {
	return f.existing[apptID], nil
}

func (f *fakeAppointments) MarkDone(ctx context.Context, apptID id.ID) error {
	if !f.existing[apptID] {
		return apperror.NewNotFound("appointment", apptID.String())
	}
	f.done = append(f.done, apptID)
	return nil
}

// --- fixture ---

type billingFixture struct {
	service      *Service
	repo         *fakeRepo
	products     *fakeProducts
	appointments *fakeAppointments
	sequences    *seqQuerier

	userID       id.ID
	clientID     id.ID
	tyreID       id.ID
	prestationID id.ID
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	user := auth.NewUser("marc@pneutrack.fr", "hash")
	user.Roles = []string{auth.RoleWorker}

	cl := client.NewClient("CLI-2026-00001", "Garage Dupont")

	tyre := product.NewProduct("PRD-2026-00001", "Michelin Primacy 4 205/55R16")
	tyre.Stock = 10
	tyre.UnitPrice = types.MustMoney("100")

	montage := prestation.NewPrestation("PRE-2026-00001", "Montage pneu")
	montage.UnitPrice = types.MustMoney("15")

	repo := newFakeRepo()
	products := &fakeProducts{items: map[id.ID]*product.Product{tyre.ID: tyre}}
	appointments := &fakeAppointments{existing: make(map[id.ID]bool)}
	txm := &fakeTxManager{}
	sequences := &seqQuerier{txm: txm}

	service := NewService(
		repo,
		products,
		&fakePrestations{items: map[id.ID]*prestation.Prestation{montage.ID: montage}},
		&fakeClients{items: map[id.ID]*client.Client{cl.ID: cl}},
		&fakeStaff{items: map[id.ID]*auth.User{user.ID: user}},
		appointments,
		numerator.New(sequences),
		txm,
		DefaultVATRate,
	)

	return &billingFixture{
		service:      service,
		repo:         repo,
		products:     products,
		appointments: appointments,
		sequences:    sequences,
		userID:       user.ID,
		clientID:     cl.ID,
		tyreID:       tyre.ID,
		prestationID: montage.ID,
	}
}

func (f *billingFixture) newDoc(docType DocType) *Invoice {
	doc := NewInvoice(docType, f.userID, f.clientID)
	doc.AddLine(LineProduct, f.tyreID, 4, types.Zero(), types.MustMoney("10"))
	doc.AddLine(LineService, f.prestationID, 4, types.Zero(), types.Zero())
	return doc
}

// --- tests ---

func TestCreateFacture(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	apptID := id.New()
	f.appointments.existing[apptID] = true

	doc := f.newDoc(TypeFacture)
	doc.AppointmentID = &apptID

	require.NoError(t, f.service.Create(ctx, doc))

	assert.True(t, strings.HasPrefix(doc.Number, "FAC-"))
	assert.Equal(t, PaymentPending, doc.PaymentStatus)

	// Snapshotted catalog prices and computed amounts.
	// 4 tyres at 100 with 10% off: HT 360, plus 4 montages at 15: HT 60.
	assert.Equal(t, "Michelin Primacy 4 205/55R16", doc.Lines[0].Label)
	assert.True(t, doc.Lines[0].UnitPrice.Equal(types.MustMoney("100")))
	assert.True(t, doc.TotalHT.Equal(types.MustMoney("420")))
	assert.True(t, doc.TotalDiscount.Equal(types.MustMoney("40")))
	assert.True(t, doc.TotalVAT.Equal(types.MustMoney("84")))
	assert.True(t, doc.TotalTTC.Equal(types.MustMoney("504")))

	// Stock decremented, appointment completed.
	assert.Equal(t, 6, f.products.items[f.tyreID].Stock)
	assert.Equal(t, []id.ID{apptID}, f.appointments.done)

	saved, err := f.repo.GetLines(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestCreateDevis_NeverTouchesStock(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	doc := f.newDoc(TypeDevis)
	require.NoError(t, f.service.Create(ctx, doc))

	assert.True(t, strings.HasPrefix(doc.Number, "DEV-"))
	assert.Equal(t, 10, f.products.items[f.tyreID].Stock)
	assert.Empty(t, f.appointments.done)

	// Prices are still computed for the quote.
	assert.True(t, doc.TotalTTC.Equal(types.MustMoney("504")))
}

func TestCreateFacture_InsufficientStock(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.products.items[f.tyreID].Stock = 2

	doc := f.newDoc(TypeFacture)
	err := f.service.Create(ctx, doc)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	// Nothing persisted, stock untouched.
	assert.Equal(t, 2, f.products.items[f.tyreID].Stock)
	assert.Empty(t, f.repo.docs)
}

func TestCreate_InactiveUser(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	inactive := auth.NewUser("gone@pneutrack.fr", "hash")
	inactive.IsActive = false
	f.service.staff.(*fakeStaff).items[inactive.ID] = inactive

	doc := NewInvoice(TypeFacture, inactive.ID, f.clientID)
	doc.AddLine(LineProduct, f.tyreID, 1, types.Zero(), types.Zero())

	err := f.service.Create(ctx, doc)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestCreate_InactiveProduct(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.products.items[f.tyreID].Active = false

	doc := f.newDoc(TypeDevis)
	err := f.service.Create(ctx, doc)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreateFacture_CancelledPaymentLeavesAppointment(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	apptID := id.New()
	f.appointments.existing[apptID] = true

	doc := f.newDoc(TypeFacture)
	doc.AppointmentID = &apptID
	doc.PaymentStatus = PaymentCancelled

	require.NoError(t, f.service.Create(ctx, doc))

	// A cancelled facture still consumes stock but does not complete
	// the linked appointment.
	assert.Equal(t, 6, f.products.items[f.tyreID].Stock)
	assert.Empty(t, f.appointments.done)
}

func TestCreate_NumberAllocatedInTransaction(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Create(ctx, f.newDoc(TypeFacture)))
	require.NoError(t, f.service.Create(ctx, f.newDoc(TypeDevis)))

	// Sequence values must be drawn inside the transaction so a
	// rollback releases them and numbers stay gapless.
	assert.False(t, f.sequences.outsideTx)
	assert.Equal(t, int64(2), f.sequences.val)
}

func TestCreate_UnknownAppointment(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	missing := id.New()
	doc := f.newDoc(TypeFacture)
	doc.AppointmentID = &missing

	err := f.service.Create(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestModify_ReconcilesStock(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	doc := f.newDoc(TypeFacture)
	require.NoError(t, f.service.Create(ctx, doc))
	require.Equal(t, 6, f.products.items[f.tyreID].Stock)

	// Drop to a single tyre: old 4 restored, new 1 consumed.
	updated := NewInvoice(TypeFacture, f.userID, f.clientID)
	updated.ID = doc.ID
	updated.AddLine(LineProduct, f.tyreID, 1, types.Zero(), types.Zero())

	require.NoError(t, f.service.Modify(ctx, updated))
	assert.Equal(t, 9, f.products.items[f.tyreID].Stock)
	assert.Equal(t, doc.Number, updated.Number)

	// Applying the same edit again must not accumulate: restore the
	// current line, consume it again, stock stays at 9.
	again := NewInvoice(TypeFacture, f.userID, f.clientID)
	again.ID = doc.ID
	again.AddLine(LineProduct, f.tyreID, 1, types.Zero(), types.Zero())

	require.NoError(t, f.service.Modify(ctx, again))
	assert.Equal(t, 9, f.products.items[f.tyreID].Stock)
}

func TestModify_TypeChangeRejected(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	doc := f.newDoc(TypeDevis)
	require.NoError(t, f.service.Create(ctx, doc))

	updated := NewInvoice(TypeFacture, f.userID, f.clientID)
	updated.ID = doc.ID
	updated.AddLine(LineProduct, f.tyreID, 1, types.Zero(), types.Zero())

	err := f.service.Modify(ctx, updated)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 10, f.products.items[f.tyreID].Stock)
}

func TestConvertToInvoice(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	apptID := id.New()
	f.appointments.existing[apptID] = true

	doc := f.newDoc(TypeDevis)
	doc.AppointmentID = &apptID
	require.NoError(t, f.service.Create(ctx, doc))
	require.Equal(t, 10, f.products.items[f.tyreID].Stock)

	converted, err := f.service.ConvertToInvoice(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, TypeFacture, converted.DocType)
	assert.True(t, strings.HasPrefix(converted.Number, "FAC-"))
	assert.Equal(t, PaymentPending, converted.PaymentStatus)
	assert.Equal(t, 6, f.products.items[f.tyreID].Stock)
	assert.Equal(t, []id.ID{apptID}, f.appointments.done)

	// One-directional: a facture cannot be converted again.
	_, err = f.service.ConvertToInvoice(ctx, doc.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestUpdatePayment(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	apptID := id.New()
	f.appointments.existing[apptID] = true

	doc := f.newDoc(TypeFacture)
	doc.AppointmentID = &apptID
	require.NoError(t, f.service.Create(ctx, doc))
	doneBefore := len(f.appointments.done)

	updated, err := f.service.UpdatePayment(ctx, doc.ID, PaymentPaid, MethodCard)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, MethodCard, updated.PaymentMethod)

	// Payment changes never touch the appointment.
	assert.Len(t, f.appointments.done, doneBefore)
}

func TestUpdatePayment_DevisRejected(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	doc := f.newDoc(TypeDevis)
	require.NoError(t, f.service.Create(ctx, doc))

	_, err := f.service.UpdatePayment(ctx, doc.ID, PaymentPaid, MethodCash)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestUpdatePayment_InvalidStatus(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	_, err := f.service.UpdatePayment(ctx, id.New(), PaymentStatus("perdu"), "")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDelete_RestoresStock(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	doc := f.newDoc(TypeFacture)
	require.NoError(t, f.service.Create(ctx, doc))
	require.Equal(t, 6, f.products.items[f.tyreID].Stock)

	require.NoError(t, f.service.Delete(ctx, doc.ID))
	assert.Equal(t, 10, f.products.items[f.tyreID].Stock)

	_, err := f.service.GetByID(ctx, doc.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_DevisLeavesStock(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	doc := f.newDoc(TypeDevis)
	require.NoError(t, f.service.Create(ctx, doc))

	require.NoError(t, f.service.Delete(ctx, doc.ID))
	assert.Equal(t, 10, f.products.items[f.tyreID].Stock)
}
