package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/billing"
	"pneutrack/internal/infrastructure/storage/postgres"
)

// InvoiceRepo is the PostgreSQL repository for invoices and quotes.
// The header lives in doc_invoices, lines in doc_invoice_lines.
type InvoiceRepo struct {
	*BaseDocumentRepo[*billing.Invoice]
}

var invoiceColumns = postgres.ExtractDBColumns[billing.Invoice]()

var invoiceLineColumns = []string{
	"line_id",
	"document_id",
	"line_no",
	"kind",
	"ref_id",
	"label",
	"quantity",
	"unit_price",
	"discount_pct",
	"vat_rate",
	"subtotal_ht",
	"discount_amount",
	"vat_amount",
	"total_ttc",
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			"doc_invoices",
			invoiceColumns,
			func() *billing.Invoice { return &billing.Invoice{} },
		),
	}
}

// invoiceLineRow mirrors a doc_invoice_lines row.
type invoiceLineRow struct {
	DocumentID id.ID `db:"document_id"`
	billing.InvoiceLine
}

// GetLines retrieves document lines ordered by line number.
func (r *InvoiceRepo) GetLines(ctx context.Context, documentID id.ID) ([]billing.InvoiceLine, error) {
	q := r.Builder().
		Select(invoiceLineColumns...).
		From("doc_invoice_lines").
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var rows []invoiceLineRow
	if err := pgxscan.Select(ctx, r.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	lines := make([]billing.InvoiceLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.InvoiceLine)
	}

	return lines, nil
}

// SaveLines replaces all lines of a document.
// Implemented as DELETE + batch INSERT inside the caller's transaction.
func (r *InvoiceRepo) SaveLines(ctx context.Context, documentID id.ID, lines []billing.InvoiceLine) error {
	querier := r.Querier(ctx)

	delQ := r.Builder().
		Delete("doc_invoice_lines").
		Where(squirrel.Eq{"document_id": documentID})

	delSQL, delArgs, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}

	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	insQ := r.Builder().
		Insert("doc_invoice_lines").
		Columns(invoiceLineColumns...)

	for _, line := range lines {
		insQ = insQ.Values(
			line.LineID,
			documentID,
			line.LineNo,
			line.Kind,
			line.RefID,
			line.Label,
			line.Quantity,
			line.UnitPrice,
			line.DiscountPct,
			line.VATRate,
			line.SubtotalHT,
			line.DiscountAmount,
			line.VATAmount,
			line.TotalTTC,
		)
	}

	insSQL, insArgs, err := insQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, insSQL, insArgs...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves invoices with billing-specific filtering.
func (r *InvoiceRepo) List(ctx context.Context, filter billing.ListFilter) (domain.ListResult[*billing.Invoice], error) {
	q := r.baseSelect()

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.UserID != nil {
		q = q.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.DocType != nil {
		q = q.Where(squirrel.Eq{"doc_type": *filter.DocType})
	}
	if filter.PaymentStatus != nil {
		q = q.Where(squirrel.Eq{"payment_status": *filter.PaymentStatus})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"date": *filter.DateTo})
	}

	return r.listWith(ctx, q, filter.ListFilter)
}
