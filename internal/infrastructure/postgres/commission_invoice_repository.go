package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
	"github.com/jhoicas/Reifenservice-api/internal/domain/repository"
)

var _ repository.CommissionInvoiceRepository = (*CommissionInvoiceRepo)(nil)

// CommissionInvoiceRepo lectura de facturas de comisión (usable con pool o tx).
type CommissionInvoiceRepo struct {
	q Querier
}

// NewCommissionInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCommissionInvoiceRepository(q Querier) *CommissionInvoiceRepo {
	return &CommissionInvoiceRepo{q: q}
}

const commissionInvoiceColumns = `
	id, invoice_number, workshop_id, issue_date, due_date, period_start, period_end,
	net_total, vat_total, gross_total, status, sent_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommissionInvoice(row rowScanner) (*entity.CommissionInvoice, error) {
	var c entity.CommissionInvoice
	var due, sent *time.Time
	err := row.Scan(
		&c.ID, &c.InvoiceNumber, &c.WorkshopID, &c.IssueDate, &due, &c.PeriodStart, &c.PeriodEnd,
		&c.NetTotal, &c.VATTotal, &c.GrossTotal, &c.Status, &sent, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.DueDate = due
	c.SentAt = sent
	return &c, nil
}

// GetByID obtiene la cabecera de una factura de comisión.
func (r *CommissionInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.CommissionInvoice, error) {
	query := `SELECT` + commissionInvoiceColumns + ` FROM commission_invoices WHERE id = $1`
	c, err := scanCommissionInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commission invoice: %w", err)
	}
	return c, nil
}

// GetLines devuelve las líneas en orden de posición.
func (r *CommissionInvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]*entity.CommissionInvoiceLine, error) {
	query := `
		SELECT id, invoice_id, position, description, quantity, unit_price, net_amount, vat_rate, vat_amount
		FROM commission_invoice_lines WHERE invoice_id = $1 ORDER BY position, id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list commission lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.CommissionInvoiceLine
	for rows.Next() {
		var l entity.CommissionInvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.Description, &l.Quantity,
			&l.UnitPrice, &l.NetAmount, &l.VATRate, &l.VATAmount); err != nil {
			return nil, fmt.Errorf("scan commission line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListFinalizedByPeriod facturas finalizadas cuyo periodo termina en el mes indicado.
func (r *CommissionInvoiceRepo) ListFinalizedByPeriod(ctx context.Context, year, month int) ([]*entity.CommissionInvoice, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	query := `SELECT` + commissionInvoiceColumns + `
		FROM commission_invoices
		WHERE status = $1 AND period_end >= $2 AND period_end < $3
		ORDER BY invoice_number`
	rows, err := r.q.Query(ctx, query, entity.CommissionStatusFinalized, from, to)
	if err != nil {
		return nil, fmt.Errorf("list finalized commission invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.CommissionInvoice
	for rows.Next() {
		c, err := scanCommissionInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission invoice: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
