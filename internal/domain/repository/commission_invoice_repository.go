package repository

import (
	"context"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
)

// CommissionInvoiceRepository puerto de lectura de facturas de comisión y sus líneas.
// GetByID devuelve (nil, nil) si no existe.
type CommissionInvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.CommissionInvoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]*entity.CommissionInvoiceLine, error)
	// ListFinalizedByPeriod facturas en estado finalized cuyo periodo termina en year/month.
	ListFinalizedByPeriod(ctx context.Context, year, month int) ([]*entity.CommissionInvoice, error)
}
