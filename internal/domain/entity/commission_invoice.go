package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura de comisión. La transición a finalized la hace contabilidad;
// sent y paid las registra el envío al taller.
const (
	CommissionStatusDraft     = "draft"
	CommissionStatusFinalized = "finalized"
	CommissionStatusSent      = "sent"
	CommissionStatusPaid      = "paid" // implica sent
	CommissionStatusCancelled = "cancelled"
)

// CommissionInvoice factura de comisión mensual del marketplace a un taller.
type CommissionInvoice struct {
	ID            string
	InvoiceNumber string // asignado por el sistema de numeración
	WorkshopID    string
	IssueDate     time.Time
	DueDate       *time.Time // nil = fecha de emisión + plazo de pago de la empresa
	PeriodStart   time.Time
	PeriodEnd     time.Time
	NetTotal      decimal.Decimal
	VATTotal      decimal.Decimal
	GrossTotal    decimal.Decimal
	Status        string
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AlreadySent indica que la factura ya salió hacia el taller.
func (c *CommissionInvoice) AlreadySent() bool {
	return c.Status == CommissionStatusSent || c.Status == CommissionStatusPaid
}

// CommissionInvoiceLine línea de la factura de comisión (una por reserva o concepto).
type CommissionInvoiceLine struct {
	ID          string
	InvoiceID   string
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	NetAmount   decimal.Decimal
	VATRate     decimal.Decimal // 0.19 o 19; el mapeo normaliza
	VATAmount   decimal.Decimal
}
