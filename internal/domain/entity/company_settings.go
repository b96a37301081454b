package entity

import "time"

// DefaultPaymentTermDays plazo de pago cuando la configuración no lo define.
const DefaultPaymentTermDays = 14

// CompanySettings datos de la empresa operadora (emisor de las facturas de comisión).
type CompanySettings struct {
	ID              string
	CompanyName     string
	Street          string
	PostalCode      string
	City            string
	CountryCode     string
	VATID           string // USt-IdNr.
	Email           string
	Phone           string
	PaymentTermDays int
	UpdatedAt       time.Time
}

// TermDays plazo de pago efectivo.
func (s *CompanySettings) TermDays() int {
	if s == nil || s.PaymentTermDays <= 0 {
		return DefaultPaymentTermDays
	}
	return s.PaymentTermDays
}
