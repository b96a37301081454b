// Package einvoice contiene el modelo de factura electrónica (EN 16931 / ZUGFeRD 2.2)
// para las facturas de comisión del marketplace y sus reglas de validación.
package einvoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Constantes del perfil ZUGFeRD 2.2 / Factur-X EXTENDED.
const (
	GuidelineExtended   = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:extended"
	TypeCodeCommercial  = "380"
	CurrencyEUR         = "EUR"
	TaxTypeVAT          = "VAT"
	TaxCategoryStandard = "S"
	UnitCodePiece       = "C62" // "one" / unidad
	AttachmentFileName  = "factur-x.xml"
)

// DefaultVATPercent se usa como tasa de cabecera cuando el neto es cero.
var DefaultVATPercent = decimal.NewFromInt(19)

// Address dirección postal; todos los campos son opcionales.
type Address struct {
	Street      string
	PostalCode  string
	City        string
	CountryCode string
}

// IsEmpty informa si no hay ningún campo de dirección.
func (a Address) IsEmpty() bool {
	return strings.TrimSpace(a.Street) == "" && strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.City) == "" && strings.TrimSpace(a.CountryCode) == ""
}

// Seller emisor (la empresa operadora del marketplace).
type Seller struct {
	Name      string
	Address   *Address
	TaxNumber string // USt-IdNr.
	Email     string
	Phone     string
}

// Buyer receptor (el taller).
type Buyer struct {
	Name  string
	Email string
	Phone string
}

// Period periodo de facturación.
type Period struct {
	Start Date
	End   Date
}

// LineItem línea de la factura; su posición define el LineID (base 1).
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitCode    string // vacío = C62
	UnitPrice   decimal.Decimal
	NetAmount   decimal.Decimal
	VATRate     decimal.Decimal // fracción: 0.19 = 19 %
	VATAmount   decimal.Decimal
}

// InvoiceDocument es la unidad de trabajo de la generación de la factura electrónica.
type InvoiceDocument struct {
	InvoiceNumber string
	IssueDate     Date
	DueDate       Date
	BillingPeriod Period
	Seller        Seller
	Buyer         Buyer
	LineItems     []LineItem
	NetTotal      decimal.Decimal
	VATTotal      decimal.Decimal
	GrossTotal    decimal.Decimal
}

// Clone devuelve una copia profunda; la generación nunca modifica el documento original.
func (d InvoiceDocument) Clone() InvoiceDocument {
	out := d
	if d.Seller.Address != nil {
		addr := *d.Seller.Address
		out.Seller.Address = &addr
	}
	out.LineItems = append([]LineItem(nil), d.LineItems...)
	return out
}

// HeaderVATPercent tasa de IVA de cabecera: promedio ponderado vat/net×100 (2 decimales),
// o DefaultVATPercent si el neto no es positivo.
func HeaderVATPercent(netTotal, vatTotal decimal.Decimal) decimal.Decimal {
	if !netTotal.IsPositive() {
		return DefaultVATPercent
	}
	return vatTotal.Div(netTotal).Mul(decimal.NewFromInt(100)).Round(2)
}

// DistinctVATRates devuelve las tasas distintas de las líneas, en orden de aparición.
func DistinctVATRates(lines []LineItem) []decimal.Decimal {
	var rates []decimal.Decimal
	for _, l := range lines {
		seen := false
		for _, r := range rates {
			if r.Equal(l.VATRate) {
				seen = true
				break
			}
		}
		if !seen {
			rates = append(rates, l.VATRate)
		}
	}
	return rates
}

// NormalizeRate convierte una tasa expresada en porcentaje (19) a fracción (0.19).
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}

// StoragePath ruta relativa y determinista del PDF: invoices/{yyyy}/{mm}/{número}.pdf.
// El año y mes salen del fin del periodo de facturación.
func StoragePath(invoiceNumber string, periodEnd Date) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(invoiceNumber))
	return fmt.Sprintf("invoices/%04d/%02d/%s.pdf", periodEnd.Year, int(periodEnd.Month), name)
}
