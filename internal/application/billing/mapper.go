package billing

import (
	"sort"
	"strings"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
)

// MapInvoiceDocument arma el documento de factura electrónica a partir de la factura de
// comisión, sus líneas, el taller (comprador) y la configuración de la empresa (vendedor).
//
// Sin fecha de vencimiento se usa la fecha de emisión + plazo de pago configurado.
// Las tasas de IVA se normalizan a fracción (19 → 0.19).
func MapInvoiceDocument(
	inv *entity.CommissionInvoice,
	lines []*entity.CommissionInvoiceLine,
	workshop *entity.Workshop,
	settings *entity.CompanySettings,
) einvoice.InvoiceDocument {
	issue := einvoice.DateOf(inv.IssueDate)
	due := issue.AddDays(settings.TermDays())
	if inv.DueDate != nil {
		due = einvoice.DateOf(*inv.DueDate)
	}

	doc := einvoice.InvoiceDocument{
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     issue,
		DueDate:       due,
		BillingPeriod: einvoice.Period{
			Start: einvoice.DateOf(inv.PeriodStart),
			End:   einvoice.DateOf(inv.PeriodEnd),
		},
		NetTotal:   inv.NetTotal,
		VATTotal:   inv.VATTotal,
		GrossTotal: inv.GrossTotal,
	}

	if settings != nil {
		doc.Seller = einvoice.Seller{
			Name:      settings.CompanyName,
			TaxNumber: settings.VATID,
			Email:     settings.Email,
			Phone:     settings.Phone,
		}
		addr := einvoice.Address{
			Street:      settings.Street,
			PostalCode:  settings.PostalCode,
			City:        settings.City,
			CountryCode: strings.ToUpper(strings.TrimSpace(settings.CountryCode)),
		}
		if !addr.IsEmpty() {
			doc.Seller.Address = &addr
		}
	}
	if workshop != nil {
		doc.Buyer = einvoice.Buyer{Name: workshop.Name, Email: workshop.Email, Phone: workshop.Phone}
	}

	ordered := make([]*entity.CommissionInvoiceLine, 0, len(lines))
	for _, l := range lines {
		if l != nil {
			ordered = append(ordered, l)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	doc.LineItems = make([]einvoice.LineItem, 0, len(ordered))
	for _, l := range ordered {
		doc.LineItems = append(doc.LineItems, einvoice.LineItem{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			NetAmount:   l.NetAmount,
			VATRate:     einvoice.NormalizeRate(l.VATRate),
			VATAmount:   l.VATAmount,
		})
	}
	return doc
}
