package einvoice

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance diferencia máxima admitida entre importes declarados y calculados.
var Tolerance = decimal.New(1, -2)

// ValidationOptions ajusta reglas que dependen de la configuración.
type ValidationOptions struct {
	// AllowMixedVATRates acepta líneas con tasas distintas (cabecera con tasa promedio).
	AllowMixedVATRates bool
}

// ValidDocument es un documento que pasó Validate. Solo se obtiene a través de Validate.
type ValidDocument struct {
	doc   InvoiceDocument
	mixed bool
}

// Document devuelve una copia del documento validado.
func (v ValidDocument) Document() InvoiceDocument { return v.doc.Clone() }

// MixedVATRates indica que el documento se aceptó con tasas de IVA mixtas.
func (v ValidDocument) MixedVATRates() bool { return v.mixed }

// Validate comprueba campos obligatorios, orden de fechas y coherencia de importes.
// Todas las violaciones se devuelven juntas (errors.Join de *ValidationError).
func Validate(doc InvoiceDocument, opts ValidationOptions) (ValidDocument, error) {
	var errs []error

	missing := func(field string) {
		errs = append(errs, &ValidationError{Kind: KindMissingRequiredField, Field: field})
	}
	if strings.TrimSpace(doc.InvoiceNumber) == "" {
		missing("InvoiceNumber")
	}
	if strings.TrimSpace(doc.Seller.Name) == "" {
		missing("Seller.Name")
	}
	if strings.TrimSpace(doc.Buyer.Name) == "" {
		missing("Buyer.Name")
	}
	if doc.IssueDate.IsZero() {
		missing("IssueDate")
	}
	if doc.DueDate.IsZero() {
		missing("DueDate")
	}
	if doc.BillingPeriod.Start.IsZero() {
		missing("BillingPeriod.Start")
	}
	if doc.BillingPeriod.End.IsZero() {
		missing("BillingPeriod.End")
	}

	if !doc.IssueDate.IsZero() && !doc.DueDate.IsZero() && doc.DueDate.Before(doc.IssueDate) {
		errs = append(errs, &ValidationError{Kind: KindDateOrder, Check: "DueDate >= IssueDate"})
	}
	if !doc.BillingPeriod.Start.IsZero() && !doc.BillingPeriod.End.IsZero() &&
		doc.BillingPeriod.End.Before(doc.BillingPeriod.Start) {
		errs = append(errs, &ValidationError{Kind: KindDateOrder, Check: "BillingPeriod.End >= BillingPeriod.Start"})
	}

	var sumNet, sumVAT decimal.Decimal
	for i, l := range doc.LineItems {
		sumNet = sumNet.Add(l.NetAmount)
		sumVAT = sumVAT.Add(l.VATAmount)
		if err := compare("line.VATAmount", l.NetAmount.Mul(l.VATRate), l.VATAmount, i+1); err != nil {
			errs = append(errs, err)
		}
	}
	if err := compare("NetTotal", sumNet, doc.NetTotal, 0); err != nil {
		errs = append(errs, err)
	}
	if err := compare("VATTotal", sumVAT, doc.VATTotal, 0); err != nil {
		errs = append(errs, err)
	}
	if err := compare("GrossTotal", doc.NetTotal.Add(doc.VATTotal), doc.GrossTotal, 0); err != nil {
		errs = append(errs, err)
	}

	mixed := len(DistinctVATRates(doc.LineItems)) > 1
	if mixed && !opts.AllowMixedVATRates {
		errs = append(errs, &ValidationError{Kind: KindMixedVATRates, Check: "todas las líneas deben compartir la misma tasa de IVA"})
	}

	if len(errs) > 0 {
		return ValidDocument{}, errors.Join(errs...)
	}
	return ValidDocument{doc: doc.Clone(), mixed: mixed}, nil
}

func compare(check string, expected, observed decimal.Decimal, line int) error {
	delta := observed.Sub(expected)
	if delta.Abs().LessThanOrEqual(Tolerance) {
		return nil
	}
	return &ValidationError{
		Kind:     KindAmountMismatch,
		Check:    check,
		Expected: expected,
		Observed: observed,
		Delta:    delta,
		Line:     line,
	}
}
