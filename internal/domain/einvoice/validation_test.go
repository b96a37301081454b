package einvoice_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sampleDocument: una línea de comisión de 100,00 € al 19 %.
func sampleDocument() einvoice.InvoiceDocument {
	return einvoice.InvoiceDocument{
		InvoiceNumber: "RS-2025-0001",
		IssueDate:     einvoice.NewDate(2025, time.March, 7),
		DueDate:       einvoice.NewDate(2025, time.March, 21),
		BillingPeriod: einvoice.Period{
			Start: einvoice.NewDate(2025, time.February, 1),
			End:   einvoice.NewDate(2025, time.February, 28),
		},
		Seller: einvoice.Seller{Name: "Reifenservice GmbH", TaxNumber: "DE123456789"},
		Buyer:  einvoice.Buyer{Name: "Werkstatt Müller"},
		LineItems: []einvoice.LineItem{{
			Description: "Vermittlungsprovision Februar",
			Quantity:    dec("1"),
			UnitPrice:   dec("100"),
			NetAmount:   dec("100"),
			VATRate:     dec("0.19"),
			VATAmount:   dec("19"),
		}},
		NetTotal:   dec("100"),
		VATTotal:   dec("19"),
		GrossTotal: dec("119"),
	}
}

func TestValidate_DocumentoValido(t *testing.T) {
	v, err := einvoice.Validate(sampleDocument(), einvoice.ValidationOptions{})
	require.NoError(t, err)
	assert.Equal(t, "RS-2025-0001", v.Document().InvoiceNumber)
	assert.False(t, v.MixedVATRates())
}

func TestValidate_ToleranciaDeUnCentimo(t *testing.T) {
	doc := sampleDocument()
	doc.GrossTotal = dec("119.01")
	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	assert.NoError(t, err, "una diferencia de 0,01 está dentro de la tolerancia")
}

func TestValidate_TotalesDescuadrados(t *testing.T) {
	doc := sampleDocument()
	doc.NetTotal = dec("100")
	doc.VATTotal = dec("19")
	doc.GrossTotal = dec("120")

	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, einvoice.ErrInvalidDocument))

	violations := einvoice.ValidationErrors(err)
	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, einvoice.KindAmountMismatch, v.Kind)
	assert.Equal(t, "GrossTotal", v.Check)
	assert.True(t, v.Expected.Equal(dec("119")))
	assert.True(t, v.Observed.Equal(dec("120")))
	assert.True(t, v.Delta.Equal(dec("1")))
}

func TestValidate_IVAPorLineaIncorrecto(t *testing.T) {
	doc := sampleDocument()
	doc.LineItems[0].VATAmount = dec("20")
	doc.VATTotal = dec("20")
	doc.GrossTotal = dec("120")

	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	violations := einvoice.ValidationErrors(err)
	require.Len(t, violations, 1)
	assert.Equal(t, "line.VATAmount", violations[0].Check)
	assert.Equal(t, 1, violations[0].Line)
}

func TestValidate_CamposObligatorios(t *testing.T) {
	doc := sampleDocument()
	doc.InvoiceNumber = "  "
	doc.Buyer.Name = ""
	doc.DueDate = einvoice.Date{}

	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	var fields []string
	for _, v := range einvoice.ValidationErrors(err) {
		assert.Equal(t, einvoice.KindMissingRequiredField, v.Kind)
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"InvoiceNumber", "Buyer.Name", "DueDate"}, fields)
}

func TestValidate_OrdenDeFechas(t *testing.T) {
	doc := sampleDocument()
	doc.DueDate = einvoice.NewDate(2025, time.March, 6)
	doc.BillingPeriod.End = einvoice.NewDate(2025, time.January, 31)

	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	violations := einvoice.ValidationErrors(err)
	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(t, einvoice.KindDateOrder, v.Kind)
	}
}

func TestValidate_TasasMixtas(t *testing.T) {
	doc := sampleDocument()
	doc.LineItems = append(doc.LineItems, einvoice.LineItem{
		Description: "Buchungsgebühr",
		Quantity:    dec("1"),
		UnitPrice:   dec("10"),
		NetAmount:   dec("10"),
		VATRate:     dec("0.07"),
		VATAmount:   dec("0.70"),
	})
	doc.NetTotal = dec("110")
	doc.VATTotal = dec("19.70")
	doc.GrossTotal = dec("129.70")

	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	violations := einvoice.ValidationErrors(err)
	require.Len(t, violations, 1)
	assert.Equal(t, einvoice.KindMixedVATRates, violations[0].Kind)

	v, err := einvoice.Validate(doc, einvoice.ValidationOptions{AllowMixedVATRates: true})
	require.NoError(t, err)
	assert.True(t, v.MixedVATRates())
}

func TestValidate_NoModificaElOriginal(t *testing.T) {
	doc := sampleDocument()
	v, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	require.NoError(t, err)

	cp := v.Document()
	cp.LineItems[0].Description = "cambiado"
	assert.Equal(t, "Vermittlungsprovision Februar", doc.LineItems[0].Description)
	assert.Equal(t, "Vermittlungsprovision Februar", v.Document().LineItems[0].Description)
}

func TestValidate_SinLineasConTotalesCero(t *testing.T) {
	doc := sampleDocument()
	doc.LineItems = nil
	doc.NetTotal = decimal.Zero
	doc.VATTotal = decimal.Zero
	doc.GrossTotal = decimal.Zero

	_, err := einvoice.Validate(doc, einvoice.ValidationOptions{})
	assert.NoError(t, err, "una factura vacía con totales cero es válida")
}
