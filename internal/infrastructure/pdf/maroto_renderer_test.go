package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleDocument() einvoice.InvoiceDocument {
	return einvoice.InvoiceDocument{
		InvoiceNumber: "RS-2025-0001",
		IssueDate:     einvoice.NewDate(2025, time.March, 7),
		DueDate:       einvoice.NewDate(2025, time.March, 21),
		BillingPeriod: einvoice.Period{
			Start: einvoice.NewDate(2025, time.February, 1),
			End:   einvoice.NewDate(2025, time.February, 28),
		},
		Seller: einvoice.Seller{
			Name:      "Reifenservice Marketplace GmbH",
			TaxNumber: "DE123456789",
			Address:   &einvoice.Address{Street: "Hauptstraße 1", PostalCode: "10115", City: "Berlin", CountryCode: "DE"},
		},
		Buyer: einvoice.Buyer{Name: "Reifen Krause KG", Email: "info@krause.example"},
		LineItems: []einvoice.LineItem{{
			Description: "Provision Reifenwechsel",
			Quantity:    dec("12"),
			UnitPrice:   dec("100.00"),
			NetAmount:   dec("1200.00"),
			VATRate:     dec("0.19"),
			VATAmount:   dec("228.00"),
		}},
		NetTotal:   dec("1200.00"),
		VATTotal:   dec("228.00"),
		GrossTotal: dec("1428.00"),
	}
}

func TestRender_GeneraPDFIncrustable(t *testing.T) {
	out, err := NewMarotoRenderer().Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "%%EOF")

	hybridPDF, err := hybrid.NewEmbedder().Embed(out, []byte("<x/>"), hybrid.EmbedOptions{})
	require.NoError(t, err)
	att, err := hybrid.ExtractEmbeddedFile(hybridPDF, einvoice.AttachmentFileName)
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(att.Data))
}

func TestRender_FacturaSinLineas(t *testing.T) {
	doc := sampleDocument()
	doc.LineItems = nil
	doc.NetTotal, doc.VATTotal, doc.GrossTotal = decimal.Zero, decimal.Zero, decimal.Zero

	out, err := NewMarotoRenderer().Render(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRender_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMarotoRenderer().Render(ctx, sampleDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatos(t *testing.T) {
	g := NewMarotoRenderer()
	assert.Equal(t, "1.428,00 €", g.money(dec("1428")))
	assert.Equal(t, "19,00 %", g.percent(dec("19")))
	assert.Equal(t, "2,5", g.quantity(dec("2.5000")))
	assert.Equal(t, "07.03.2025", germanDate(einvoice.NewDate(2025, time.March, 7)))
	assert.Equal(t, "—", germanDate(einvoice.Date{}))
}
