package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reifenservice-api/internal/application/billing"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
)

func minimalPDF() []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f\r\n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func hybridFixture(t *testing.T) string {
	t.Helper()
	d := decimal.RequireFromString
	doc := einvoice.InvoiceDocument{
		InvoiceNumber: "RS-2025/0042",
		IssueDate:     einvoice.NewDate(2025, time.March, 7),
		DueDate:       einvoice.NewDate(2025, time.March, 21),
		BillingPeriod: einvoice.Period{
			Start: einvoice.NewDate(2025, time.February, 1),
			End:   einvoice.NewDate(2025, time.February, 28),
		},
		Seller: einvoice.Seller{Name: "Reifenservice Marketplace GmbH", TaxNumber: "DE123456789"},
		Buyer:  einvoice.Buyer{Name: "Reifen Krause KG"},
		LineItems: []einvoice.LineItem{{
			Description: "Provision Februar 2025",
			Quantity:    d("1"),
			UnitPrice:   d("1200.00"),
			NetAmount:   d("1200.00"),
			VATRate:     d("0.19"),
			VATAmount:   d("228.00"),
		}},
		NetTotal:   d("1200.00"),
		VATTotal:   d("228.00"),
		GrossTotal: d("1428.00"),
	}
	p := billing.NewAssemblyPipeline(nil, nil, nil, nil, nil, nil, billing.PipelineConfig{})
	xmlText, _, _, err := p.BuildXML(doc)
	require.NoError(t, err)

	pdf, err := hybrid.NewEmbedder().Embed(minimalPDF(), []byte(xmlText), hybrid.EmbedOptions{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "RS-2025-0042.pdf")
	require.NoError(t, os.WriteFile(path, pdf, 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInspect_Resumen(t *testing.T) {
	path := hybridFixture(t)

	out, err := runCLI(t, "inspect", path)
	require.NoError(t, err)

	var got inspectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "RS-2025/0042", got.InvoiceNumber)
	assert.Equal(t, "20250307", got.IssueDate)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, 1, got.Lines)
	assert.Equal(t, "1200.00", got.NetTotal)
	assert.Equal(t, "228.00", got.VATTotal)
	assert.Equal(t, "1428.00", got.GrossTotal)
	assert.Equal(t, "19.00", got.VATPercent)
	assert.Equal(t, "Alternative", got.Relationship)
	assert.Contains(t, got.Attachments, einvoice.AttachmentFileName)
}

func TestInspect_VolcarXML(t *testing.T) {
	path := hybridFixture(t)

	out, err := runCLI(t, "inspect", "--xml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "<rsm:CrossIndustryInvoice")
	assert.Contains(t, out, "RS-2025/0042")
}

func TestInspect_PDFSinAdjunto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.pdf")
	require.NoError(t, os.WriteFile(path, minimalPDF(), 0o644))

	_, err := runCLI(t, "inspect", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, hybrid.ErrAttachmentNotFound)
}

func TestAssemble_RequiereID(t *testing.T) {
	_, err := runCLI(t, "assemble")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}
