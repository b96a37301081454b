package billing_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// plainPDF PDF mínimo de una página con xref clásica, como lo devolvería el renderer.
func plainPDF() []byte {
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

func sampleDocument() einvoice.InvoiceDocument {
	return einvoice.InvoiceDocument{
		InvoiceNumber: "RS-2025/0001",
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
			Quantity:    dec("1"),
			UnitPrice:   dec("100.00"),
			NetAmount:   dec("100.00"),
			VATRate:     dec("0.19"),
			VATAmount:   dec("19.00"),
		}},
		NetTotal:   dec("100.00"),
		VATTotal:   dec("19.00"),
		GrossTotal: dec("119.00"),
	}
}

// ── Puertos ────────────────────────────────────────────────────────────────

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	out   []byte
	err   error
	block bool // espera a la cancelación del contexto
}

func (r *fakeRenderer) Render(ctx context.Context, _ einvoice.InvoiceDocument) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.out != nil {
		return r.out, nil
	}
	return plainPDF(), nil
}

func (r *fakeRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeVerifier struct{ err error }

func (v fakeVerifier) Verify(context.Context, []byte, string, []byte) error { return v.err }

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (s *memStore) Save(_ context.Context, path string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Open(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, &einvoice.StorageError{Path: path, Op: "open", Err: os.ErrNotExist}
	}
	return data, nil
}

type countingMetrics struct {
	mu      sync.Mutex
	results map[string]int
	renders int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{results: map[string]int{}} }

func (m *countingMetrics) IncAssembly(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result]++
}

func (m *countingMetrics) ObserveRender(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
}

// ── Repositorios ───────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	invoices map[string]*entity.CommissionInvoice
	lines    map[string][]*entity.CommissionInvoiceLine
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.CommissionInvoice, error) {
	return r.invoices[id], nil
}

func (r *fakeInvoiceRepo) GetLines(_ context.Context, id string) ([]*entity.CommissionInvoiceLine, error) {
	return r.lines[id], nil
}

func (r *fakeInvoiceRepo) ListFinalizedByPeriod(_ context.Context, year, month int) ([]*entity.CommissionInvoice, error) {
	var out []*entity.CommissionInvoice
	for _, id := range []string{"inv-1", "inv-2", "inv-3"} {
		inv, ok := r.invoices[id]
		if !ok || inv.Status != entity.CommissionStatusFinalized {
			continue
		}
		if inv.PeriodEnd.Year() == year && int(inv.PeriodEnd.Month()) == month {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeWorkshopRepo struct{ workshops map[string]*entity.Workshop }

func (r *fakeWorkshopRepo) GetByID(_ context.Context, id string) (*entity.Workshop, error) {
	return r.workshops[id], nil
}

type fakeSettingsRepo struct{ settings *entity.CompanySettings }

func (r *fakeSettingsRepo) Get(context.Context) (*entity.CompanySettings, error) { return r.settings, nil }

type fakeArtifactRepo struct {
	mu        sync.Mutex
	artifacts map[string]*entity.EInvoiceArtifact
}

func (r *fakeArtifactRepo) Upsert(_ context.Context, a *entity.EInvoiceArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.artifacts == nil {
		r.artifacts = map[string]*entity.EInvoiceArtifact{}
	}
	cp := *a
	r.artifacts[a.InvoiceID] = &cp
	return nil
}

func (r *fakeArtifactRepo) GetByInvoiceID(_ context.Context, id string) (*entity.EInvoiceArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.artifacts[id], nil
}

func commissionInvoice(id, number, status string) *entity.CommissionInvoice {
	return &entity.CommissionInvoice{
		ID:            id,
		InvoiceNumber: number,
		WorkshopID:    "ws-1",
		IssueDate:     day(2025, time.March, 7),
		PeriodStart:   day(2025, time.February, 1),
		PeriodEnd:     day(2025, time.February, 28),
		NetTotal:      dec("100.00"),
		VATTotal:      dec("19.00"),
		GrossTotal:    dec("119.00"),
		Status:        status,
	}
}

func commissionLine(invoiceID string, position int, rate string) *entity.CommissionInvoiceLine {
	return &entity.CommissionInvoiceLine{
		ID:          fmt.Sprintf("%s-l%d", invoiceID, position),
		InvoiceID:   invoiceID,
		Position:    position,
		Description: fmt.Sprintf("Provision Buchung %d", position),
		Quantity:    dec("1"),
		UnitPrice:   dec("100.00"),
		NetAmount:   dec("100.00"),
		VATRate:     dec(rate),
		VATAmount:   dec("19.00"),
	}
}

func companySettings() *entity.CompanySettings {
	return &entity.CompanySettings{
		ID:          "settings",
		CompanyName: "Reifenservice Marketplace GmbH",
		Street:      "Hauptstraße 1",
		PostalCode:  "10115",
		City:        "Berlin",
		CountryCode: "de",
		VATID:       "DE123456789",
		Email:       "buchhaltung@reifenservice.example",
	}
}
