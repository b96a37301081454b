package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reifenservice-api/internal/application/billing"
	"github.com/jhoicas/Reifenservice-api/internal/application/dto"
	"github.com/jhoicas/Reifenservice-api/internal/domain"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
)

type useCaseFixture struct {
	invoices  *fakeInvoiceRepo
	artifacts *fakeArtifactRepo
	renderer  *fakeRenderer
	store     *memStore
	uc        *billing.EInvoiceUseCase
}

func newUseCase() *useCaseFixture {
	f := &useCaseFixture{
		invoices: &fakeInvoiceRepo{
			invoices: map[string]*entity.CommissionInvoice{
				"inv-1": commissionInvoice("inv-1", "RS-2025-0001", entity.CommissionStatusFinalized),
			},
			lines: map[string][]*entity.CommissionInvoiceLine{
				"inv-1": {commissionLine("inv-1", 1, "19")},
			},
		},
		artifacts: &fakeArtifactRepo{},
		renderer:  &fakeRenderer{},
		store:     newMemStore(),
	}
	workshops := &fakeWorkshopRepo{workshops: map[string]*entity.Workshop{
		"ws-1": {ID: "ws-1", Name: "Reifen Krause KG", Email: "info@krause.example"},
	}}
	pipeline := billing.NewAssemblyPipeline(f.renderer, hybrid.NewEmbedder(), nil, f.store, nil, nil, billing.PipelineConfig{})
	f.uc = billing.NewEInvoiceUseCase(f.invoices, workshops, &fakeSettingsRepo{settings: companySettings()},
		f.artifacts, pipeline, f.store, nil, true)
	return f
}

func TestGenerate_RegistraArtefacto(t *testing.T) {
	f := newUseCase()

	res, err := f.uc.Generate(context.Background(), "inv-1", false)
	require.NoError(t, err)
	assert.True(t, res.Hybrid)
	assert.Equal(t, "invoices/2025/02/RS-2025-0001.pdf", res.StoragePath)
	assert.False(t, res.Reissued)

	stored := f.artifacts.artifacts["inv-1"]
	require.NotNil(t, stored)
	assert.Equal(t, res.XMLDigest, stored.XMLDigest)
	assert.Contains(t, stored.XMLContent, "<ram:ID>RS-2025-0001</ram:ID>")
	assert.Equal(t, res.RunID, stored.RunID)
}

func TestGenerate_NoExiste(t *testing.T) {
	f := newUseCase()
	_, err := f.uc.Generate(context.Background(), "nada", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerate_BorradorEsConflicto(t *testing.T) {
	f := newUseCase()
	f.invoices.invoices["inv-1"].Status = entity.CommissionStatusDraft

	_, err := f.uc.Generate(context.Background(), "inv-1", false)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, f.renderer.Calls())
}

func TestGenerate_YaEnviadaRequiereReemision(t *testing.T) {
	f := newUseCase()
	f.invoices.invoices["inv-1"].Status = entity.CommissionStatusSent

	_, err := f.uc.Generate(context.Background(), "inv-1", false)
	require.ErrorIs(t, err, domain.ErrAlreadySent)

	res, err := f.uc.Generate(context.Background(), "inv-1", true)
	require.NoError(t, err)
	assert.True(t, res.Reissued)
}

func TestPreviewXML_NoGuardaNada(t *testing.T) {
	f := newUseCase()

	xmlText, err := f.uc.PreviewXML(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Contains(t, xmlText, "<ram:DuePayableAmount>119.00</ram:DuePayableAmount>")
	assert.Zero(t, f.renderer.Calls())
	assert.Empty(t, f.store.files)
}

func TestPreviewXML_TotalesDescuadrados(t *testing.T) {
	f := newUseCase()
	f.invoices.invoices["inv-1"].GrossTotal = dec("118.00")

	_, err := f.uc.PreviewXML(context.Background(), "inv-1")
	require.ErrorIs(t, err, einvoice.ErrInvalidDocument)
	violations := einvoice.ValidationErrors(err)
	require.Len(t, violations, 1)
	assert.Equal(t, "GrossTotal", violations[0].Check)
}

func TestDownloadPDF(t *testing.T) {
	f := newUseCase()

	_, _, err := f.uc.DownloadPDF(context.Background(), "inv-1")
	require.ErrorIs(t, err, domain.ErrNotFound, "sin generar aún")

	_, err = f.uc.Generate(context.Background(), "inv-1", false)
	require.NoError(t, err)

	data, name, err := f.uc.DownloadPDF(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "RS-2025-0001.pdf", name)
	assert.Equal(t, []byte("%PDF"), data[:4])
}

func TestGenerateMonth_ClasificaResultados(t *testing.T) {
	f := newUseCase()
	f.invoices.invoices["inv-2"] = commissionInvoice("inv-2", "RS-2025-0002", entity.CommissionStatusFinalized)
	f.invoices.lines["inv-2"] = []*entity.CommissionInvoiceLine{commissionLine("inv-2", 1, "0.19")}
	// Descuadrada: falla la validación pero el lote sigue.
	f.invoices.invoices["inv-3"] = commissionInvoice("inv-3", "RS-2025-0003", entity.CommissionStatusFinalized)
	f.invoices.invoices["inv-3"].NetTotal = dec("90.00")

	report, err := f.uc.GenerateMonth(context.Background(), 2025, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Hybrid)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, dto.BatchOutcomeFailed, report.Items[2].Outcome)
	assert.NotEmpty(t, report.Items[2].Error)
}

func TestGenerateMonth_RenderReintentable(t *testing.T) {
	f := newUseCase()
	f.renderer.err = &einvoice.RenderError{Retryable: true, Err: errors.New("servicio saturado")}

	report, err := f.uc.GenerateMonth(context.Background(), 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retryable)
	assert.Empty(t, f.artifacts.artifacts)
}

func TestGenerateMonth_PeriodoInvalido(t *testing.T) {
	f := newUseCase()
	_, err := f.uc.GenerateMonth(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerateMonth_ContextoCancelado(t *testing.T) {
	f := newUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.uc.GenerateMonth(ctx, 2025, 2)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Total)
}

func TestMapInvoiceDocument(t *testing.T) {
	inv := commissionInvoice("inv-1", "RS-2025-0001", entity.CommissionStatusFinalized)
	lines := []*entity.CommissionInvoiceLine{
		commissionLine("inv-1", 2, "19"),
		commissionLine("inv-1", 1, "0.19"),
	}
	ws := &entity.Workshop{Name: "Reifen Krause KG", Phone: "+49 30 1234"}

	doc := billing.MapInvoiceDocument(inv, lines, ws, companySettings())

	assert.Equal(t, einvoice.NewDate(2025, time.March, 7), doc.IssueDate)
	assert.Equal(t, einvoice.NewDate(2025, time.March, 21), doc.DueDate, "emisión + 14 días")
	assert.Equal(t, "Provision Buchung 1", doc.LineItems[0].Description)
	for _, l := range doc.LineItems {
		assert.True(t, dec("0.19").Equal(l.VATRate))
	}
	require.NotNil(t, doc.Seller.Address)
	assert.Equal(t, "DE", doc.Seller.Address.CountryCode)
	assert.Equal(t, "DE123456789", doc.Seller.TaxNumber)
	assert.Equal(t, "+49 30 1234", doc.Buyer.Phone)
}

func TestMapInvoiceDocument_VencimientoExplicitoYPlazo(t *testing.T) {
	inv := commissionInvoice("inv-1", "RS-2025-0001", entity.CommissionStatusFinalized)
	settings := companySettings()
	settings.PaymentTermDays = 30

	doc := billing.MapInvoiceDocument(inv, nil, &entity.Workshop{Name: "W"}, settings)
	assert.Equal(t, einvoice.NewDate(2025, time.April, 6), doc.DueDate)
	assert.Empty(t, doc.LineItems)

	due := day(2025, time.March, 31)
	inv.DueDate = &due
	doc = billing.MapInvoiceDocument(inv, nil, &entity.Workshop{Name: "W"}, settings)
	assert.Equal(t, einvoice.NewDate(2025, time.March, 31), doc.DueDate)
}

func TestMapInvoiceDocument_SinDireccion(t *testing.T) {
	inv := commissionInvoice("inv-1", "RS-2025-0001", entity.CommissionStatusFinalized)
	settings := &entity.CompanySettings{CompanyName: "Reifenservice"}

	doc := billing.MapInvoiceDocument(inv, nil, &entity.Workshop{Name: "W"}, settings)
	assert.Nil(t, doc.Seller.Address)
}
