package billing

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jhoicas/Reifenservice-api/internal/application/dto"
	"github.com/jhoicas/Reifenservice-api/internal/domain"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
	"github.com/jhoicas/Reifenservice-api/internal/domain/repository"
	"github.com/jhoicas/Reifenservice-api/pkg/logger"
)

// EInvoiceUseCase genera y sirve las facturas electrónicas de las facturas de comisión.
type EInvoiceUseCase struct {
	invoiceRepo  repository.CommissionInvoiceRepository
	workshopRepo repository.WorkshopRepository
	settingsRepo repository.CompanySettingsRepository
	artifactRepo repository.EInvoiceArtifactRepository
	pipeline     *AssemblyPipeline
	store        DocumentStore
	log          *logger.Logger
	storeXML     bool
	now          func() time.Time
}

// NewEInvoiceUseCase construye el caso de uso inyectando todas sus dependencias.
// storeXML indica si el XML completo se guarda junto al artefacto (además del digest).
func NewEInvoiceUseCase(
	invoiceRepo repository.CommissionInvoiceRepository,
	workshopRepo repository.WorkshopRepository,
	settingsRepo repository.CompanySettingsRepository,
	artifactRepo repository.EInvoiceArtifactRepository,
	pipeline *AssemblyPipeline,
	store DocumentStore,
	log *logger.Logger,
	storeXML bool,
) *EInvoiceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &EInvoiceUseCase{
		invoiceRepo:  invoiceRepo,
		workshopRepo: workshopRepo,
		settingsRepo: settingsRepo,
		artifactRepo: artifactRepo,
		pipeline:     pipeline,
		store:        store,
		log:          log.Component("einvoice"),
		storeXML:     storeXML,
		now:          time.Now,
	}
}

// Generate ensambla la factura híbrida de invoiceID y registra el artefacto.
//
// Retorna:
//   - domain.ErrNotFound        la factura, el taller o la configuración no existen.
//   - domain.ErrConflict        la factura está en borrador o anulada.
//   - domain.ErrAlreadySent     ya fue enviada y reissue es false.
//   - los errores de AssemblyPipeline.Assemble.
func (uc *EInvoiceUseCase) Generate(ctx context.Context, invoiceID string, reissue bool) (*dto.EInvoiceResponse, error) {
	inv, doc, err := uc.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	res, err := uc.pipeline.Assemble(ctx, AssemblyRequest{
		Document:    doc,
		AlreadySent: inv.AlreadySent(),
		Reissue:     reissue,
	})
	if err != nil {
		return nil, err
	}

	artifact := &entity.EInvoiceArtifact{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		StoragePath:   res.StoragePath,
		Hybrid:        res.Hybrid,
		XMLDigest:     res.XMLDigest,
		Warnings:      res.Warnings,
		RunID:         res.RunID,
		Reissued:      reissue && inv.AlreadySent(),
		GeneratedAt:   uc.now().UTC(),
	}
	if uc.storeXML {
		artifact.XMLContent = res.XML
	}
	// El PDF ya está guardado; repetir Generate sobrescribe la misma ruta.
	if err := uc.artifactRepo.Upsert(ctx, artifact); err != nil {
		return nil, fmt.Errorf("einvoice: registrar artefacto: %w", err)
	}
	return artifactToResponse(artifact), nil
}

// PreviewXML devuelve el XML CII que se incrustaría, sin renderizar ni guardar nada.
func (uc *EInvoiceUseCase) PreviewXML(ctx context.Context, invoiceID string) (string, error) {
	_, doc, err := uc.load(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	xmlText, _, _, err := uc.pipeline.BuildXML(doc)
	if err != nil {
		return "", err
	}
	return xmlText, nil
}

// DownloadPDF devuelve el último PDF generado para la factura y un nombre de archivo.
func (uc *EInvoiceUseCase) DownloadPDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	artifact, err := uc.artifactRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("einvoice: obtener artefacto: %w", err)
	}
	if artifact == nil {
		return nil, "", fmt.Errorf("%w: la factura %s aún no tiene factura electrónica", domain.ErrNotFound, invoiceID)
	}
	data, err := uc.store.Open(ctx, artifact.StoragePath)
	if err != nil {
		return nil, "", err
	}
	return data, path.Base(artifact.StoragePath), nil
}

// GenerateMonth genera las facturas finalizadas cuyo periodo termina en year/month.
// Un fallo individual no detiene el lote; solo la cancelación de ctx lo interrumpe.
func (uc *EInvoiceUseCase) GenerateMonth(ctx context.Context, year, month int) (*dto.BatchReport, error) {
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return nil, fmt.Errorf("%w: periodo %04d-%02d", domain.ErrInvalidInput, year, month)
	}
	invoices, err := uc.invoiceRepo.ListFinalizedByPeriod(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("einvoice: listar facturas del periodo: %w", err)
	}

	report := &dto.BatchReport{Year: year, Month: month, Items: make([]dto.BatchItem, 0, len(invoices))}
	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		item := dto.BatchItem{InvoiceID: inv.ID, InvoiceNumber: inv.InvoiceNumber}
		res, err := uc.Generate(ctx, inv.ID, false)
		switch {
		case err == nil && res.Hybrid:
			item.Outcome = dto.BatchOutcomeHybrid
			item.StoragePath = res.StoragePath
		case err == nil:
			item.Outcome = dto.BatchOutcomePlain
			item.StoragePath = res.StoragePath
		case einvoice.IsRetryable(err):
			item.Outcome = dto.BatchOutcomeRetryable
			item.Error = err.Error()
		default:
			item.Outcome = dto.BatchOutcomeFailed
			item.Error = err.Error()
		}
		report.Add(item)
	}

	uc.log.Info().
		Int("year", year).Int("month", month).
		Int("total", report.Total).Int("hybrid", report.Hybrid).Int("plain", report.Plain).
		Int("retryable", report.Retryable).Int("failed", report.Failed).
		Msg("lote mensual terminado")
	return report, nil
}

// load carga la factura y sus datos relacionados y arma el documento.
func (uc *EInvoiceUseCase) load(ctx context.Context, invoiceID string) (*entity.CommissionInvoice, einvoice.InvoiceDocument, error) {
	// ── 1. Factura ────────────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("einvoice: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, einvoice.InvoiceDocument{}, domain.ErrNotFound
	}
	switch inv.Status {
	case entity.CommissionStatusDraft, entity.CommissionStatusCancelled:
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("%w: la factura %s está en estado %s",
			domain.ErrConflict, inv.InvoiceNumber, inv.Status)
	}

	// ── 2. Líneas ─────────────────────────────────────────────────────────────
	lines, err := uc.invoiceRepo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("einvoice: obtener líneas: %w", err)
	}

	// ── 3. Taller y empresa ───────────────────────────────────────────────────
	workshop, err := uc.workshopRepo.GetByID(ctx, inv.WorkshopID)
	if err != nil {
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("einvoice: obtener taller: %w", err)
	}
	if workshop == nil {
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("%w: taller %s", domain.ErrNotFound, inv.WorkshopID)
	}
	settings, err := uc.settingsRepo.Get(ctx)
	if err != nil {
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("einvoice: obtener configuración: %w", err)
	}
	if settings == nil {
		return nil, einvoice.InvoiceDocument{}, fmt.Errorf("%w: configuración de la empresa", domain.ErrNotFound)
	}

	return inv, MapInvoiceDocument(inv, lines, workshop, settings), nil
}

func artifactToResponse(a *entity.EInvoiceArtifact) *dto.EInvoiceResponse {
	return &dto.EInvoiceResponse{
		InvoiceID:     a.InvoiceID,
		InvoiceNumber: a.InvoiceNumber,
		StoragePath:   a.StoragePath,
		Hybrid:        a.Hybrid,
		Warnings:      a.Warnings,
		XMLDigest:     a.XMLDigest,
		RunID:         a.RunID,
		Reissued:      a.Reissued,
		GeneratedAt:   a.GeneratedAt,
	}
}

// IsClientError informa si err se debe a los datos de la factura y no a la infraestructura.
func IsClientError(err error) bool {
	return errors.Is(err, einvoice.ErrInvalidDocument) || errors.Is(err, domain.ErrAlreadySent) ||
		errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound)
}
