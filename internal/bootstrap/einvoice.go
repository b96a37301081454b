// Package bootstrap arma el grafo de dependencias compartido por la API y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Reifenservice-api/internal/application/billing"
	infrapdf "github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/storage"
	"github.com/jhoicas/Reifenservice-api/internal/observability/metrics"
	"github.com/jhoicas/Reifenservice-api/pkg/config"
	"github.com/jhoicas/Reifenservice-api/pkg/logger"
)

// EInvoice servicios listos para usar; Close libera el pool de PostgreSQL.
type EInvoice struct {
	UseCase *billing.EInvoiceUseCase
	Store   *storage.FileStore
	pool    *pgxpool.Pool
}

// Close cierra las conexiones abiertas.
func (e *EInvoice) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// NewEInvoice conecta a PostgreSQL y construye el caso de uso de factura electrónica.
func NewEInvoice(ctx context.Context, cfg *config.Config, log *logger.Logger) (*EInvoice, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	invoiceRepo := postgres.NewCommissionInvoiceRepository(pool)
	workshopRepo := postgres.NewWorkshopRepository(pool)
	settingsRepo := postgres.NewCompanySettingsRepository(pool)
	artifactRepo := postgres.NewEInvoiceArtifactRepository(pool)

	store := storage.NewFileStore(cfg.EInvoice.StorageRoot)
	pipeline := NewPipeline(cfg.EInvoice, store, log)

	uc := billing.NewEInvoiceUseCase(
		invoiceRepo, workshopRepo, settingsRepo, artifactRepo,
		pipeline, store, log, cfg.EInvoice.StoreXMLContent,
	)
	return &EInvoice{UseCase: uc, Store: store, pool: pool}, nil
}

// NewPipeline render (maroto) → incrustación → verificación (pdfcpu) → almacén.
func NewPipeline(cfg config.EInvoiceConfig, store billing.DocumentStore, log *logger.Logger) *billing.AssemblyPipeline {
	// Interfaz nil explícita: un *PdfcpuVerifier nil no desactivaría la verificación.
	var verifier billing.AttachmentVerifier
	if cfg.VerifyAttachment {
		verifier = infrapdf.NewPdfcpuVerifier()
	}
	return billing.NewAssemblyPipeline(
		infrapdf.NewMarotoRenderer(),
		hybrid.NewEmbedder(),
		verifier,
		store,
		metrics.Default(),
		log,
		billing.PipelineConfig{
			RenderTimeout:      cfg.RenderTimeout(),
			AllowMixedVATRates: cfg.AllowMixedVATRates,
			AFRelationship:     cfg.AFRelationship,
			VerifyAttachment:   cfg.VerifyAttachment,
		},
	)
}
