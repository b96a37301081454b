package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
	"github.com/jhoicas/Reifenservice-api/internal/domain/repository"
)

var _ repository.EInvoiceArtifactRepository = (*EInvoiceArtifactRepo)(nil)

// EInvoiceArtifactRepo persiste el resultado de cada generación (una fila por factura).
type EInvoiceArtifactRepo struct {
	q Querier
}

// NewEInvoiceArtifactRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEInvoiceArtifactRepository(q Querier) *EInvoiceArtifactRepo {
	return &EInvoiceArtifactRepo{q: q}
}

// Upsert inserta el artefacto o reemplaza el existente de la misma factura.
func (r *EInvoiceArtifactRepo) Upsert(ctx context.Context, a *entity.EInvoiceArtifact) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Warnings == nil {
		a.Warnings = []string{}
	}
	query := `
		INSERT INTO einvoice_artifacts (id, invoice_id, invoice_number, storage_path, hybrid, xml_digest,
		                                xml_content, warnings, run_id, reissued, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (invoice_id) DO UPDATE
		SET invoice_number = EXCLUDED.invoice_number,
		    storage_path   = EXCLUDED.storage_path,
		    hybrid         = EXCLUDED.hybrid,
		    xml_digest     = EXCLUDED.xml_digest,
		    xml_content    = EXCLUDED.xml_content,
		    warnings       = EXCLUDED.warnings,
		    run_id         = EXCLUDED.run_id,
		    reissued       = EXCLUDED.reissued,
		    generated_at   = EXCLUDED.generated_at
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.ID, a.InvoiceID, a.InvoiceNumber, a.StoragePath, a.Hybrid, a.XMLDigest,
		nullIfEmpty(a.XMLContent), a.Warnings, a.RunID, a.Reissued, a.GeneratedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("einvoice artifact path already in use: %w", err)
		}
		return fmt.Errorf("upsert einvoice artifact: %w", err)
	}
	return nil
}

// GetByInvoiceID devuelve el último artefacto de la factura o nil.
func (r *EInvoiceArtifactRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.EInvoiceArtifact, error) {
	query := `
		SELECT id, invoice_id, invoice_number, storage_path, hybrid, xml_digest, xml_content,
		       warnings, run_id, reissued, generated_at
		FROM einvoice_artifacts WHERE invoice_id = $1`
	var a entity.EInvoiceArtifact
	var xml *string
	err := r.q.QueryRow(ctx, query, invoiceID).Scan(
		&a.ID, &a.InvoiceID, &a.InvoiceNumber, &a.StoragePath, &a.Hybrid, &a.XMLDigest, &xml,
		&a.Warnings, &a.RunID, &a.Reissued, &a.GeneratedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get einvoice artifact: %w", err)
	}
	a.XMLContent = stringOrEmpty(xml)
	return &a, nil
}
