package repository

import (
	"context"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
)

// EInvoiceArtifactRepository guarda el último artefacto generado por factura.
type EInvoiceArtifactRepository interface {
	// Upsert inserta o reemplaza el artefacto de artifact.InvoiceID.
	Upsert(ctx context.Context, artifact *entity.EInvoiceArtifact) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.EInvoiceArtifact, error)
}
