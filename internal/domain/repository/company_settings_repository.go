package repository

import (
	"context"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
)

// CompanySettingsRepository configuración única de la empresa emisora.
type CompanySettingsRepository interface {
	Get(ctx context.Context) (*entity.CompanySettings, error)
}
