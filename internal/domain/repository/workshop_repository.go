package repository

import (
	"context"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
)

// WorkshopRepository puerto de lectura de talleres.
type WorkshopRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Workshop, error)
}
