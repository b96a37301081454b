package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
	"github.com/jhoicas/Reifenservice-api/internal/domain/repository"
)

var _ repository.WorkshopRepository = (*WorkshopRepo)(nil)

// WorkshopRepo implementación del puerto WorkshopRepository sobre PostgreSQL.
type WorkshopRepo struct {
	q Querier
}

// NewWorkshopRepository construye el adaptador de persistencia para talleres.
func NewWorkshopRepository(q Querier) *WorkshopRepo {
	return &WorkshopRepo{q: q}
}

// GetByID obtiene un taller por ID.
func (r *WorkshopRepo) GetByID(ctx context.Context, id string) (*entity.Workshop, error) {
	query := `
		SELECT id, name, email, phone, street, postal_code, city, country, created_at, updated_at
		FROM workshops WHERE id = $1`
	var w entity.Workshop
	var email, phone, street, postal, city, country *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Name, &email, &phone, &street, &postal, &city, &country,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workshop: %w", err)
	}
	w.Email = stringOrEmpty(email)
	w.Phone = stringOrEmpty(phone)
	w.Street = stringOrEmpty(street)
	w.PostalCode = stringOrEmpty(postal)
	w.City = stringOrEmpty(city)
	w.Country = stringOrEmpty(country)
	return &w, nil
}
