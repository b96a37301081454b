package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reifenservice-api/internal/domain/entity"
	"github.com/jhoicas/Reifenservice-api/internal/domain/repository"
)

var _ repository.CompanySettingsRepository = (*CompanySettingsRepo)(nil)

// CompanySettingsRepo lee la fila única de configuración de la empresa.
type CompanySettingsRepo struct {
	q Querier
}

// NewCompanySettingsRepository construye el adaptador.
func NewCompanySettingsRepository(q Querier) *CompanySettingsRepo {
	return &CompanySettingsRepo{q: q}
}

// Get devuelve la configuración vigente o nil si aún no existe.
func (r *CompanySettingsRepo) Get(ctx context.Context) (*entity.CompanySettings, error) {
	query := `
		SELECT id, company_name, street, postal_code, city, country_code, vat_id, email, phone,
		       payment_term_days, updated_at
		FROM company_settings ORDER BY updated_at DESC LIMIT 1`
	var s entity.CompanySettings
	var street, postal, city, country, vatID, email, phone *string
	var term *int
	err := r.q.QueryRow(ctx, query).Scan(
		&s.ID, &s.CompanyName, &street, &postal, &city, &country, &vatID, &email, &phone,
		&term, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company settings: %w", err)
	}
	s.Street = stringOrEmpty(street)
	s.PostalCode = stringOrEmpty(postal)
	s.City = stringOrEmpty(city)
	s.CountryCode = stringOrEmpty(country)
	s.VATID = stringOrEmpty(vatID)
	s.Email = stringOrEmpty(email)
	s.Phone = stringOrEmpty(phone)
	if term != nil {
		s.PaymentTermDays = *term
	}
	return &s, nil
}
