package entity

import "time"

// Workshop taller asociado al marketplace; es el receptor de la factura de comisión.
type Workshop struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Street     string
	PostalCode string
	City       string
	Country    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
