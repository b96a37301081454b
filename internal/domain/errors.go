package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	// ErrAlreadySent: la factura ya fue enviada al taller; regenerarla exige reemisión explícita.
	ErrAlreadySent = errors.New("la factura ya fue enviada; se requiere reemisión explícita")
)
