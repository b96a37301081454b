package einvoice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidDocument agrupa los errores de validación del documento.
var ErrInvalidDocument = errors.New("documento de factura electrónica inválido")

// Tipos de violación.
const (
	KindAmountMismatch       = "AMOUNT_MISMATCH"
	KindMissingRequiredField = "MISSING_REQUIRED_FIELD"
	KindDateOrder            = "DATE_ORDER"
	KindMixedVATRates        = "MIXED_VAT_RATES"
)

// ValidationError describe una violación concreta. Line es 1-based; 0 indica la cabecera.
type ValidationError struct {
	Kind     string
	Check    string
	Field    string
	Expected decimal.Decimal
	Observed decimal.Decimal
	Delta    decimal.Decimal
	Line     int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindAmountMismatch:
		where := ""
		if e.Line > 0 {
			where = fmt.Sprintf(" (línea %d)", e.Line)
		}
		return fmt.Sprintf("%s: %s%s esperado %s, observado %s, diferencia %s",
			e.Kind, e.Check, where, e.Expected.StringFixed(2), e.Observed.StringFixed(2), e.Delta.StringFixed(2))
	case KindMissingRequiredField:
		return fmt.Sprintf("%s: falta el campo obligatorio %s", e.Kind, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Check)
	}
}

// Is permite errors.Is(err, ErrInvalidDocument).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// ValidationErrors extrae las violaciones contenidas en err (incluido un errors.Join).
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// ── Errores de las etapas posteriores ──────────────────────────────────────

// ErrEmbeddingSkipped: el PDF no tiene marcador %%EOF; se devuelve sin cambios.
var ErrEmbeddingSkipped = errors.New("facturx: PDF sin marcador %%EOF, adjunto omitido")

// EmbeddingError: la estructura del PDF no se pudo interpretar. Es recuperable (PDF simple).
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("facturx: no se pudo incrustar el XML: %s: %v", e.Reason, e.Err)
	}
	return "facturx: no se pudo incrustar el XML: " + e.Reason
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// RenderError: fallo del servicio de renderizado. Sin efectos secundarios.
type RenderError struct {
	Retryable bool
	Timeout   bool
	Err       error
}

func (e *RenderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("render: tiempo de espera agotado: %v", e.Err)
	}
	return fmt.Sprintf("render: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// StorageError: fallo de E/S al persistir el PDF. Fatal.
type StorageError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsRetryable informa si err proviene de un renderizado reintentable.
func IsRetryable(err error) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Retryable
}
