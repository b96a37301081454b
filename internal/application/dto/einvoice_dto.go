package dto

import "time"

// EInvoiceResponse resultado de POST /api/commission-invoices/:id/einvoice.
type EInvoiceResponse struct {
	InvoiceID     string    `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	StoragePath   string    `json:"storage_path"`
	Hybrid        bool      `json:"hybrid"`
	Warnings      []string  `json:"warnings,omitempty"`
	XMLDigest     string    `json:"xml_digest"`
	RunID         string    `json:"run_id"`
	Reissued      bool      `json:"reissued"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// BatchRequest body para POST /api/einvoices/batch.
type BatchRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=9999"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// Resultados posibles de un elemento del lote.
const (
	BatchOutcomeHybrid    = "hybrid"
	BatchOutcomePlain     = "plain"
	BatchOutcomeRetryable = "retryable"
	BatchOutcomeFailed    = "failed"
)

// BatchItem resultado por factura dentro de un lote mensual.
type BatchItem struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Outcome       string `json:"outcome"`
	StoragePath   string `json:"storage_path,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchReport resumen de GenerateMonth.
type BatchReport struct {
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Total     int         `json:"total"`
	Hybrid    int         `json:"hybrid"`
	Plain     int         `json:"plain"`
	Retryable int         `json:"retryable"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
}

// Add registra un elemento y actualiza los contadores.
func (r *BatchReport) Add(item BatchItem) {
	r.Total++
	switch item.Outcome {
	case BatchOutcomeHybrid:
		r.Hybrid++
	case BatchOutcomePlain:
		r.Plain++
	case BatchOutcomeRetryable:
		r.Retryable++
	default:
		r.Failed++
	}
	r.Items = append(r.Items, item)
}
