package entity

import "time"

// EInvoiceArtifact resultado persistido de una generación de factura electrónica.
type EInvoiceArtifact struct {
	ID            string
	InvoiceID     string
	InvoiceNumber string
	StoragePath   string // relativa a la raíz de almacenamiento
	Hybrid        bool   // false = PDF simple sin XML incrustado
	XMLDigest     string // SHA-256 de la forma canónica
	XMLContent    string
	Warnings      []string
	RunID         string
	Reissued      bool
	GeneratedAt   time.Time
}
