package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
)

// InvoiceRenderer genera la representación gráfica (PDF) de la factura.
// Debe respetar la cancelación de ctx; el pipeline le impone un plazo.
type InvoiceRenderer interface {
	Render(ctx context.Context, doc einvoice.InvoiceDocument) ([]byte, error)
}

// AttachmentEmbedder incrusta el XML como archivo asociado del PDF.
// Devuelve einvoice.ErrEmbeddingSkipped o *einvoice.EmbeddingError cuando no puede.
type AttachmentEmbedder interface {
	Embed(pdf, xml []byte, opts hybrid.EmbedOptions) ([]byte, error)
}

// AttachmentVerifier relee el PDF final con un lector independiente y comprueba que
// el adjunto fileName existe y coincide con want.
type AttachmentVerifier interface {
	Verify(ctx context.Context, pdf []byte, fileName string, want []byte) error
}

// DocumentStore almacén de PDF; las rutas son relativas a su raíz.
type DocumentStore interface {
	Save(ctx context.Context, path string, data []byte) error
	Open(ctx context.Context, path string) ([]byte, error)
}

// Resultados registrados por AssemblyMetrics.IncAssembly.
const (
	ResultHybrid    = "hybrid"
	ResultPlain     = "plain"
	ResultRejected  = "rejected"
	ResultInvalid   = "invalid"
	ResultRetryable = "retryable"
	ResultFailed    = "failed"
)

// AssemblyMetrics contadores del pipeline.
type AssemblyMetrics interface {
	IncAssembly(result string)
	ObserveRender(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) IncAssembly(string)          {}
func (nopMetrics) ObserveRender(time.Duration) {}
