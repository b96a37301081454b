package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	appbilling "github.com/jhoicas/Reifenservice-api/internal/application/billing"
)

var _ appbilling.AttachmentVerifier = (*PdfcpuVerifier)(nil)

var disableConfigDir sync.Once

// PdfcpuVerifier relee el PDF híbrido con pdfcpu, un lector independiente del que
// escribió la actualización incremental.
type PdfcpuVerifier struct {
	conf *model.Configuration
}

// NewPdfcpuVerifier construye el verificador en modo de validación relajado.
func NewPdfcpuVerifier() *PdfcpuVerifier {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PdfcpuVerifier{conf: conf}
}

// Verify comprueba que fileName está adjunto y que su contenido coincide con want.
func (v *PdfcpuVerifier) Verify(ctx context.Context, pdf []byte, fileName string, want []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	attachments, err := api.ExtractAttachmentsRaw(bytes.NewReader(pdf), "", []string{fileName}, v.conf)
	if err != nil {
		return fmt.Errorf("pdfcpu: leer adjuntos: %w", err)
	}
	for _, a := range attachments {
		if a.FileName != fileName {
			continue
		}
		got, err := io.ReadAll(a)
		if err != nil {
			return fmt.Errorf("pdfcpu: leer %s: %w", fileName, err)
		}
		if !bytes.Equal(got, want) {
			return fmt.Errorf("pdfcpu: el contenido de %s no coincide (%d bytes, esperados %d)", fileName, len(got), len(want))
		}
		return nil
	}
	return fmt.Errorf("pdfcpu: adjunto %s no encontrado", fileName)
}
