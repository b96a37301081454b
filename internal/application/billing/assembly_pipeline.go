package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reifenservice-api/internal/domain"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/facturx"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
	"github.com/jhoicas/Reifenservice-api/pkg/logger"
)

// PipelineConfig parámetros del ensamblado.
type PipelineConfig struct {
	RenderTimeout      time.Duration
	AllowMixedVATRates bool
	AFRelationship     string // Alternative por defecto
	VerifyAttachment   bool
}

// AssemblyRequest entrada de una ejecución del pipeline.
type AssemblyRequest struct {
	Document    einvoice.InvoiceDocument
	AlreadySent bool // la factura ya salió hacia el taller
	Reissue     bool // autoriza regenerar una factura ya enviada
}

// AssemblyResult salida de una ejecución correcta.
type AssemblyResult struct {
	RunID         string
	InvoiceNumber string
	StoragePath   string // relativa a la raíz del DocumentStore
	Hybrid        bool
	Warnings      []string
	XML           string
	XMLDigest     string
	MixedVATRates bool
}

// AssemblyPipeline ensambla la factura híbrida ZUGFeRD / Factur-X:
//
//	estado → validación → XML → render (con plazo) → incrustación → verificación → almacén
//
// Cada ejecución trabaja sobre su propio árbol y sus propios buffers; el pipeline
// puede usarse desde varias goroutines.
type AssemblyPipeline struct {
	builder  *facturx.XMLBuilderService
	renderer InvoiceRenderer
	embedder AttachmentEmbedder
	verifier AttachmentVerifier // nil = sin verificación
	store    DocumentStore
	metrics  AssemblyMetrics
	log      *logger.Logger
	cfg      PipelineConfig
	newRunID func() string
}

// NewAssemblyPipeline construye el pipeline. verifier y metrics pueden ser nil.
func NewAssemblyPipeline(
	renderer InvoiceRenderer,
	embedder AttachmentEmbedder,
	verifier AttachmentVerifier,
	store DocumentStore,
	metrics AssemblyMetrics,
	log *logger.Logger,
	cfg PipelineConfig,
) *AssemblyPipeline {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	if cfg.AFRelationship == "" {
		cfg.AFRelationship = hybrid.RelationshipAlternative
	}
	return &AssemblyPipeline{
		builder:  facturx.NewXMLBuilderService(),
		renderer: renderer,
		embedder: embedder,
		verifier: verifier,
		store:    store,
		metrics:  metrics,
		log:      log.Component("einvoice_pipeline"),
		cfg:      cfg,
		newRunID: func() string { return uuid.New().String() },
	}
}

// BuildXML valida el documento y devuelve el XML CII serializado y su digest.
// No tiene efectos secundarios.
func (p *AssemblyPipeline) BuildXML(doc einvoice.InvoiceDocument) (xmlText, digest string, mixed bool, err error) {
	valid, err := einvoice.Validate(doc, einvoice.ValidationOptions{AllowMixedVATRates: p.cfg.AllowMixedVATRates})
	if err != nil {
		return "", "", false, err
	}
	xmlText, err = facturx.Serialize(p.builder.Build(valid))
	if err != nil {
		return "", "", false, err
	}
	digest, err = facturx.Digest(xmlText)
	if err != nil {
		return "", "", false, err
	}
	return xmlText, digest, valid.MixedVATRates(), nil
}

// Assemble ejecuta el pipeline completo. La ruta de almacenamiento y el XML dependen solo
// del documento: dos ejecuciones con la misma entrada producen la misma ruta y el mismo XML.
//
// Errores:
//   - domain.ErrAlreadySent        factura ya enviada y sin Reissue.
//   - einvoice.ErrInvalidDocument  (vía *einvoice.ValidationError) antes de generar nada.
//   - *einvoice.RenderError        fallo o plazo agotado del render; reintentable.
//   - *einvoice.StorageError       fallo al escribir el PDF.
//
// Un fallo al incrustar o verificar no es un error: se guarda el PDF simple con un aviso.
func (p *AssemblyPipeline) Assemble(ctx context.Context, req AssemblyRequest) (*AssemblyResult, error) {
	doc := req.Document
	runID := p.newRunID()
	log := p.log.With().Str("run_id", runID).Str("invoice_number", doc.InvoiceNumber).Logger()

	// ── 1. Estado ─────────────────────────────────────────────────────────────
	if req.AlreadySent && !req.Reissue {
		p.metrics.IncAssembly(ResultRejected)
		log.Warn().Msg("factura ya enviada; regeneración no autorizada")
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadySent, doc.InvoiceNumber)
	}

	// ── 2-3. Validación + XML ─────────────────────────────────────────────────
	xmlText, digest, mixed, err := p.BuildXML(doc)
	if err != nil {
		if errors.Is(err, einvoice.ErrInvalidDocument) {
			p.metrics.IncAssembly(ResultInvalid)
			log.Warn().Err(err).Int("violations", len(einvoice.ValidationErrors(err))).Msg("documento rechazado")
			return nil, err
		}
		p.metrics.IncAssembly(ResultFailed)
		log.Error().Err(err).Msg("no se pudo generar el XML")
		return nil, fmt.Errorf("einvoice: generar XML: %w", err)
	}
	res := &AssemblyResult{
		RunID:         runID,
		InvoiceNumber: doc.InvoiceNumber,
		XML:           xmlText,
		XMLDigest:     digest,
		MixedVATRates: mixed,
	}
	if mixed {
		res.Warnings = append(res.Warnings, "tasas de IVA mixtas: la tasa de cabecera es un promedio ponderado")
	}
	log.Debug().Str("xml_digest", digest).Msg("XML generado")

	// ── 4. Representación gráfica ─────────────────────────────────────────────
	plain, err := p.render(ctx, doc)
	if err != nil {
		if einvoice.IsRetryable(err) {
			p.metrics.IncAssembly(ResultRetryable)
		} else {
			p.metrics.IncAssembly(ResultFailed)
		}
		log.Error().Err(err).Bool("retryable", einvoice.IsRetryable(err)).Msg("render fallido")
		return nil, err
	}

	// ── 5. Incrustación ───────────────────────────────────────────────────────
	final := plain
	hybridPDF, err := p.embedder.Embed(plain, []byte(xmlText), hybrid.EmbedOptions{
		FileName:     einvoice.AttachmentFileName,
		Relationship: p.cfg.AFRelationship,
		ModDate:      modDate(doc.IssueDate),
		AddMetadata:  true,
		Title:        "Rechnung " + doc.InvoiceNumber,
	})
	if err != nil {
		res.Warnings = append(res.Warnings, "PDF sin XML incrustado: "+err.Error())
		log.Warn().Err(err).Bool("skipped", errors.Is(err, einvoice.ErrEmbeddingSkipped)).
			Msg("incrustación fallida, se guarda el PDF simple")
	} else {
		final = hybridPDF
		res.Hybrid = true
	}

	// ── 6. Verificación independiente ─────────────────────────────────────────
	if res.Hybrid && p.cfg.VerifyAttachment && p.verifier != nil {
		if err := p.verifier.Verify(ctx, final, einvoice.AttachmentFileName, []byte(xmlText)); err != nil {
			res.Warnings = append(res.Warnings, "verificación del adjunto fallida: "+err.Error())
			log.Warn().Err(err).Msg("adjunto no verificable, se guarda el PDF simple")
			final = plain
			res.Hybrid = false
		}
	}

	// ── 7. Almacenamiento ─────────────────────────────────────────────────────
	path := einvoice.StoragePath(doc.InvoiceNumber, doc.BillingPeriod.End)
	if err := p.store.Save(ctx, path, final); err != nil {
		var se *einvoice.StorageError
		if !errors.As(err, &se) {
			err = &einvoice.StorageError{Path: path, Op: "save", Err: err}
		}
		p.metrics.IncAssembly(ResultFailed)
		log.Error().Err(err).Str("path", path).Msg("no se pudo guardar el PDF")
		return nil, err
	}
	res.StoragePath = path

	if res.Hybrid {
		p.metrics.IncAssembly(ResultHybrid)
	} else {
		p.metrics.IncAssembly(ResultPlain)
	}
	ev := log.Info()
	if len(res.Warnings) > 0 {
		ev = log.Warn().Strs("warnings", res.Warnings)
	}
	ev.Str("path", path).Bool("hybrid", res.Hybrid).Int("bytes", len(final)).Msg("factura electrónica guardada")
	return res, nil
}

// render llama al servicio con el plazo configurado. Cualquier fallo se devuelve como
// *einvoice.RenderError; un plazo agotado siempre es reintentable.
func (p *AssemblyPipeline) render(ctx context.Context, doc einvoice.InvoiceDocument) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, p.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.renderer.Render(rctx, doc.Clone())
	p.metrics.ObserveRender(time.Since(start))

	if err == nil && len(out) == 0 {
		err = errors.New("el servicio devolvió un PDF vacío")
	}
	if err == nil {
		return out, nil
	}
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(rctx.Err(), context.DeadlineExceeded)
	var re *einvoice.RenderError
	if errors.As(err, &re) {
		return nil, &einvoice.RenderError{Retryable: re.Retryable || timeout, Timeout: re.Timeout || timeout, Err: re.Err}
	}
	return nil, &einvoice.RenderError{Retryable: true, Timeout: timeout, Err: err}
}

// modDate fecha de modificación del adjunto: la fecha de emisión a medianoche UTC,
// para que la salida no dependa del reloj.
func modDate(d einvoice.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
