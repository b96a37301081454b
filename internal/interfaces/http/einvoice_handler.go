package http

import (
	"context"
	"errors"
	"mime"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reifenservice-api/internal/application/dto"
	"github.com/jhoicas/Reifenservice-api/internal/domain"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
)

// EInvoiceService operaciones de factura electrónica que expone la API.
// La implementa billing.EInvoiceUseCase.
type EInvoiceService interface {
	Generate(ctx context.Context, invoiceID string, reissue bool) (*dto.EInvoiceResponse, error)
	PreviewXML(ctx context.Context, invoiceID string) (string, error)
	DownloadPDF(ctx context.Context, invoiceID string) ([]byte, string, error)
	GenerateMonth(ctx context.Context, year, month int) (*dto.BatchReport, error)
}

var validate = validator.New()

// retryAfterSeconds valor de Retry-After cuando el renderizado falla de forma transitoria.
const retryAfterSeconds = 30

// EInvoiceHandler maneja las peticiones HTTP de factura electrónica (protegido).
type EInvoiceHandler struct {
	svc EInvoiceService
}

// NewEInvoiceHandler construye el handler.
func NewEInvoiceHandler(svc EInvoiceService) *EInvoiceHandler {
	return &EInvoiceHandler{svc: svc}
}

// Generate godoc
// @Summary      Generar PDF híbrido de una factura de comisión
// @Description  Ensambla el XML CII, lo valida y lo incrusta en el PDF. Con reissue=true se vuelve a generar una factura ya enviada.
// @Tags         einvoice
// @Security     Bearer
// @Produce      json
// @Param        id       path   string  true   "ID de la factura de comisión"
// @Param        reissue  query  bool    false  "Reemitir una factura ya enviada"
// @Success      201  {object}  dto.EInvoiceResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/commission-invoices/{id}/einvoice [post]
func (h *EInvoiceHandler) Generate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "id requerido"})
	}
	reissue := c.QueryBool("reissue", false)

	res, err := h.svc.Generate(c.UserContext(), id, reissue)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// PreviewXML godoc
// @Summary      XML CII sin generar el PDF
// @Tags         einvoice
// @Security     Bearer
// @Produce      xml
// @Param        id   path      string  true  "ID de la factura de comisión"
// @Success      200  {string}  string  "factur-x.xml"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/commission-invoices/{id}/einvoice/xml [get]
func (h *EInvoiceHandler) PreviewXML(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "id requerido"})
	}
	xmlText, err := h.svc.PreviewXML(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.SendString(xmlText)
}

// DownloadPDF godoc
// @Summary      Descargar el último PDF generado
// @Tags         einvoice
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura de comisión"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/commission-invoices/{id}/einvoice/pdf [get]
func (h *EInvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "id requerido"})
	}
	data, fileName, err := h.svc.DownloadPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentDisposition, disposition)
	return c.Send(data)
}

// Batch godoc
// @Summary      Generar las facturas finalizadas de un mes
// @Tags         einvoice
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "Periodo"
// @Success      200   {object}  dto.BatchReport
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/einvoices/batch [post]
func (h *EInvoiceHandler) Batch(c *fiber.Ctx) error {
	var in dto.BatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		var details []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fe.Field()+": "+fe.Tag())
			}
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "periodo inválido", Details: details})
	}
	report, err := h.svc.GenerateMonth(c.UserContext(), in.Year, in.Month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

// writeError traduce los errores del caso de uso a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var re *einvoice.RenderError
	switch {
	case errors.Is(err, einvoice.ErrInvalidDocument):
		details := make([]string, 0)
		for _, ve := range einvoice.ValidationErrors(err) {
			details = append(details, ve.Error())
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "la factura no supera la validación de importes", Details: details,
		})
	case errors.Is(err, domain.ErrAlreadySent):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_SENT", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.As(err, &re) && re.Retryable:
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RENDER_UNAVAILABLE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
