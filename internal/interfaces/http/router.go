package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Reifenservice-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EInvoice    EInvoiceService
	ServiceName string
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Rutas protegidas: Bearer Token con rol de administración o contabilidad.
	api := app.Group("/api",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireRole(jwt.RoleAdmin, jwt.RoleAccounting),
	)

	h := NewEInvoiceHandler(deps.EInvoice)

	invoices := api.Group("/commission-invoices")
	invoices.Post("/:id/einvoice", h.Generate)
	invoices.Get("/:id/einvoice/xml", h.PreviewXML)
	invoices.Get("/:id/einvoice/pdf", h.DownloadPDF)

	api.Post("/einvoices/batch", h.Batch)
}
