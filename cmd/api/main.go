// Regenera docs/swagger.json a partir de las anotaciones de los handlers.
//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init -g cmd/api/main.go -d ../.. -o ../../docs --outputTypes json --parseInternal

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Reifenservice-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/Reifenservice-api/internal/interfaces/http"
	"github.com/jhoicas/Reifenservice-api/pkg/config"
	"github.com/jhoicas/Reifenservice-api/pkg/logger"
)

// @title                       Reifenservice E-Rechnung API
// @version                     1.0
// @description                 Generación de facturas de comisión híbridas ZUGFeRD 2.2 / Factur-X EXTENDED.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <JWT>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("configuración inválida: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage_root", cfg.EInvoice.StorageRoot).
		Bool("verify_attachment", cfg.EInvoice.VerifyAttachment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	svc, err := bootstrap.NewEInvoice(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	// El renderizado puede acercarse a RenderTimeout; el WriteTimeout deja margen.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.EInvoice.RenderTimeout() + 10*time.Second,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    1 << 20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Reifenservice E-Rechnung API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		EInvoice:    svc.UseCase,
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
