package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Reifenservice-api/internal/application/billing"
	"github.com/jhoicas/Reifenservice-api/internal/bootstrap"
	"github.com/jhoicas/Reifenservice-api/pkg/config"
	"github.com/jhoicas/Reifenservice-api/pkg/logger"
)

// Códigos de salida.
const (
	exitOK          = 0
	exitFailure     = 1 // infraestructura: base de datos, render, almacén
	exitInvalidData = 2 // datos de la factura: validación, estado, no encontrada
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "einvoice",
		Short:         "Facturas de comisión ZUGFeRD / Factur-X",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "nivel de log (trace, debug, info, warn, error)")
	root.AddCommand(newAssembleCmd(), newBatchCmd(), newXMLCmd(), newInspectCmd())
	return root
}

func execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if billing.IsClientError(err) {
			return exitInvalidData
		}
		return exitFailure
	}
	return exitOK
}

// withUseCase carga la configuración, conecta y ejecuta fn con el caso de uso.
func withUseCase(cmd *cobra.Command, fn func(ctx context.Context, uc *billing.EInvoiceUseCase) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuración inválida: %w", err)
	}
	level := cfg.Log.Level
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level}).Component("cli")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := bootstrap.NewEInvoice(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc.UseCase)
}
