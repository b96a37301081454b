package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Reifenservice-api/internal/application/billing"
)

func newBatchCmd() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:     "batch",
		Short:   "Genera las facturas finalizadas de un mes",
		Example: `  einvoice batch --year 2025 --month 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUseCase(cmd, func(ctx context.Context, uc *billing.EInvoiceUseCase) error {
				report, err := uc.GenerateMonth(ctx, year, month)
				if report != nil {
					if perr := printJSON(cmd, report); perr != nil {
						return perr
					}
				}
				if err != nil {
					return err
				}
				if report.Failed > 0 || report.Retryable > 0 {
					return fmt.Errorf("lote %04d-%02d: %d fallidas, %d reintentables",
						year, month, report.Failed, report.Retryable)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "año del periodo de facturación")
	cmd.Flags().IntVar(&month, "month", 0, "mes del periodo de facturación (1-12)")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
