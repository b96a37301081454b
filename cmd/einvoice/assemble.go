package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Reifenservice-api/internal/application/billing"
)

func newAssembleCmd() *cobra.Command {
	var (
		id      string
		reissue bool
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Genera el PDF híbrido de una factura de comisión",
		Example: `  einvoice assemble --id 7b1c...
  einvoice assemble --id 7b1c... --reissue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUseCase(cmd, func(ctx context.Context, uc *billing.EInvoiceUseCase) error {
				res, err := uc.Generate(ctx, id, reissue)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id de la factura de comisión")
	cmd.Flags().BoolVar(&reissue, "reissue", false, "regenerar aunque ya se haya enviado")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newXMLCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "xml",
		Short: "Imprime el XML CII de una factura sin generar el PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUseCase(cmd, func(ctx context.Context, uc *billing.EInvoiceUseCase) error {
				xmlText, err := uc.PreviewXML(ctx, id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), xmlText)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id de la factura de comisión")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
