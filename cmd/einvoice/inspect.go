package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/facturx"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
)

// inspectOutput resumen de un PDF híbrido.
type inspectOutput struct {
	File          string   `json:"file"`
	Attachments   []string `json:"attachments"`
	Relationship  string   `json:"af_relationship,omitempty"`
	GuidelineID   string   `json:"guideline_id"`
	InvoiceNumber string   `json:"invoice_number"`
	IssueDate     string   `json:"issue_date"`
	DueDate       string   `json:"due_date,omitempty"`
	Currency      string   `json:"currency"`
	Lines         int      `json:"lines"`
	NetTotal      string   `json:"net_total"`
	VATPercent    string   `json:"vat_percent"`
	VATTotal      string   `json:"vat_total"`
	GrossTotal    string   `json:"gross_total"`
}

func newInspectCmd() *cobra.Command {
	var dumpXML bool
	cmd := &cobra.Command{
		Use:   "inspect <archivo.pdf>",
		Short: "Lee el factur-x.xml incrustado en un PDF y muestra su resumen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			attachments, err := hybrid.ReadAttachments(data)
			if err != nil {
				return err
			}
			if dumpXML {
				att, err := hybrid.FindAttachment(attachments, einvoice.AttachmentFileName)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(att.Data)
				return err
			}
			out, err := inspectPDF(args[0], attachments)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&dumpXML, "xml", false, "imprimir el XML incrustado en lugar del resumen")
	return cmd
}

func inspectPDF(name string, attachments []hybrid.Attachment) (*inspectOutput, error) {
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.Name)
	}
	att, err := hybrid.FindAttachment(attachments, einvoice.AttachmentFileName)
	if err != nil {
		return nil, err
	}
	s, err := facturx.ParseSummary(att.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", einvoice.AttachmentFileName, err)
	}
	return &inspectOutput{
		File:          name,
		Attachments:   names,
		Relationship:  att.Relationship,
		GuidelineID:   s.GuidelineID,
		InvoiceNumber: s.InvoiceNumber,
		IssueDate:     s.IssueDate,
		DueDate:       s.DueDate,
		Currency:      s.Currency,
		Lines:         s.LineCount,
		NetTotal:      s.NetTotal.StringFixed(2),
		VATPercent:    s.VATPercent.StringFixed(2),
		VATTotal:      s.VATTotal.StringFixed(2),
		GrossTotal:    s.GrossTotal.StringFixed(2),
	}, nil
}
