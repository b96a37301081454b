package facturx

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// Summary datos de cabecera leídos de un XML CrossIndustryInvoice.
type Summary struct {
	GuidelineID   string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Currency      string
	LineCount     int
	NetTotal      decimal.Decimal
	VATTotal      decimal.Decimal
	GrossTotal    decimal.Decimal
	VATPercent    decimal.Decimal
}

// ParseSummary vuelve a leer el XML generado (o extraído de un PDF).
func ParseSummary(xmlText []byte) (*Summary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlText); err != nil {
		return nil, fmt.Errorf("facturx: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "CrossIndustryInvoice" || root.NamespaceURI() != NsRsm {
		return nil, fmt.Errorf("facturx: la raíz no es rsm:CrossIndustryInvoice")
	}

	text := func(path string) string {
		if el := root.FindElement(path); el != nil {
			return el.Text()
		}
		return ""
	}
	amount := func(path string) (decimal.Decimal, error) {
		raw := text(path)
		if raw == "" {
			return decimal.Zero, fmt.Errorf("facturx: falta %s", path)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("facturx: importe inválido en %s: %w", path, err)
		}
		return d, nil
	}

	const settlement = "./rsm:SupplyChainTradeTransaction/ram:ApplicableHeaderTradeSettlement/"
	const summation = settlement + "ram:SpecifiedTradeSettlementHeaderMonetarySummation/"

	s := &Summary{
		GuidelineID:   text("./rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID"),
		InvoiceNumber: text("./rsm:ExchangedDocument/ram:ID"),
		IssueDate:     text("./rsm:ExchangedDocument/ram:IssueDateTime/udt:DateTimeString"),
		DueDate:       text(settlement + "ram:SpecifiedTradePaymentTerms/ram:DueDateDateTime/udt:DateTimeString"),
		Currency:      text(settlement + "ram:InvoiceCurrencyCode"),
		LineCount:     len(root.FindElements("./rsm:SupplyChainTradeTransaction/ram:IncludedSupplyChainTradeLineItem")),
	}
	var err error
	if s.NetTotal, err = amount(summation + "ram:TaxBasisTotalAmount"); err != nil {
		return nil, err
	}
	if s.VATTotal, err = amount(summation + "ram:TaxTotalAmount"); err != nil {
		return nil, err
	}
	if s.GrossTotal, err = amount(summation + "ram:GrandTotalAmount"); err != nil {
		return nil, err
	}
	if s.VATPercent, err = amount(settlement + "ram:ApplicableTradeTax/ram:RateApplicablePercent"); err != nil {
		return nil, err
	}
	return s, nil
}
