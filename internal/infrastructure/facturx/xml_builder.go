package facturx

import (
	"strconv"
	"strings"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var hundred = decimal.NewFromInt(100)

// XMLBuilderService construye el árbol CrossIndustryInvoice de un documento validado.
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el árbol completo. No falla: el documento ya pasó la validación.
func (s *XMLBuilderService) Build(v einvoice.ValidDocument) Element {
	doc := v.Document()

	children := []Node{
		El(Rsm("ExchangedDocumentContext"),
			El(Ram("GuidelineSpecifiedDocumentContextParameter"),
				Leaf(Ram("ID"), einvoice.GuidelineExtended),
			),
		),
		El(Rsm("ExchangedDocument"),
			Leaf(Ram("ID"), clean(doc.InvoiceNumber)),
			Leaf(Ram("TypeCode"), einvoice.TypeCodeCommercial),
			dateTime(Ram("IssueDateTime"), doc.IssueDate),
		),
		s.transaction(doc),
	}
	return El(Rsm("CrossIndustryInvoice"), children...)
}

func (s *XMLBuilderService) transaction(doc einvoice.InvoiceDocument) Element {
	var nodes []Node
	for i, line := range doc.LineItems {
		nodes = append(nodes, lineItem(i+1, line))
	}
	nodes = append(nodes,
		El(Ram("ApplicableHeaderTradeAgreement"),
			sellerParty(doc.Seller),
			El(Ram("BuyerTradeParty"), Leaf(Ram("Name"), clean(doc.Buyer.Name))),
		),
		// Obligatorio por esquema aunque no haya datos de entrega.
		El(Ram("ApplicableHeaderTradeDelivery")),
		headerSettlement(doc),
	)
	return El(Rsm("SupplyChainTradeTransaction"), nodes...)
}

// ── Líneas ───────────────────────────────────────────────────────────────────

func lineItem(lineID int, l einvoice.LineItem) Element {
	unit := l.UnitCode
	if unit == "" {
		unit = einvoice.UnitCodePiece
	}
	return El(Ram("IncludedSupplyChainTradeLineItem"),
		El(Ram("AssociatedDocumentLineDocument"),
			Leaf(Ram("LineID"), strconv.Itoa(lineID)),
		),
		El(Ram("SpecifiedTradeProduct"),
			Leaf(Ram("Name"), clean(l.Description)),
		),
		El(Ram("SpecifiedLineTradeAgreement"),
			El(Ram("NetPriceProductTradePrice"),
				Leaf(Ram("ChargeAmount"), formatDecimal(l.UnitPrice)),
			),
		),
		El(Ram("SpecifiedLineTradeDelivery"),
			Leaf(Ram("BilledQuantity"), formatQuantity(l.Quantity), A("unitCode", unit)),
		),
		El(Ram("SpecifiedLineTradeSettlement"),
			El(Ram("ApplicableTradeTax"),
				Leaf(Ram("TypeCode"), einvoice.TaxTypeVAT),
				Leaf(Ram("CategoryCode"), einvoice.TaxCategoryStandard),
				Leaf(Ram("RateApplicablePercent"), formatDecimal(l.VATRate.Mul(hundred))),
			),
			El(Ram("SpecifiedTradeSettlementLineMonetarySummation"),
				Leaf(Ram("LineTotalAmount"), formatDecimal(l.NetAmount)),
			),
		),
	)
}

// ── Partes ───────────────────────────────────────────────────────────────────

// sellerParty respeta el orden del esquema: Name, DefinedTradeContact, PostalTradeAddress,
// URIUniversalCommunication, SpecifiedTaxRegistration.
func sellerParty(seller einvoice.Seller) Element {
	nodes := []Node{Leaf(Ram("Name"), clean(seller.Name))}

	if phone := clean(seller.Phone); phone != "" {
		nodes = append(nodes, El(Ram("DefinedTradeContact"),
			El(Ram("TelephoneUniversalCommunication"),
				Leaf(Ram("CompleteNumber"), phone),
			),
		))
	}
	if seller.Address != nil && !seller.Address.IsEmpty() {
		nodes = append(nodes, postalAddress(*seller.Address))
	}
	if email := clean(seller.Email); email != "" {
		nodes = append(nodes, El(Ram("URIUniversalCommunication"),
			Leaf(Ram("URIID"), email, A("schemeID", "EM")),
		))
	}
	if tax := clean(seller.TaxNumber); tax != "" {
		nodes = append(nodes, El(Ram("SpecifiedTaxRegistration"),
			Leaf(Ram("ID"), tax, A("schemeID", "VA")),
		))
	}
	return El(Ram("SellerTradeParty"), nodes...)
}

// postalAddress omite los campos ausentes; nunca emite elementos vacíos.
func postalAddress(a einvoice.Address) Element {
	var nodes []Node
	if v := clean(a.PostalCode); v != "" {
		nodes = append(nodes, Leaf(Ram("PostcodeCode"), v))
	}
	if v := clean(a.Street); v != "" {
		nodes = append(nodes, Leaf(Ram("LineOne"), v))
	}
	if v := clean(a.City); v != "" {
		nodes = append(nodes, Leaf(Ram("CityName"), v))
	}
	if v := clean(a.CountryCode); v != "" {
		nodes = append(nodes, Leaf(Ram("CountryID"), strings.ToUpper(v)))
	}
	return El(Ram("PostalTradeAddress"), nodes...)
}

// ── Liquidación ──────────────────────────────────────────────────────────────

func headerSettlement(doc einvoice.InvoiceDocument) Element {
	return El(Ram("ApplicableHeaderTradeSettlement"),
		Leaf(Ram("PaymentReference"), clean(doc.InvoiceNumber)),
		Leaf(Ram("InvoiceCurrencyCode"), einvoice.CurrencyEUR),
		El(Ram("ApplicableTradeTax"),
			Leaf(Ram("CalculatedAmount"), formatDecimal(doc.VATTotal)),
			Leaf(Ram("TypeCode"), einvoice.TaxTypeVAT),
			Leaf(Ram("BasisAmount"), formatDecimal(doc.NetTotal)),
			Leaf(Ram("CategoryCode"), einvoice.TaxCategoryStandard),
			Leaf(Ram("RateApplicablePercent"), formatDecimal(einvoice.HeaderVATPercent(doc.NetTotal, doc.VATTotal))),
		),
		El(Ram("BillingSpecifiedPeriod"),
			dateTime(Ram("StartDateTime"), doc.BillingPeriod.Start),
			dateTime(Ram("EndDateTime"), doc.BillingPeriod.End),
		),
		El(Ram("SpecifiedTradePaymentTerms"),
			dateTime(Ram("DueDateDateTime"), doc.DueDate),
		),
		El(Ram("SpecifiedTradeSettlementHeaderMonetarySummation"),
			Leaf(Ram("LineTotalAmount"), formatDecimal(doc.NetTotal)),
			Leaf(Ram("TaxBasisTotalAmount"), formatDecimal(doc.NetTotal)),
			Leaf(Ram("TaxTotalAmount"), formatDecimal(doc.VATTotal), A("currencyID", einvoice.CurrencyEUR)),
			Leaf(Ram("GrandTotalAmount"), formatDecimal(doc.GrossTotal)),
			Leaf(Ram("DuePayableAmount"), formatDecimal(doc.GrossTotal)),
		),
	)
}

// ── Formato ──────────────────────────────────────────────────────────────────

func dateTime(name QName, d einvoice.Date) Element {
	return El(name, Leaf(Udt("DateTimeString"), einvoice.FormatDate102(d), A("format", "102")))
}

// formatDecimal: dos decimales fijos con punto, independiente del locale.
func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func formatQuantity(d decimal.Decimal) string {
	return d.Round(4).StringFixed(4)
}

// clean recorta y normaliza a NFC para que el mismo texto produzca siempre los mismos bytes.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

