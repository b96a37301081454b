// Package pdf implementa la representación gráfica de las facturas de comisión
// (la parte visible del PDF híbrido ZUGFeRD / Factur-X).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Vendedor + USt-IdNr.  │  RECHNUNG + Nr. + Datum     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Dirección del vendedor / Tel / Email                        │
//	│  Rechnungsempfänger: taller                                  │
//	│  Leistungszeitraum + Fälligkeit                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Pos | Beschreibung | Menge | Einzelpreis | USt | Netto│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Nettobetrag / USt / Gesamtbetrag                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: condiciones de pago + aviso del XML incrustado      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appbilling "github.com/jhoicas/Reifenservice-api/internal/application/billing"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
)

// Asegura que MarotoRenderer implementa billing.InvoiceRenderer.
var _ appbilling.InvoiceRenderer = (*MarotoRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var hundred = decimal.NewFromInt(100)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoRenderer implementa billing.InvoiceRenderer usando Maroto v2.
type MarotoRenderer struct {
	printer *message.Printer
}

// NewMarotoRenderer construye el renderer (importes en formato alemán: 1.234,56).
func NewMarotoRenderer() *MarotoRenderer {
	return &MarotoRenderer{printer: message.NewPrinter(language.German)}
}

type renderResult struct {
	data []byte
	err  error
}

// Render genera el PDF. Maroto no admite cancelación: si ctx vence antes, se devuelve
// ctx.Err() y la generación en curso se descarta.
func (g *MarotoRenderer) Render(ctx context.Context, doc einvoice.InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan renderResult, 1)
	go func() {
		data, err := g.generate(doc)
		done <- renderResult{data: data, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.data, r.err
	}
}

func (g *MarotoRenderer) generate(doc einvoice.InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Rechnung "+doc.InvoiceNumber, true).
		WithAuthor(doc.Seller.Name, true).
		WithSubject("Provisionsrechnung "+doc.BillingPeriod.Start.String()+" / "+doc.BillingPeriod.End.String(), true).
		WithCreationDate(time.Date(doc.IssueDate.Year, doc.IssueDate.Month, doc.IssueDate.Day, 0, 0, 0, 0, time.UTC)).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sellerRow(doc.Seller))
	m.AddRows(buyerRow(doc.Buyer))
	m.AddRows(periodRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(doc.LineItems)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: vendedor + USt-IdNr. (izq) y número + fecha (der).
func headerRow(doc einvoice.InvoiceDocument) core.Row {
	left := []core.Component{
		text.New(doc.Seller.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
	}
	if doc.Seller.TaxNumber != "" {
		left = append(left, text.New("USt-IdNr.: "+doc.Seller.TaxNumber, props.Text{Size: 9, Top: 9, Color: colorGray}))
	}
	return row.New(18).Add(
		col.New(7).Add(left...),
		col.New(5).Add(
			text.New("RECHNUNG", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Rechnungsdatum: "+germanDate(doc.IssueDate), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sellerRow(s einvoice.Seller) core.Row {
	address := "—"
	if s.Address != nil && !s.Address.IsEmpty() {
		address = strings.Join(nonEmptyParts(
			s.Address.Street,
			strings.TrimSpace(s.Address.PostalCode+" "+s.Address.City),
			s.Address.CountryCode,
		), ", ")
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("%s   |   Tel.: %s   |   E-Mail: %s",
				address, nonEmpty(s.Phone, "—"), nonEmpty(s.Email, "—"),
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

func buyerRow(b einvoice.Buyer) core.Row {
	contact := strings.Join(nonEmptyParts(b.Email, b.Phone), "   |   ")
	return row.New(16).Add(
		col.New(12).Add(
			text.New("RECHNUNGSEMPFÄNGER", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(b.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(contact, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func periodRow(doc einvoice.InvoiceDocument) core.Row {
	return row.New(8).Add(
		col.New(8).Add(text.New(
			fmt.Sprintf("Leistungszeitraum: %s bis %s",
				germanDate(doc.BillingPeriod.Start), germanDate(doc.BillingPeriod.End)),
			props.Text{Size: 8, Top: 2},
		)),
		col.New(4).Add(text.New(
			"Fällig am: "+germanDate(doc.DueDate),
			props.Text{Style: fontstyle.Bold, Size: 8, Top: 2, Align: align.Right},
		)),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Pos.", 1, align.Center),
		h("Beschreibung", 5, align.Left),
		h("Menge", 1, align.Right),
		h("Einzelpreis", 2, align.Right),
		h("USt.", 1, align.Center),
		h("Netto", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoRenderer) tableDetailRows(lines []einvoice.LineItem) []core.Row {
	if len(lines) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Keine Positionen im Leistungszeitraum.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(g.quantity(l.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(g.percent(l.VATRate.Mul(hundred)), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(l.NetAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoRenderer) totalsRow(doc einvoice.InvoiceDocument) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: right, Top: 14,
		})
	}
	rate := einvoice.HeaderVATPercent(doc.NetTotal, doc.VATTotal)

	return row.New(24).Add(
		col.New(4),
		col.New(4).Add(
			label("Nettobetrag:", 0),
			label("USt. "+g.percent(rate)+":", 6),
			grand("Gesamtbetrag:", 2),
		),
		col.New(4).Add(
			value(g.money(doc.NetTotal), 0),
			value(g.money(doc.VATTotal), 6),
			grand(g.money(doc.GrossTotal), 1),
		),
	)
}

func footerRows(doc einvoice.InvoiceDocument) []core.Row {
	return []core.Row{
		row.New(8).Add(col.New(12).Add(text.New(
			fmt.Sprintf("Bitte überweisen Sie den Gesamtbetrag bis zum %s unter Angabe der Rechnungsnummer %s.",
				germanDate(doc.DueDate), doc.InvoiceNumber),
			props.Text{Size: 8, Top: 2},
		))),
		row.New(8).Add(col.New(12).Add(text.New(
			"Diese Rechnung enthält die strukturierten Rechnungsdaten als eingebettete Datei "+
				einvoice.AttachmentFileName+" (ZUGFeRD 2.2 / Factur-X, Profil EXTENDED).",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		))),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea en euros con separadores alemanes: 1.234,56 €.
func (g *MarotoRenderer) money(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2))) + " €"
}

func (g *MarotoRenderer) percent(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2))) + " %"
}

// quantity sin ceros decimales superfluos: 1, 2,5.
func (g *MarotoRenderer) quantity(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(4)))
}

func germanDate(d einvoice.Date) string {
	if d.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, int(d.Month), d.Year)
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func nonEmptyParts(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
