// Package report lays out the filtered lesson list and its aggregates into
// a paginated PDF document: title and period header, itemized table,
// financial summary, categorical breakdown tables and per-page footers.
package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"lezioni/internal/core"
)

// Params are the user-facing report request options.
type Params struct {
	Start             core.Date
	End               core.Date
	Invoice           core.InvoiceFilter
	SportID           string
	LocationID        string
	IncludeNetDetails bool
}

// Filter translates the request into the core lesson filter.
func (p Params) Filter() core.LessonFilter {
	return core.LessonFilter{
		Start:      p.Start,
		End:        p.End,
		Invoice:    p.Invoice,
		SportID:    p.SportID,
		LocationID: p.LocationID,
	}
}

// Filename encodes the requested period into the artifact name.
func (p Params) Filename() string {
	return fmt.Sprintf("Resoconto_Lezioni_%s_%s.pdf", p.Start.ISO(), p.End.ISO())
}

// Page geometry in millimeters, A4 portrait.
const (
	leftMargin     = 14
	rightEdge      = 200
	topMargin      = 20
	pageBreakLimit = 270
)

// Block fill colors, matching the established document look.
var (
	headerFillItems  = [3]int{79, 70, 229}
	headerFillCounts = [3]int{75, 85, 99}
	headerFillProfit = [3]int{22, 163, 74}
	stripeFill       = [3]int{243, 244, 246}
)

// Compose generates the document for the given snapshots and request.
// Generation is all-or-nothing: any failure, including a panic inside the
// layout code, surfaces as an error and no partial output is returned.
func Compose(lessons []core.Lesson, settings core.Settings, p Params) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("compose report: %v", r)
		}
	}()

	settings = settings.Normalize()
	filtered := core.Filter(lessons, p.Filter())
	summary := core.Aggregate(filtered, settings)

	c := newComposer()
	c.layout(filtered, settings, summary, p)

	if err := c.pdf.Error(); err != nil {
		return nil, fmt.Errorf("compose report: %w", err)
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf.Bytes(), nil
}

type composer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newComposer() *composer {
	pdf := fpdf.New("P", "mm", "A4", "")
	c := &composer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	// Every page gets a "Pagina i di N" marker. The alias is substituted
	// with the total once layout finished, which is the library's form of
	// the two-pass footer stamping.
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 10, fmt.Sprintf("Pagina %d di {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.SetMargins(leftMargin, topMargin, 210-rightEdge)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return c
}

func (c *composer) layout(lessons []core.Lesson, settings core.Settings, summary core.Summary, p Params) {
	c.header(p)
	c.itemTable(lessons, settings)

	if len(lessons) == 0 {
		c.emptyNotice()
		return
	}
	c.summaryBlock(summary.Totals, p.IncludeNetDetails)
	c.breakdownTables(summary)
}

// ensureSpace starts a new page when the next block of the given height
// would cross the printable limit. Applied identically before every
// summary line-group and every table segment.
func (c *composer) ensureSpace(need float64) {
	if c.pdf.GetY()+need > pageBreakLimit {
		c.pdf.AddPage()
		c.pdf.SetY(topMargin)
	}
}

func (c *composer) header(p Params) {
	pdf := c.pdf
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(leftMargin, 22, c.tr("Resoconto Lezioni"))

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	period := fmt.Sprintf("Periodo: dal %s al %s", p.Start.Italian(), p.End.Italian())
	pdf.Text(leftMargin, 30, c.tr(period))
	pdf.SetY(40)
}

func (c *composer) itemTable(lessons []core.Lesson, settings core.Settings) {
	cols := []column{
		{"Data", 26, "L"},
		{"Sport", 30, "L"},
		{"Tipo Lezione", 42, "L"},
		{"Sede", 42, "L"},
		{"Stato", 24, "L"},
		{"Utile", 22, "R"},
	}
	rows := make([][]string, 0, len(lessons))
	for _, l := range lessons {
		labels := settings.Labels(l)
		status := "Non Fatt."
		if l.Invoiced {
			status = "Fatturata"
		}
		rows = append(rows, []string{
			l.Date.Italian(),
			labels.Sport,
			labels.LessonType,
			labels.Location,
			status,
			formatMoney(l.Profit()),
		})
	}
	c.table(cols, rows, headerFillItems, true)
}

func (c *composer) emptyNotice() {
	c.ensureSpace(15)
	pdf := c.pdf
	pdf.SetY(pdf.GetY() + 15)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(leftMargin, pdf.GetY(), c.tr("Nessuna lezione trovata per i criteri selezionati."))
}

func (c *composer) summaryBlock(t core.Totals, includeNet bool) {
	pdf := c.pdf
	c.ensureSpace(20)
	pdf.SetY(pdf.GetY() + 15)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(leftMargin, pdf.GetY(), c.tr("Riepilogo Finanziario"))
	pdf.SetY(pdf.GetY() + 8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	c.summaryLine("Fatturato Lordo (Fatturato):", formatEuro(t.InvoicedGross.Euros()), false)
	pdf.SetY(pdf.GetY() + 7)

	if includeNet {
		rate := strconv.FormatFloat(t.TaxRate, 'f', -1, 64)
		pdf.SetTextColor(150, 150, 150)
		c.summaryLine(fmt.Sprintf("Tasse / Ritenuta applicata (%s%%):", rate), "- "+formatEuro(t.TaxWithheld()), false)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetY(pdf.GetY() + 7)

		c.summaryLine("Fatturato Netto:", formatEuro(t.InvoicedNet()), true)
		pdf.SetY(pdf.GetY() + 10)
	} else {
		pdf.SetY(pdf.GetY() + 3)
	}

	c.summaryLine("Utile Non Fatturato:", formatEuro(t.NotInvoiced.Euros()), false)
	pdf.SetY(pdf.GetY() + 2)

	pdf.SetDrawColor(100, 100, 100)
	pdf.Line(leftMargin, pdf.GetY(), rightEdge, pdf.GetY())
	pdf.SetY(pdf.GetY() + 7)

	label := "Totale Complessivo (Lordo):"
	if includeNet {
		label = "Totale Netto Complessivo:"
	}
	pdf.SetTextColor(0, 0, 0)
	c.summaryLine(label, formatEuro(t.Overall(includeNet)), true)
	pdf.SetTextColor(100, 100, 100)
}

func (c *composer) summaryLine(label, value string, bold bool) {
	pdf := c.pdf
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 11)
	y := pdf.GetY()
	pdf.Text(leftMargin, y, c.tr(label))
	w := pdf.GetStringWidth(c.tr(value))
	pdf.Text(rightEdge-w, y, c.tr(value))
	pdf.SetFont("Helvetica", "", 11)
}

// Breakdown emission order is fixed: the three count tables, then the
// three profit tables. Empty breakdowns are skipped entirely.
func (c *composer) breakdownTables(summary core.Summary) {
	pdf := c.pdf
	c.ensureSpace(20)
	pdf.SetY(pdf.GetY() + 15)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(leftMargin, pdf.GetY(), c.tr("Riepiloghi Dettagliati"))

	c.countTable("Lezioni per Sport", summary.BySport)
	c.countTable("Lezioni per Sede", summary.ByLocation)
	c.countTable("Lezioni per Tipo", summary.ByLessonType)

	c.profitTable("Utile per Sport", summary.BySport)
	c.profitTable("Utile per Sede", summary.ByLocation)
	c.profitTable("Utile per Tipo", summary.ByLessonType)
}

func (c *composer) countTable(title string, b core.Breakdown) {
	if len(b) == 0 {
		return
	}
	c.ensureSpace(25)
	c.pdf.SetY(c.pdf.GetY() + 8)
	cols := []column{{title, 140, "L"}, {"Num. Lezioni", 46, "R"}}
	rows := make([][]string, 0, len(b))
	for _, e := range b.ByCountDesc() {
		rows = append(rows, []string{e.Name, strconv.Itoa(e.Count)})
	}
	c.table(cols, rows, headerFillCounts, false)
}

func (c *composer) profitTable(title string, b core.Breakdown) {
	if len(b) == 0 {
		return
	}
	c.ensureSpace(25)
	c.pdf.SetY(c.pdf.GetY() + 8)
	cols := []column{{title, 140, "L"}, {"Utile (Lordo)", 46, "R"}}
	rows := make([][]string, 0, len(b))
	for _, e := range b.ByProfitDesc() {
		rows = append(rows, []string{e.Name, formatMoney(e.Profit)})
	}
	c.table(cols, rows, headerFillProfit, false)
}

type column struct {
	title string
	width float64
	align string
}

// table renders a header row plus body rows, re-emitting the header after
// every page break so no row is orphaned from its column titles.
func (c *composer) table(cols []column, rows [][]string, headFill [3]int, striped bool) {
	const rowH = 7.0
	pdf := c.pdf

	head := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFillColor(headFill[0], headFill[1], headFill[2])
		pdf.SetX(leftMargin)
		for _, col := range cols {
			pdf.CellFormat(col.width, rowH+1, c.tr(col.title), "", 0, col.align, true, 0, "")
		}
		pdf.Ln(rowH + 1)
	}

	c.ensureSpace(2 * rowH)
	head()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(30, 30, 30)

	for i, row := range rows {
		if pdf.GetY()+rowH > pageBreakLimit {
			pdf.AddPage()
			pdf.SetY(topMargin)
			head()
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(30, 30, 30)
		}
		fill := striped && i%2 == 1
		if fill {
			pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		}
		border := ""
		if !striped {
			border = "1"
		}
		pdf.SetX(leftMargin)
		for j, col := range cols {
			pdf.CellFormat(col.width, rowH, c.tr(row[j]), border, 0, col.align, fill, 0, "")
		}
		pdf.Ln(rowH)
	}
}

func formatMoney(m core.Money) string {
	return formatEuro(m.Euros())
}

// formatEuro rounds at presentation only; accumulation upstream stays in
// full precision.
func formatEuro(v float64) string {
	return fmt.Sprintf("€ %.2f", v)
}
