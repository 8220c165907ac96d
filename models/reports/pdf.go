package reports

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"github.com/go-pdf/fpdf"
)

const PDFContentType = "application/pdf"

// Column is a fixed-width PDF column. Width is in millimetres.
type Column struct {
	Header string
	Key    string
	Width  float64
}

type Table struct {
	Columns []Column
	Rows    [][]string
}

// Letterhead is drawn at the top of every page. Name and Date lines are
// printed when ShowNameDate is set; blanks become lines to fill by hand.
type Letterhead struct {
	Title        string
	Subtitle     string
	Email        string
	Phone        string
	ShowNameDate bool
	Name         string
	Date         string
}

type PDFOptions struct {
	Landscape  bool
	FontSize   float64
	Letterhead Letterhead
}

const (
	pageMargin    = 20.0
	topMargin     = 10.0
	footerSpace   = 20.0
	cellPadding   = 1.5
	headingHeight = 45.0
)

// PageRange is a half-open range of row indexes printed on one page.
type PageRange struct {
	Start int
	End   int
}

// PlanPages splits rows of the given heights into pages holding at most
// capacity millimetres of rows each. A row taller than a page gets a page of
// its own.
func PlanPages(heights []float64, capacity float64) []PageRange {
	var pages []PageRange
	start := 0
	used := 0.0
	for i, h := range heights {
		if i > start && used+h > capacity {
			pages = append(pages, PageRange{Start: start, End: i})
			start = i
			used = 0
		}
		used += h
	}
	if len(heights) > start || len(pages) == 0 {
		pages = append(pages, PageRange{Start: start, End: len(heights)})
	}
	return pages
}

func (o PDFOptions) fontSize() float64 {
	if o.FontSize > 0 {
		return o.FontSize
	}
	return 10
}

func lineHeight(fontSize float64) float64 {
	// points to millimetres, with leading
	return fontSize * 0.3528 * 1.25
}

type pdfLayout struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	opts      PDFOptions
	table     Table
	lineH     float64
	width     float64
	height    float64
	headLines [][]string
	rowLines  [][][]string
}

func newLayout(table Table, opts PDFOptions) (*pdfLayout, error) {
	if len(table.Columns) == 0 {
		return nil, errors.New("pdf table has no columns")
	}
	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pageMargin, topMargin, pageMargin)
	pdf.SetAutoPageBreak(false, footerSpace)
	pdf.AliasNbPages("")
	pdf.SetFont("Helvetica", "", opts.fontSize())

	w, h := pdf.GetPageSize()
	l := &pdfLayout{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		opts:   opts,
		table:  table,
		lineH:  lineHeight(opts.fontSize()),
		width:  w,
		height: h,
	}
	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Header
	}
	pdf.SetFont("Helvetica", "B", opts.fontSize())
	l.headLines = l.wrap(headers)
	pdf.SetFont("Helvetica", "", opts.fontSize())
	for _, row := range table.Rows {
		l.rowLines = append(l.rowLines, l.wrap(row))
	}
	return l, nil
}

func (l *pdfLayout) wrap(cells []string) [][]string {
	out := make([][]string, len(l.table.Columns))
	for i, col := range l.table.Columns {
		text := ""
		if i < len(cells) {
			text = l.tr(cells[i])
		}
		inner := col.Width - 2*cellPadding
		var lines []string
		for _, part := range strings.Split(text, "\n") {
			if part == "" {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, l.pdf.SplitText(part, inner)...)
		}
		out[i] = lines
	}
	return out
}

func (l *pdfLayout) rowHeight(cells [][]string) float64 {
	n := 1
	for _, lines := range cells {
		if len(lines) > n {
			n = len(lines)
		}
	}
	return float64(n)*l.lineH + 2*cellPadding
}

func (l *pdfLayout) capacity() float64 {
	return l.height - footerSpace - headingHeight - l.rowHeight(l.headLines)
}

func (l *pdfLayout) plan() []PageRange {
	heights := make([]float64, len(l.rowLines))
	for i, cells := range l.rowLines {
		heights[i] = l.rowHeight(cells)
	}
	return PlanPages(heights, l.capacity())
}

func (l *pdfLayout) drawLetterhead() {
	pdf, lh := l.pdf, l.opts.Letterhead
	right := l.width - pageMargin

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(pageMargin, 8)
	pdf.CellFormat(right-pageMargin, 9, l.tr(lh.Title), "", 0, "C", false, 0, "")
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, 17, right, 17)

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetXY(pageMargin, 17.5)
	pdf.CellFormat(right-pageMargin, 7, l.tr(lh.Subtitle), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	half := (right - pageMargin) / 2
	pdf.SetXY(pageMargin, 26)
	pdf.CellFormat(half, 6, l.tr(lh.Email), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, l.tr(lh.Phone), "", 0, "R", false, 0, "")
	if lh.ShowNameDate {
		pdf.SetXY(pageMargin, 32)
		pdf.CellFormat(half, 6, l.tr("Name: "+orBlank(lh.Name, "___________________")), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 6, l.tr("Date: "+orBlank(lh.Date, "__________________")), "", 0, "R", false, 0, "")
	}
	pdf.Line(pageMargin, 39, right, 39)
}

func orBlank(v, blank string) string {
	if strings.TrimSpace(v) == "" {
		return blank
	}
	return v
}

func (l *pdfLayout) drawRow(y float64, cells [][]string, header bool) float64 {
	pdf := l.pdf
	h := l.rowHeight(cells)
	x := pageMargin
	style := "D"
	align := "L"
	if header {
		pdf.SetFont("Helvetica", "B", l.opts.fontSize())
		pdf.SetFillColor(0, 102, 204)
		pdf.SetTextColor(255, 255, 255)
		style = "FD"
		align = "C"
	} else {
		pdf.SetFont("Helvetica", "", l.opts.fontSize())
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetLineWidth(0.2)
	for i, col := range l.table.Columns {
		pdf.Rect(x, y, col.Width, h, style)
		for j, line := range cells[i] {
			pdf.SetXY(x+cellPadding, y+cellPadding+float64(j)*l.lineH)
			pdf.CellFormat(col.Width-2*cellPadding, l.lineH, line, "", 0, align, false, 0, "")
		}
		x += col.Width
	}
	pdf.SetTextColor(0, 0, 0)
	return y + h
}

// ToPDF renders the table under the letterhead, repeating the header row on
// every page. It returns the document and its page count.
func ToPDF(table Table, opts PDFOptions) ([]byte, int, error) {
	l, err := newLayout(table, opts)
	if err != nil {
		return nil, 0, err
	}
	pdf := l.pdf
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(pageMargin, l.height-15)
		pdf.CellFormat(l.width-2*pageMargin, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pages := l.plan()
	for _, page := range pages {
		pdf.AddPage()
		l.drawLetterhead()
		y := l.drawRow(headingHeight, l.headLines, true)
		for i := page.Start; i < page.End; i++ {
			y = l.drawRow(y, l.rowLines[i], false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(pages), nil
}

// RecordTable lays flattened records out under the given columns. A column
// without Key reads the cell named by its Header.
func RecordTable(columns []Column, records []docstore.Data) Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		flat := map[string]any{}
		for _, c := range Flatten(rec) {
			flat[c.Key] = c.Value
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			key := col.Key
			if key == "" {
				key = col.Header
			}
			if v, ok := flat[key]; ok {
				row[i] = FormatValue(v)
			} else if v, ok := rec[key]; ok {
				row[i] = FormatValue(v)
			}
			if row[i] == "" {
				row[i] = "-"
			}
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}

// NumberRows prefixes every row with its 1-based position.
func NumberRows(t Table, header string, width float64) Table {
	cols := append([]Column{{Header: header, Width: width}}, t.Columns...)
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]string{fmt.Sprint(i + 1)}, r...)
	}
	return Table{Columns: cols, Rows: rows}
}
