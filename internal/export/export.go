// Package export renders ledger report rows as CSV or PDF documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/ledger"
)

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts csv or pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Document is a full, unpaginated report ready to be rendered.
type Document struct {
	Title     string
	Generated time.Time
	Scope     ledger.Scope
	Rows      []ledger.AggregatedRow
	Totals    ledger.Totals
}

// Filename returns a download name for the document.
func (d Document) Filename(f Format) string {
	return fmt.Sprintf("ledger-%s.%s", d.Generated.Format("20060102-150405"), f)
}

// Write renders doc in the given format.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatCSV:
		return CSV(w, doc)
	case FormatPDF:
		return PDF(w, doc)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidFormat, f)
	}
}

var header = []string{"Date", "Type", "Counterpart", "Description", "Category", "Payable", "Paid", "Balance", "Status"}

func cells(r ledger.AggregatedRow) []string {
	return []string{
		r.Record.Date.Format("2006-01-02"),
		r.Record.Label(),
		r.Record.CounterpartName,
		r.Record.Description,
		r.Record.Category,
		money(r.Payable),
		money(r.Paid),
		money(r.Balance),
		string(r.Status),
	}
}

// CSV writes one header line, one line per row and a closing totals line.
func CSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range doc.Rows {
		if err := cw.Write(cells(r)); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{
		"", "Total", "", "", "",
		money(doc.Totals.Payable), money(doc.Totals.Paid), money(doc.Totals.Net), settled(doc.Totals),
	}); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

const bottomMargin = 15

// column widths in mm for landscape A4 with 10mm margins
var widths = []float64{22, 34, 40, 64, 32, 23, 23, 23, 16}

// PDF writes a landscape table with a header block and a totals row.
func PDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetCreationDate(doc.Generated)
	pdf.SetTitle(doc.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", doc.Generated.Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	tableHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	tableHeader()

	_, pageHeight := pdf.GetPageSize()

	for i, r := range doc.Rows {
		if pdf.GetY()+6 > pageHeight-bottomMargin {
			pdf.AddPage()
			tableHeader()
		}

		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}

		for j, c := range cells(r) {
			align := "L"
			if j >= 5 && j <= 7 {
				align = "R"
			}
			pdf.CellFormat(widths[j], 6, tr(truncate(c, widths[j])), "1", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3]+widths[4], 7, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[5], 7, money(doc.Totals.Payable), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[6], 7, money(doc.Totals.Paid), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[7], 7, money(doc.Totals.Net), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[8], 7, settled(doc.Totals), "1", 1, "C", true, 0, "")

	return pdf.Output(w)
}

// truncate shortens s to roughly fit a column of width mm at 8pt.
func truncate(s string, width float64) string {
	limit := int(width / 1.7)
	r := []rune(s)
	if len(r) <= limit || limit < 4 {
		return s
	}
	return string(r[:limit-3]) + "..."
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func settled(t ledger.Totals) string {
	if t.Settled {
		return string(ledger.StatusPaid)
	}
	return ""
}
