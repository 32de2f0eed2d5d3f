package invoice

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

type Line struct {
	Label  string
	Amount float64
}

// Document is everything printed on a booking invoice. Discount lines carry negative amounts.
type Document struct {
	Number      string
	IssuedAt    time.Time
	BookingID   string
	CustomerID  string
	ServiceName string
	Scheduled   string
	Address     string
	Lines       []Line
	Total       float64
	Paid        float64
	Method      string
}

// Render produces the PDF bytes and a download filename.
func Render(d Document) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+d.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range [][2]string{
		{"Invoice No", d.Number},
		{"Issued", d.IssuedAt.Format("2006-01-02 15:04")},
		{"Booking", d.BookingID},
		{"Customer", d.CustomerID},
		{"Service", or(d.ServiceName, "-")},
		{"Scheduled", or(d.Scheduled, "-")},
	} {
		pdf.CellFormat(35, 7, row[0], "", 0, "", false, 0, "")
		pdf.Cell(0, 7, ": "+row[1])
		pdf.Ln(7)
	}
	if d.Address != "" {
		pdf.MultiCell(0, 6, "Address: "+d.Address, "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Description", "B", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range d.Lines {
		pdf.CellFormat(120, 7, l.Label, "", 0, "", false, 0, "")
		pdf.CellFormat(0, 7, Money(l.Amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 9, "Total", "T", 0, "", false, 0, "")
	pdf.CellFormat(0, 9, Money(d.Total), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(120, 7, "Paid ("+or(d.Method, "-")+")", "", 0, "", false, 0, "")
	pdf.CellFormat(0, 7, Money(d.Paid), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("INVOICE_%s.pdf", d.Number), nil
}

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i := range whole {
		out = append(out, whole[i])
		if pos := len(whole) - i - 1; pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	return sign + string(out) + "." + frac
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
