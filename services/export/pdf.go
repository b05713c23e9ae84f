package exportsvc

import (
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

var pdfColWidths = []float64{38, 32, 30, 22, 40, 25} // mm, A4 landscape fits 277

// WritePDF writes one table per section with the core fonts, which cover latin text only.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(r.Title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 5, tr(r.GeneratedLabel+" "+r.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	for _, s := range r.Sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(s.Title))
		pdf.Ln(9)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for i, title := range r.Columns {
			pdf.CellFormat(colWidth(i), 7, tr(title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(0, 0, 0)
		if len(s.Rows) == 0 {
			pdf.CellFormat(totalWidth(len(r.Columns)), 7, "-", "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		for _, row := range s.Rows {
			for i, val := range row {
				pdf.CellFormat(colWidth(i), 7, tr(truncate(val, 40)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "laying out pdf")
	}
	return errors.Wrap(pdf.Output(w), "writing pdf")
}

func colWidth(i int) float64 {
	if i < len(pdfColWidths) {
		return pdfColWidths[i]
	}
	return 25
}

func totalWidth(cols int) float64 {
	var total float64
	for i := 0; i < cols; i++ {
		total += colWidth(i)
	}
	return total
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
