package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"lpa/internal/matrix"
	"lpa/internal/platform/config"
)

// PDFFilename is the fixed download name for the matrix PDF.
func PDFFilename(m *matrix.Matrix) string {
	return fmt.Sprintf("LayeredAuditMatrix_%s_%s.pdf", m.Subcategory, m.Week)
}

// MatrixPDF renders the matrix as a single landscape page: a three-line
// header block followed by the full grid, with column widths and row height
// scaled so the table always fits the page.
func MatrixPDF(m *matrix.Matrix) ([]byte, error) {
	pdf := fpdf.New("L", "pt", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Category: " + config.Category,
		"Subcategory: " + m.Subcategory,
		"Week: " + m.Week,
	} {
		pdf.CellFormat(0, 16, translate(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	rows := matrixRows(m)
	if len(rows) == 0 {
		var buf bytes.Buffer
		err := pdf.Output(&buf)
		return buf.Bytes(), err
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	printable := pageWidth - left - right

	// The question column gets a fixed share; the remaining columns split the rest.
	questionWidth := printable * 0.22
	cellWidth := (printable - questionWidth) / float64(len(rows[0])-1)

	rowHeight := 14.0
	available := pageHeight - top - bottom - pdf.GetY()
	if needed := rowHeight * float64(len(rows)); needed > available {
		rowHeight = available / float64(len(rows))
	}

	pdf.SetFont("Helvetica", "", 6)
	for _, row := range rows {
		for col, cell := range row {
			width := cellWidth
			if col == 0 {
				width = questionWidth
			}
			pdf.CellFormat(width, rowHeight, translate(cell), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render matrix pdf: %w", err)
	}
	return buf.Bytes(), nil
}
