package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"lpa/internal/matrix"
	"lpa/internal/platform/config"
)

// XLSXFilename is the fixed download name for the matrix workbook.
func XLSXFilename(m *matrix.Matrix) string {
	return fmt.Sprintf("LayeredAuditMatrix_%s_%s.xlsx", m.Subcategory, m.Week)
}

// MatrixXLSX renders the matrix as a single-sheet workbook: title, blank
// spacer, then the same grid the other exporters emit.
func MatrixXLSX(m *matrix.Matrix) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name matrix sheet: %w", err)
	}

	title := fmt.Sprintf("%s – %s", config.Category, m.Subcategory)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, fmt.Errorf("write matrix title: %w", err)
	}

	for rowIdx, row := range matrixRows(m) {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			if err != nil {
				return nil, fmt.Errorf("address matrix cell: %w", err)
			}
			if value == "" {
				continue
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write matrix cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render matrix workbook: %w", err)
	}
	return buf.Bytes(), nil
}
