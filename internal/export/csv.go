// Package export renders a built compliance matrix to its downloadable forms.
// Exporters are pure over the matrix: they never touch the stores and cannot
// fail the aggregation that produced their input.
package export

import (
	"fmt"
	"strings"

	"lpa/internal/audit"
	"lpa/internal/matrix"
	"lpa/internal/period"
	"lpa/internal/platform/config"
)

const (
	layerDailyHeader   = "Layer 1 - Daily by Supervisors"
	weeklyQTHeader     = "Weekly Audit by Quality Tech"
	weeklyOMHeader     = "Weekly Audit by Operations Manager"
	monthlyHeader      = "Monthly Audit by Site/Quality Manager"
	legendLine         = "Legend: √ = Satisfactory, X = Not Satisfactory, N/A = Not Applicable"
)

// CSVFilename is the fixed download name for the matrix CSV.
func CSVFilename(m *matrix.Matrix) string {
	return fmt.Sprintf("LayeredAuditMatrix_%s_%s.csv", m.Subcategory, m.Week)
}

// MatrixCSV renders the fixed scaffold: title row, blank row, layer-header
// row, day-name row, date row, slot-label row, one row per question, then a
// blank row and the legend. Data cells are always quoted; header cells are
// emitted bare.
func MatrixCSV(m *matrix.Matrix) []byte {
	totalDailyCols := len(period.DayNames) * len(audit.TimeSlots)
	totalCols := 1 + totalDailyCols + 3

	var rows []string

	titleRow := make([]string, totalCols)
	titleRow[0] = fmt.Sprintf("%s – %s", config.Category, m.Subcategory)
	rows = append(rows, strings.Join(titleRow, ","))

	rows = append(rows, strings.Join(make([]string, totalCols), ","))

	layerRow := []string{"Audit Items"}
	for i := 0; i < totalDailyCols; i++ {
		layerRow = append(layerRow, layerDailyHeader)
	}
	layerRow = append(layerRow, weeklyQTHeader, weeklyOMHeader, monthlyHeader)
	rows = append(rows, strings.Join(layerRow, ","))

	dayRow := []string{""}
	for _, day := range period.DayNames {
		for range audit.TimeSlots {
			dayRow = append(dayRow, day)
		}
	}
	dayRow = append(dayRow, "", "", "")
	rows = append(rows, strings.Join(dayRow, ","))

	dateRow := []string{""}
	for _, date := range m.WeekDates {
		for range audit.TimeSlots {
			dateRow = append(dateRow, period.FormatDate(date))
		}
	}
	dateRow = append(dateRow, "", "", "")
	rows = append(rows, strings.Join(dateRow, ","))

	slotRow := []string{""}
	for range period.DayNames {
		for _, slot := range audit.TimeSlots {
			slotRow = append(slotRow, string(slot))
		}
	}
	slotRow = append(slotRow, "", "", "")
	rows = append(rows, strings.Join(slotRow, ","))

	for i, question := range m.Questions {
		row := []string{quote(fmt.Sprintf("%d. %s", i+1, question.Text))}
		for day := range period.DayNames {
			for _, slot := range audit.TimeSlots {
				row = append(row, quote(string(m.DailyMark(question.ID, day, slot))))
			}
		}
		row = append(row, quote(string(m.WeeklyMark(question.ID, audit.RoleQualityTech))))
		row = append(row, quote(string(m.WeeklyMark(question.ID, audit.RoleOperationsManager))))
		row = append(row, quote(string(m.MonthlyMark(question.ID))))
		rows = append(rows, strings.Join(row, ","))
	}

	rows = append(rows, "")
	rows = append(rows, quote(legendLine))

	return []byte(strings.Join(rows, "\n"))
}

// quote wraps a data cell in double quotes, doubling embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
