package export

import (
	"fmt"

	"lpa/internal/audit"
	"lpa/internal/matrix"
	"lpa/internal/period"
)

// matrixRows lays the matrix out as plain cell rows for the grid renderers
// (XLSX, PDF): day-name row, date row, slot-label row, then one row per
// question. The leading column holds the question text.
func matrixRows(m *matrix.Matrix) [][]string {
	var rows [][]string

	dayRow := []string{"Audit Items"}
	for _, day := range period.DayNames {
		for range audit.TimeSlots {
			dayRow = append(dayRow, day)
		}
	}
	dayRow = append(dayRow, weeklyQTHeader, weeklyOMHeader, monthlyHeader)
	rows = append(rows, dayRow)

	dateRow := []string{""}
	for _, date := range m.WeekDates {
		for range audit.TimeSlots {
			dateRow = append(dateRow, period.FormatDate(date))
		}
	}
	dateRow = append(dateRow, "", "", "")
	rows = append(rows, dateRow)

	slotRow := []string{""}
	for range period.DayNames {
		for _, slot := range audit.TimeSlots {
			slotRow = append(slotRow, string(slot))
		}
	}
	slotRow = append(slotRow, "", "", "")
	rows = append(rows, slotRow)

	for i, question := range m.Questions {
		row := []string{fmt.Sprintf("%d. %s", i+1, question.Text)}
		for day := range period.DayNames {
			for _, slot := range audit.TimeSlots {
				row = append(row, string(m.DailyMark(question.ID, day, slot)))
			}
		}
		row = append(row, string(m.WeeklyMark(question.ID, audit.RoleQualityTech)))
		row = append(row, string(m.WeeklyMark(question.ID, audit.RoleOperationsManager)))
		row = append(row, string(m.MonthlyMark(question.ID)))
		rows = append(rows, row)
	}

	return rows
}
