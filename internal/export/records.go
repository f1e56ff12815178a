package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"lpa/internal/audit"
)

// RecordsCSVFilename is the download name for a flat range listing.
func RecordsCSVFilename(auditType audit.Type) string {
	return fmt.Sprintf("%s-audits.csv", auditType)
}

// RecordsCSV renders a fetched record list as a flat table, one row per
// record, with a readable answer summary in the last column.
func RecordsCSV(records []*audit.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "auditType", "date", "week", "month", "subcategory",
		"timeOfDay", "weeklySubType", "createdBy", "createdAt", "summary",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write listing header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.ID,
			string(record.AuditType),
			record.Date,
			record.Week,
			record.Month,
			record.Subcategory,
			string(record.TimeOfDay),
			string(record.WeeklySubType),
			record.CreatedBy.Email,
			record.CreatedAt.Format(time.RFC3339),
			summarizeAnswers(record),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write listing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render listing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// summarizeAnswers walks the record's frozen question snapshot in order and
// renders each answered question as "text: value", flagging inline issues.
func summarizeAnswers(record *audit.Record) string {
	var parts []string
	for _, question := range record.Config {
		answer, ok := record.Answers[question.ID]
		if !ok || answer.IsZero() {
			continue
		}
		part := fmt.Sprintf("%s: %s", question.Text, answer.Value)
		if answer.NonConforming() && answer.Issue != nil && answer.Issue.ProblemDescription != "" {
			part += fmt.Sprintf(" (Issue: %s)", answer.Issue.ProblemDescription)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
