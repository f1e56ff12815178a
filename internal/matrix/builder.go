// Package matrix folds flat audit records into the compliance views: the
// weekly question-by-slot matrix and the per-day coverage dashboard.
package matrix

import (
	"context"
	"fmt"
	"time"

	"lpa/internal/audit"
	"lpa/internal/period"
	"lpa/internal/platform/metrics"
	"lpa/internal/questionbank"
)

// dailyCell addresses one daily matrix cell.
type dailyCell struct {
	QuestionID string
	Day        int
	Slot       audit.TimeOfDay
}

// weeklyCell addresses one weekly matrix cell.
type weeklyCell struct {
	QuestionID string
	Role       audit.WeeklyRole
}

// Matrix is the built compliance view for one week and subcategory. Cells are
// addressed through the mark accessors; questions carry the current live
// listing, not the per-record frozen snapshots.
type Matrix struct {
	Subcategory string
	Week        string
	Month       string
	WeekDates   [7]time.Time
	Questions   []questionbank.Question

	daily   map[dailyCell]audit.Mark
	weekly  map[weeklyCell]audit.Mark
	monthly map[string]audit.Mark
}

// DailyMark returns the mark for a question on a Sunday-based day index and
// time slot, or empty when no record covers the cell.
func (m *Matrix) DailyMark(questionID string, day int, slot audit.TimeOfDay) audit.Mark {
	return m.daily[dailyCell{QuestionID: questionID, Day: day, Slot: slot}]
}

// WeeklyMark returns the mark for a question under one reviewer role.
func (m *Matrix) WeeklyMark(questionID string, role audit.WeeklyRole) audit.Mark {
	return m.weekly[weeklyCell{QuestionID: questionID, Role: role}]
}

// MonthlyMark returns the single monthly mark for a question.
func (m *Matrix) MonthlyMark(questionID string) audit.Mark {
	return m.monthly[questionID]
}

// Builder queries the audit store and folds records into matrices.
type Builder struct {
	audits  audit.Store
	metrics *metrics.Metrics
}

func NewBuilder(audits audit.Store, m *metrics.Metrics) *Builder {
	return &Builder{audits: audits, metrics: m}
}

// Build fetches every record of the week (daily and weekly by week id,
// monthly by the month the week's Sunday falls in) and slots each answered
// question's mark into its cell. When duplicate records contend for one cell
// the first record to produce a mark wins; later ones are ignored.
func (b *Builder) Build(ctx context.Context, week, subcategory string, questions []questionbank.Question) (*Matrix, error) {
	started := time.Now()

	weekDates, err := period.DatesOfISOWeek(week)
	if err != nil {
		return nil, err
	}
	month := period.MonthOf(weekDates[0])

	m := &Matrix{
		Subcategory: subcategory,
		Week:        week,
		Month:       month,
		WeekDates:   weekDates,
		Questions:   questions,
		daily:       make(map[dailyCell]audit.Mark),
		weekly:      make(map[weeklyCell]audit.Mark),
		monthly:     make(map[string]audit.Mark),
	}

	daily, err := b.audits.Find(ctx, audit.Query{AuditType: audit.TypeDaily, Week: week, Subcategory: subcategory})
	if err != nil {
		return nil, fmt.Errorf("fetch daily records: %w", err)
	}
	weekly, err := b.audits.Find(ctx, audit.Query{AuditType: audit.TypeWeekly, Week: week, Subcategory: subcategory})
	if err != nil {
		return nil, fmt.Errorf("fetch weekly records: %w", err)
	}
	monthly, err := b.audits.Find(ctx, audit.Query{AuditType: audit.TypeMonthly, Month: month, Subcategory: subcategory})
	if err != nil {
		return nil, fmt.Errorf("fetch monthly records: %w", err)
	}

	for _, record := range daily {
		m.foldDaily(record)
	}
	for _, record := range weekly {
		m.foldWeekly(record)
	}
	for _, record := range monthly {
		m.foldMonthly(record)
	}

	if b.metrics != nil {
		b.metrics.MatrixBuildDuration.Observe(float64(time.Since(started).Milliseconds()))
	}
	return m, nil
}

func (m *Matrix) foldDaily(record *audit.Record) {
	date, err := period.ParseDate(record.Date)
	if err != nil {
		return
	}
	day := period.DayIndex(date)
	for _, question := range record.Config {
		mark := record.Answers[question.ID].Mark()
		if mark == audit.MarkEmpty {
			continue
		}
		cell := dailyCell{QuestionID: question.ID, Day: day, Slot: record.TimeOfDay}
		if _, taken := m.daily[cell]; taken {
			continue
		}
		m.daily[cell] = mark
	}
}

func (m *Matrix) foldWeekly(record *audit.Record) {
	for _, question := range record.Config {
		mark := record.Answers[question.ID].Mark()
		if mark == audit.MarkEmpty {
			continue
		}
		cell := weeklyCell{QuestionID: question.ID, Role: record.WeeklySubType}
		if _, taken := m.weekly[cell]; taken {
			continue
		}
		m.weekly[cell] = mark
	}
}

func (m *Matrix) foldMonthly(record *audit.Record) {
	for _, question := range record.Config {
		mark := record.Answers[question.ID].Mark()
		if mark == audit.MarkEmpty {
			continue
		}
		if _, taken := m.monthly[question.ID]; taken {
			continue
		}
		m.monthly[question.ID] = mark
	}
}
