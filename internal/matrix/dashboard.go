package matrix

import (
	"context"
	"fmt"
	"sort"

	"lpa/internal/audit"
	"lpa/internal/period"
	"lpa/pkg/requestcontext"
)

// Completion records who filled one dashboard slot.
type Completion struct {
	AuditID      string                 `json:"auditId"`
	CreatedBy    requestcontext.UserRef `json:"createdBy"`
	LastEditedBy requestcontext.UserRef `json:"lastEditedBy"`
}

// SubcategoryCoverage is one dashboard row: which slots of a subcategory are
// filled for the selected day and its enclosing week and month.
type SubcategoryCoverage struct {
	Subcategory string                               `json:"subcategory"`
	Daily       map[audit.TimeOfDay]*Completion      `json:"daily"`
	Weekly      map[audit.WeeklyRole]*Completion     `json:"weekly"`
	Monthly     *Completion                          `json:"monthly,omitempty"`
}

// Dashboard is the per-day coverage view across every subcategory that has at
// least one record in the day, week, or month.
type Dashboard struct {
	Date     string                `json:"date"`
	Week     string                `json:"week"`
	Month    string                `json:"month"`
	Coverage []SubcategoryCoverage `json:"coverage"`
}

// BuildDashboard fetches all records touching one calendar day: daily records
// of the date itself, weekly records of its ISO week, monthly records of its
// month. The first record seen for a slot keeps it.
func (b *Builder) BuildDashboard(ctx context.Context, date string) (*Dashboard, error) {
	day, err := period.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("malformed date %q: %w", date, err)
	}
	week := period.WeekOf(day)
	month := period.MonthOf(day)

	daily, err := b.audits.Find(ctx, audit.Query{AuditType: audit.TypeDaily, Date: date})
	if err != nil {
		return nil, fmt.Errorf("fetch daily records: %w", err)
	}
	weekly, err := b.audits.Find(ctx, audit.Query{AuditType: audit.TypeWeekly, Week: week})
	if err != nil {
		return nil, fmt.Errorf("fetch weekly records: %w", err)
	}
	monthly, err := b.audits.Find(ctx, audit.Query{AuditType: audit.TypeMonthly, Month: month})
	if err != nil {
		return nil, fmt.Errorf("fetch monthly records: %w", err)
	}

	rows := make(map[string]*SubcategoryCoverage)
	rowFor := func(subcategory string) *SubcategoryCoverage {
		row, ok := rows[subcategory]
		if !ok {
			row = &SubcategoryCoverage{
				Subcategory: subcategory,
				Daily:       make(map[audit.TimeOfDay]*Completion),
				Weekly:      make(map[audit.WeeklyRole]*Completion),
			}
			rows[subcategory] = row
		}
		return row
	}
	completion := func(r *audit.Record) *Completion {
		return &Completion{AuditID: r.ID, CreatedBy: r.CreatedBy, LastEditedBy: r.LastEditedBy}
	}

	for _, record := range daily {
		row := rowFor(record.Subcategory)
		if record.TimeOfDay == "" {
			continue
		}
		if _, taken := row.Daily[record.TimeOfDay]; taken {
			continue
		}
		row.Daily[record.TimeOfDay] = completion(record)
	}
	for _, record := range weekly {
		row := rowFor(record.Subcategory)
		if record.WeeklySubType == "" {
			continue
		}
		if _, taken := row.Weekly[record.WeeklySubType]; taken {
			continue
		}
		row.Weekly[record.WeeklySubType] = completion(record)
	}
	for _, record := range monthly {
		row := rowFor(record.Subcategory)
		if row.Monthly == nil {
			row.Monthly = completion(record)
		}
	}

	coverage := make([]SubcategoryCoverage, 0, len(rows))
	for _, row := range rows {
		coverage = append(coverage, *row)
	}
	sort.Slice(coverage, func(i, j int) bool { return coverage[i].Subcategory < coverage[j].Subcategory })

	return &Dashboard{Date: date, Week: week, Month: month, Coverage: coverage}, nil
}
