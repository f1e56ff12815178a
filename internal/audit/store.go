package audit

import "context"

// Query expresses the equality-filtered multi-predicate lookups the document
// store must support. Zero-valued fields are unset. PeriodFrom/PeriodTo, when
// set, bound the record's own period key (date for daily, week for weekly,
// month for monthly) for range listings.
type Query struct {
	AuditType     Type
	Subcategory   string
	Date          string
	Week          string
	Month         string
	TimeOfDay     TimeOfDay
	WeeklySubType WeeklyRole

	PeriodFrom string
	PeriodTo   string
}

// Matches reports whether a record satisfies every set predicate.
func (q Query) Matches(r *Record) bool {
	if q.AuditType != "" && r.AuditType != q.AuditType {
		return false
	}
	if q.Subcategory != "" && r.Subcategory != q.Subcategory {
		return false
	}
	if q.Date != "" && r.Date != q.Date {
		return false
	}
	if q.Week != "" && r.Week != q.Week {
		return false
	}
	if q.Month != "" && r.Month != q.Month {
		return false
	}
	if q.TimeOfDay != "" && r.TimeOfDay != q.TimeOfDay {
		return false
	}
	if q.WeeklySubType != "" && r.WeeklySubType != q.WeeklySubType {
		return false
	}
	if q.PeriodFrom != "" && r.PeriodKey() < q.PeriodFrom {
		return false
	}
	if q.PeriodTo != "" && r.PeriodKey() > q.PeriodTo {
		return false
	}
	return true
}

// SlotQuery builds the equality filter the Duplicate Guard runs before any write.
func SlotQuery(key SlotKey) Query {
	q := Query{AuditType: key.AuditType, Subcategory: key.Subcategory}
	switch key.AuditType {
	case TypeDaily:
		q.Date = key.PeriodKey
		q.TimeOfDay = key.TimeOfDay
	case TypeWeekly:
		q.Week = key.PeriodKey
		q.WeeklySubType = key.WeeklySubType
	case TypeMonthly:
		q.Month = key.PeriodKey
	}
	return q
}

// Store is the document-store surface the engine depends on: insert with a
// generated id and server-assigned timestamp, point reads and updates, and
// equality-filtered queries.
type Store interface {
	Insert(ctx context.Context, record *Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, record *Record) error
	Find(ctx context.Context, q Query) ([]*Record, error)
}
