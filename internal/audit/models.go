// Package audit defines the audit submission records and the slot-key
// semantics that enforce at-most-one-submission-per-slot.
package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"lpa/internal/questionbank"
	"lpa/pkg/requestcontext"
)

// Type is the recurrence of an audit.
type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeDaily, TypeWeekly, TypeMonthly:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown audit type %q", s)
}

// TimeOfDay is the daily slot discriminator.
type TimeOfDay string

const (
	Morning   TimeOfDay = "M"
	Midday    TimeOfDay = "D"
	Afternoon TimeOfDay = "A"
)

// TimeSlots lists the daily slots in matrix column order.
var TimeSlots = [3]TimeOfDay{Morning, Midday, Afternoon}

// WeeklyRole is the weekly slot discriminator: which reviewer performed the audit.
type WeeklyRole string

const (
	RoleQualityTech       WeeklyRole = "Quality Tech"
	RoleOperationsManager WeeklyRole = "Operations Manager"
)

// WeeklyRoles lists the reviewer roles in matrix column order.
var WeeklyRoles = [2]WeeklyRole{RoleQualityTech, RoleOperationsManager}

// Fixed values of radio answers.
const (
	Satisfactory    = "Satisfactory"
	NotSatisfactory = "Not Satisfactory"
	NotApplicable   = "Not Applicable"
)

// IssueDraft is the follow-up detail captured inline with a Not Satisfactory
// answer. It seeds the derived issue record.
type IssueDraft struct {
	Location           string `json:"location,omitempty"`
	ProblemDescription string `json:"problemDescription,omitempty"`
	Owner              string `json:"owner,omitempty"`
	Countermeasure     string `json:"countermeasure,omitempty"`
	TargetDate         string `json:"targetDate,omitempty"`
	Initials           string `json:"initials,omitempty"`
	CompletionDate     string `json:"completionDate,omitempty"`
}

// Answer is a tagged variant: a plain value (radio choice, number, or free
// text), or the Not Satisfactory composite carrying an inline issue draft.
// On the wire it round-trips as either a bare string or {"answer", "issue"}.
type Answer struct {
	Value string
	Issue *IssueDraft
}

// NonConforming reports whether this answer derives an issue record.
func (a Answer) NonConforming() bool {
	return a.Value == NotSatisfactory
}

func (a Answer) IsZero() bool {
	return a.Value == "" && a.Issue == nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.NonConforming() {
		issue := a.Issue
		if issue == nil {
			issue = &IssueDraft{}
		}
		return json.Marshal(struct {
			Answer string      `json:"answer"`
			Issue  *IssueDraft `json:"issue"`
		}{Answer: a.Value, Issue: issue})
	}
	return json.Marshal(a.Value)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*a = Answer{Value: plain}
		return nil
	}

	// Number answers occasionally arrive as JSON numbers.
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Answer{Value: strconv.FormatFloat(n, 'f', -1, 64)}
		return nil
	}

	var composite struct {
		Answer *string     `json:"answer"`
		Issue  *IssueDraft `json:"issue"`
	}
	if err := json.Unmarshal(data, &composite); err != nil {
		return fmt.Errorf("malformed answer: %w", err)
	}
	if composite.Answer == nil {
		return fmt.Errorf("malformed answer: missing value")
	}
	*a = Answer{Value: *composite.Answer, Issue: composite.Issue}
	return nil
}

// Mark is the symbol an answer renders as in the compliance matrix.
type Mark string

const (
	MarkSatisfactory    Mark = "√"
	MarkNotSatisfactory Mark = "X"
	MarkNotApplicable   Mark = "N/A"
	MarkEmpty           Mark = ""
)

// Mark derives the matrix symbol. Anything that is not one of the fixed radio
// values (numbers, free text, absent answers) renders empty.
func (a Answer) Mark() Mark {
	switch a.Value {
	case Satisfactory:
		return MarkSatisfactory
	case NotSatisfactory:
		return MarkNotSatisfactory
	case NotApplicable:
		return MarkNotApplicable
	}
	return MarkEmpty
}

// Record is one submitted audit. Date is always the calendar day of the audit;
// Week and Month are derived from it at submission time so equality queries
// can group by period without date arithmetic.
type Record struct {
	ID              string                  `json:"id"`
	AuditType       Type                    `json:"auditType"`
	Date            string                  `json:"date"`
	Week            string                  `json:"week"`
	Month           string                  `json:"month"`
	Subcategory     string                  `json:"subcategory"`
	SubcategoryName string                  `json:"subcategoryName"`
	TimeOfDay       TimeOfDay               `json:"timeOfDay,omitempty"`
	WeeklySubType   WeeklyRole              `json:"weeklySubType,omitempty"`
	Config          []questionbank.Question `json:"config"`
	Answers         map[string]Answer       `json:"answers"`
	Completed       bool                    `json:"completed"`
	CreatedBy       requestcontext.UserRef  `json:"createdBy"`
	LastEditedBy    requestcontext.UserRef  `json:"lastEditedBy"`
	CreatedAt       time.Time               `json:"createdAt"`
	LastEditedAt    time.Time               `json:"lastEditedAt,omitempty"`
}

// SlotKey identifies the matrix cell a record occupies. At most one record may
// exist per key; the period key granularity follows the audit type.
type SlotKey struct {
	AuditType     Type
	Subcategory   string
	PeriodKey     string
	TimeOfDay     TimeOfDay
	WeeklySubType WeeklyRole
}

// Slot returns the record's slot key.
func (r *Record) Slot() SlotKey {
	key := SlotKey{AuditType: r.AuditType, Subcategory: r.Subcategory}
	switch r.AuditType {
	case TypeDaily:
		key.PeriodKey = r.Date
		key.TimeOfDay = r.TimeOfDay
	case TypeWeekly:
		key.PeriodKey = r.Week
		key.WeeklySubType = r.WeeklySubType
	case TypeMonthly:
		key.PeriodKey = r.Month
	}
	return key
}

// PeriodKey returns the grouping value for the record's audit type.
func (r *Record) PeriodKey() string {
	return r.Slot().PeriodKey
}

// DecodeAnswers builds the normalized question-id index from a stored answers
// payload. Historical records carry answers either flat
// (questionID -> answer) or nested by section (section -> questionID ->
// answer); both shapes collapse into one map so downstream lookups never scan.
func DecodeAnswers(data []byte) (map[string]Answer, error) {
	if len(data) == 0 || string(data) == "null" {
		return map[string]Answer{}, nil
	}

	var flat map[string]Answer
	if err := json.Unmarshal(data, &flat); err == nil {
		return flat, nil
	}

	var nested map[string]map[string]Answer
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("malformed answers payload: %w", err)
	}
	flat = make(map[string]Answer)
	for _, section := range nested {
		for questionID, answer := range section {
			if _, seen := flat[questionID]; seen {
				continue
			}
			flat[questionID] = answer
		}
	}
	return flat, nil
}
