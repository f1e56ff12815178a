// Package issue tracks follow-up records for non-conforming audit answers.
// Issues are derived alongside their owning audit (or filed standalone) and
// then live their own lifecycle: status transitions and countermeasure edits
// never touch the parent audit record.
package issue

import (
	"fmt"
	"time"

	"lpa/pkg/requestcontext"
)

// Status is the resolution state of an issue.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusResolved:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown issue status %q", s)
}

// Record is one tracked issue. LinkedAuditID is a back-reference to the audit
// that derived it, not ownership: deleting or editing the audit does not
// cascade here.
type Record struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	Subcategory     string `json:"subcategory"`
	SubcategoryName string `json:"subcategoryName,omitempty"`
	Item            string `json:"item"`
	Date            string `json:"date"`
	Week            string `json:"week,omitempty"`
	Month           string `json:"month,omitempty"`

	Location           string `json:"location,omitempty"`
	ProblemDescription string `json:"problemDescription,omitempty"`
	Owner              string `json:"owner,omitempty"`
	Countermeasure     string `json:"countermeasure,omitempty"`
	TargetDate         string `json:"targetDate,omitempty"`
	Initials           string `json:"initials,omitempty"`
	CompletionDate     string `json:"completionDate,omitempty"`

	Status        Status `json:"status"`
	LinkedAuditID string `json:"linkedAuditId,omitempty"`

	CreatedBy    requestcontext.UserRef   `json:"createdBy"`
	CreatedAt    time.Time                `json:"createdAt"`
	LastEditedBy *requestcontext.UserRef  `json:"lastEditedBy,omitempty"`
	LastEditedAt time.Time                `json:"lastEditedAt,omitempty"`
	EditedBy     []requestcontext.UserRef `json:"editedBy,omitempty"`
}

// RecordEditor adds the actor to the accumulated editor set, at most once.
func (r *Record) RecordEditor(actor requestcontext.UserRef) {
	for _, editor := range r.EditedBy {
		if editor.UID == actor.UID {
			return
		}
	}
	r.EditedBy = append(r.EditedBy, actor)
}
