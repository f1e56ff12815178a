// Package service implements the standalone issue lifecycle: manual filing,
// listing, and edits that accumulate the editor set.
package service

import (
	"context"
	"errors"
	"log/slog"

	"lpa/internal/issue"
	"lpa/internal/period"
	"lpa/internal/platform/config"
	domainerrors "lpa/pkg/domain-errors"
	"lpa/pkg/platform/sentinel"
	"lpa/pkg/requestcontext"
)

// CreateRequest files an issue directly, outside any audit submission.
type CreateRequest struct {
	Subcategory     string `json:"subcategory"`
	SubcategoryName string `json:"subcategoryName,omitempty"`
	Item            string `json:"item"`
	Date            string `json:"date"`

	Location           string `json:"location,omitempty"`
	ProblemDescription string `json:"problemDescription,omitempty"`
	Owner              string `json:"owner,omitempty"`
	Countermeasure     string `json:"countermeasure,omitempty"`
	TargetDate         string `json:"targetDate,omitempty"`
	Initials           string `json:"initials,omitempty"`
	CompletionDate     string `json:"completionDate,omitempty"`
}

// UpdateRequest edits an existing issue. Nil fields are left untouched.
type UpdateRequest struct {
	Status             *string `json:"status,omitempty"`
	Location           *string `json:"location,omitempty"`
	ProblemDescription *string `json:"problemDescription,omitempty"`
	Owner              *string `json:"owner,omitempty"`
	Countermeasure     *string `json:"countermeasure,omitempty"`
	TargetDate         *string `json:"targetDate,omitempty"`
	Initials           *string `json:"initials,omitempty"`
	CompletionDate     *string `json:"completionDate,omitempty"`
}

type Service struct {
	issues issue.Store
	logger *slog.Logger
}

func New(issues issue.Store, logger *slog.Logger) *Service {
	return &Service{issues: issues, logger: logger}
}

// Create files a standalone issue with status Open and the period keys
// derived from its date.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*issue.Record, error) {
	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	date, err := period.ParseDate(req.Date)
	if err != nil {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "malformed date").WithField("date", req.Date)
	}

	record := &issue.Record{
		Category:        config.Category,
		Subcategory:     req.Subcategory,
		SubcategoryName: req.SubcategoryName,
		Item:            req.Item,
		Date:            req.Date,
		Week:            period.WeekOf(date),
		Month:           period.MonthOf(date),

		Location:           req.Location,
		ProblemDescription: req.ProblemDescription,
		Owner:              req.Owner,
		Countermeasure:     req.Countermeasure,
		TargetDate:         req.TargetDate,
		Initials:           req.Initials,
		CompletionDate:     req.CompletionDate,

		Status:    issue.StatusOpen,
		CreatedBy: actor,
		CreatedAt: now,
	}
	if _, err := s.issues.Insert(ctx, record); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "issue store unavailable", err)
	}
	s.logger.Info("issue filed", "issueId", record.ID, "subcategory", record.Subcategory, "item", record.Item)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*issue.Record, error) {
	record, err := s.issues.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "issue not found").WithField("issueId", id)
		}
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "issue store unavailable", err)
	}
	return record, nil
}

// List returns issues matching the optional status and subcategory filters.
func (s *Service) List(ctx context.Context, status, subcategory string) ([]*issue.Record, error) {
	q := issue.Query{Subcategory: subcategory}
	if status != "" {
		parsed, err := issue.ParseStatus(status)
		if err != nil {
			return nil, domainerrors.New(domainerrors.CodeBadRequest, "unknown issue status").WithField("status", status)
		}
		q.Status = parsed
	}
	records, err := s.issues.Find(ctx, q)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "issue store unavailable", err)
	}
	return records, nil
}

// Update applies the set fields, stamps the editor, and records them in the
// accumulated editor set.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*issue.Record, error) {
	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status, err := issue.ParseStatus(*req.Status)
		if err != nil {
			return nil, domainerrors.New(domainerrors.CodeBadRequest, "unknown issue status").WithField("status", *req.Status)
		}
		record.Status = status
	}
	applyIfSet(&record.Location, req.Location)
	applyIfSet(&record.ProblemDescription, req.ProblemDescription)
	applyIfSet(&record.Owner, req.Owner)
	applyIfSet(&record.Countermeasure, req.Countermeasure)
	applyIfSet(&record.TargetDate, req.TargetDate)
	applyIfSet(&record.Initials, req.Initials)
	applyIfSet(&record.CompletionDate, req.CompletionDate)

	record.LastEditedBy = &actor
	record.LastEditedAt = now
	record.RecordEditor(actor)

	if err := s.issues.Update(ctx, record); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "issue store unavailable", err)
	}
	return record, nil
}

func applyIfSet(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
