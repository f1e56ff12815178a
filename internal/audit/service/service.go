// Package service implements the audit submission pipeline: completeness
// validation, period derivation, the duplicate guard, the audit write with its
// fanned-out issue writes, and draft clearing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"lpa/internal/audit"
	"lpa/internal/draft"
	"lpa/internal/issue"
	"lpa/internal/period"
	"lpa/internal/platform/config"
	"lpa/internal/platform/metrics"
	"lpa/internal/questionbank"
	domainerrors "lpa/pkg/domain-errors"
	"lpa/pkg/platform/sentinel"
	"lpa/pkg/requestcontext"
)

// Submission is one attempt to file an audit.
type Submission struct {
	AuditType     audit.Type              `json:"auditType"`
	Date          string                  `json:"date"`
	Subcategory   string                  `json:"subcategory"`
	TimeOfDay     audit.TimeOfDay         `json:"timeOfDay,omitempty"`
	WeeklySubType audit.WeeklyRole        `json:"weeklySubType,omitempty"`
	Answers       map[string]audit.Answer `json:"answers"`
}

type Service struct {
	audits    audit.Store
	issues    issue.Store
	questions questionbank.Store
	drafts    draft.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(audits audit.Store, issues issue.Store, questions questionbank.Store, drafts draft.Store, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		audits:    audits,
		issues:    issues,
		questions: questions,
		drafts:    drafts,
		metrics:   m,
		logger:    logger,
	}
}

// Submit validates the submission, runs the duplicate guard, persists the
// audit with a frozen question snapshot, derives one issue record per
// non-conforming answer, and clears the submitter's draft.
//
// The audit write and its issue writes are one logical unit to the caller,
// but the audit is not rolled back when an issue write fails: that partial
// state is surfaced as an error alongside the persisted record.
func (s *Service) Submit(ctx context.Context, sub Submission) (*audit.Record, error) {
	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	date, err := period.ParseDate(sub.Date)
	if err != nil {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "malformed date").WithField("date", sub.Date)
	}
	if err := validateSlot(sub); err != nil {
		return nil, err
	}

	subcategory, err := s.questions.GetSubcategory(ctx, sub.Subcategory)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "unknown subcategory").WithField("subcategory", sub.Subcategory)
		}
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "question bank unavailable", err)
	}
	questions, err := s.questions.ListQuestions(ctx, sub.Subcategory)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "question bank unavailable", err)
	}

	if missing, ok := firstUnanswered(questions, sub.Answers); !ok {
		s.reject("incomplete")
		return nil, domainerrors.New(domainerrors.CodeIncompleteAnswers, "every question must be answered").
			WithField("questionId", missing)
	}

	record := &audit.Record{
		AuditType:       sub.AuditType,
		Date:            sub.Date,
		Week:            period.WeekOf(date),
		Month:           period.MonthOf(date),
		Subcategory:     sub.Subcategory,
		SubcategoryName: subcategory.Name,
		TimeOfDay:       sub.TimeOfDay,
		WeeklySubType:   sub.WeeklySubType,
		Config:          questions,
		Answers:         sub.Answers,
		Completed:       true,
		CreatedBy:       actor,
		LastEditedBy:    actor,
		CreatedAt:       now,
	}

	// Duplicate guard: check-then-act. A race between two submitters can slip
	// past this read; the store's uniqueness constraint catches it at Insert.
	existing, err := s.audits.Find(ctx, audit.SlotQuery(record.Slot()))
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "audit store unavailable", err)
	}
	if len(existing) > 0 {
		s.reject("duplicate")
		return nil, duplicateError(record)
	}

	if _, err := s.audits.Insert(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.reject("duplicate")
			return nil, duplicateError(record)
		}
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "audit store unavailable", err)
	}
	if s.metrics != nil {
		s.metrics.SubmissionsAccepted.Inc()
	}

	derived, issueErr := s.deriveIssues(ctx, record, nil)
	if s.metrics != nil {
		s.metrics.IssuesDerived.Add(float64(derived))
	}

	s.clearDraft(ctx, actor, record)

	if issueErr != nil {
		s.logger.Error("audit persisted with incomplete issue records",
			"auditId", record.ID, "error", issueErr)
		return record, domainerrors.Wrap(domainerrors.CodeStoreUnavailable,
			"audit saved but one or more issue records were not created", issueErr)
	}
	return record, nil
}

// Edit replaces the answers of an existing audit, stamps the editor, and
// reconciles issue records: non-conforming answers update their existing
// issue or derive a new one. The frozen question snapshot is never changed.
func (s *Service) Edit(ctx context.Context, id string, answers map[string]audit.Answer) (*audit.Record, error) {
	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	record, err := s.audits.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "audit not found").WithField("auditId", id)
		}
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "audit store unavailable", err)
	}

	if missing, ok := firstUnanswered(record.Config, answers); !ok {
		s.reject("incomplete")
		return nil, domainerrors.New(domainerrors.CodeIncompleteAnswers, "every question must be answered").
			WithField("questionId", missing)
	}

	record.Answers = answers
	record.LastEditedBy = actor
	record.LastEditedAt = now
	if err := s.audits.Update(ctx, record); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "audit store unavailable", err)
	}

	linked, err := s.issues.Find(ctx, issue.Query{LinkedAuditID: record.ID})
	if err != nil {
		return record, domainerrors.Wrap(domainerrors.CodeStoreUnavailable,
			"audit saved but issue reconciliation failed", err)
	}
	byItem := make(map[string]*issue.Record, len(linked))
	for _, rec := range linked {
		if _, seen := byItem[rec.Item]; !seen {
			byItem[rec.Item] = rec
		}
	}

	derived, issueErr := s.deriveIssues(ctx, record, byItem)
	if s.metrics != nil {
		s.metrics.IssuesDerived.Add(float64(derived))
	}
	if issueErr != nil {
		s.logger.Error("audit updated with incomplete issue records",
			"auditId", record.ID, "error", issueErr)
		return record, domainerrors.Wrap(domainerrors.CodeStoreUnavailable,
			"audit saved but one or more issue records were not updated", issueErr)
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*audit.Record, error) {
	record, err := s.audits.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "audit not found").WithField("auditId", id)
		}
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "audit store unavailable", err)
	}
	return record, nil
}

// ListRange returns all audits of one type whose period key falls in
// [start, end]: dates for daily, week ids for weekly, month ids for monthly.
func (s *Service) ListRange(ctx context.Context, auditType audit.Type, start, end string) ([]*audit.Record, error) {
	if start == "" || end == "" || start > end {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "malformed period range")
	}
	q := audit.Query{AuditType: auditType, PeriodFrom: start, PeriodTo: end}
	records, err := s.audits.Find(ctx, q)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "audit store unavailable", err)
	}
	return records, nil
}

// deriveIssues writes one issue record per non-conforming answer, concurrently,
// and joins before returning. When existingByItem has an entry for a question
// the existing issue is updated in place instead of duplicated. Returns how
// many new issues were created.
func (s *Service) deriveIssues(ctx context.Context, record *audit.Record, existingByItem map[string]*issue.Record) (int, error) {
	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	var created int
	g, gctx := errgroup.WithContext(ctx)
	for _, question := range record.Config {
		answer := record.Answers[question.ID]
		if !answer.NonConforming() {
			continue
		}
		details := answer.Issue
		if details == nil {
			details = &audit.IssueDraft{}
		}

		if existing, ok := existingByItem[question.ID]; ok {
			updated := *existing
			applyDraft(&updated, details)
			updated.LastEditedBy = &actor
			updated.LastEditedAt = now
			updated.RecordEditor(actor)
			g.Go(func() error {
				if err := s.issues.Update(gctx, &updated); err != nil {
					return fmt.Errorf("update issue for %s: %w", updated.Item, err)
				}
				return nil
			})
			continue
		}

		created++
		rec := &issue.Record{
			Category:        config.Category,
			Subcategory:     record.Subcategory,
			SubcategoryName: record.SubcategoryName,
			Item:            question.ID,
			Date:            record.Date,
			Week:            record.Week,
			Month:           record.Month,
			Status:          issue.StatusOpen,
			LinkedAuditID:   record.ID,
			CreatedBy:       actor,
			CreatedAt:       now,
		}
		applyDraft(rec, details)
		g.Go(func() error {
			if _, err := s.issues.Insert(gctx, rec); err != nil {
				return fmt.Errorf("derive issue for %s: %w", rec.Item, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return created, err
	}
	return created, nil
}

func applyDraft(rec *issue.Record, d *audit.IssueDraft) {
	rec.Location = d.Location
	rec.ProblemDescription = d.ProblemDescription
	rec.Owner = d.Owner
	rec.Countermeasure = d.Countermeasure
	rec.TargetDate = d.TargetDate
	rec.Initials = d.Initials
	rec.CompletionDate = d.CompletionDate
}

func (s *Service) clearDraft(ctx context.Context, actor requestcontext.UserRef, record *audit.Record) {
	key := draft.Key{
		UserID:      actor.UID,
		AuditType:   record.AuditType,
		PeriodKey:   record.PeriodKey(),
		Slot:        slotDiscriminator(record),
		Subcategory: record.Subcategory,
	}
	if err := s.drafts.Clear(ctx, key); err != nil {
		s.logger.Warn("clearing draft after submission failed", "key", key.String(), "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.DraftsEvicted.WithLabelValues("submitted").Inc()
	}
}

func slotDiscriminator(record *audit.Record) string {
	switch record.AuditType {
	case audit.TypeDaily:
		return string(record.TimeOfDay)
	case audit.TypeWeekly:
		return string(record.WeeklySubType)
	}
	return ""
}

// firstUnanswered walks the snapshot in questionnaire order and returns the
// first question id with no answer entry, matching what the form highlights.
func firstUnanswered(questions []questionbank.Question, answers map[string]audit.Answer) (string, bool) {
	for _, question := range questions {
		answer, ok := answers[question.ID]
		if !ok || answer.IsZero() {
			return question.ID, false
		}
	}
	return "", true
}

func validateSlot(sub Submission) error {
	switch sub.AuditType {
	case audit.TypeDaily:
		switch sub.TimeOfDay {
		case audit.Morning, audit.Midday, audit.Afternoon:
		default:
			return domainerrors.New(domainerrors.CodeBadRequest, "daily audits require a time of day").
				WithField("timeOfDay", string(sub.TimeOfDay))
		}
	case audit.TypeWeekly:
		switch sub.WeeklySubType {
		case audit.RoleQualityTech, audit.RoleOperationsManager:
		default:
			return domainerrors.New(domainerrors.CodeBadRequest, "weekly audits require a reviewer role").
				WithField("weeklySubType", string(sub.WeeklySubType))
		}
	case audit.TypeMonthly:
		if sub.TimeOfDay != "" || sub.WeeklySubType != "" {
			return domainerrors.New(domainerrors.CodeBadRequest, "monthly audits carry no slot discriminator")
		}
	default:
		return domainerrors.New(domainerrors.CodeBadRequest, "unknown audit type").
			WithField("auditType", string(sub.AuditType))
	}
	return nil
}

func duplicateError(record *audit.Record) *domainerrors.Error {
	return domainerrors.New(domainerrors.CodeDuplicate, "an audit already exists for this slot").
		WithField("periodKey", record.PeriodKey())
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.SubmissionsRejected.WithLabelValues(reason).Inc()
	}
}
