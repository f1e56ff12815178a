package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpa/internal/audit"
	"lpa/internal/audit/service"
	"lpa/internal/draft"
	"lpa/internal/issue"
	"lpa/internal/questionbank"
	"lpa/pkg/testutil"
)

type env struct {
	router http.Handler
	q1, q2 questionbank.Question
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	questions := questionbank.NewInMemoryStore()
	questions.AddSubcategory(questionbank.Subcategory{ID: "fip1", Name: "Final Inspection 1", Order: 1})
	q1, err := questions.AddQuestion(ctx, "fip1", questionbank.Question{Text: "Is the workstation clean?", Type: questionbank.TypeRadio})
	require.NoError(t, err)
	q2, err := questions.AddQuestion(ctx, "fip1", questionbank.Question{Text: "Are torque values recorded?", Type: questionbank.TypeRadio})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(audit.NewInMemoryStore(), issue.NewInMemoryStore(), questions,
		draft.NewInMemoryStore(draft.DefaultTTL), nil, logger)

	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return &env{router: router, q1: q1, q2: q2}
}

func (e *env) submission() service.Submission {
	return service.Submission{
		AuditType:   audit.TypeDaily,
		Date:        "2025-02-24",
		Subcategory: "fip1",
		TimeOfDay:   audit.Morning,
		Answers: map[string]audit.Answer{
			e.q1.ID: {Value: audit.Satisfactory},
			e.q2.ID: {Value: audit.Satisfactory},
		},
	}
}

func TestHandleSubmit(t *testing.T) {
	e := newEnv(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/audits", e.submission())
	req = testutil.WithActor(req, "u-alice", "alice@example.com")
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	record := testutil.UnmarshalResponse[audit.Record](t, rr)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "2025-W09", record.Week)
	assert.Equal(t, "alice@example.com", record.CreatedBy.Email)

	t.Run("same slot again conflicts", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/audits", e.submission())
		req = testutil.WithActor(req, "u-alice", "alice@example.com")
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "duplicate_submission")
	})

	t.Run("fetch it back", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/audits/"+record.ID)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		fetched := testutil.UnmarshalResponse[audit.Record](t, rr)
		assert.Equal(t, record.ID, fetched.ID)
	})
}

func TestHandleSubmitIncomplete(t *testing.T) {
	e := newEnv(t)

	sub := e.submission()
	delete(sub.Answers, e.q1.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/audits", sub)
	req = testutil.WithActor(req, "u-alice", "alice@example.com")
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "incomplete_answers")
	body := testutil.UnmarshalErrorResponse(t, rr)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, e.q1.ID, fields["questionId"])
}

func TestHandleSubmitMalformedBody(t *testing.T) {
	e := newEnv(t)
	req := testutil.NewRequestWithBody(t, http.MethodPost, "/audits", "{not json")
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestHandleGetMissing(t *testing.T) {
	e := newEnv(t)
	rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/audits/nope"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestHandleEdit(t *testing.T) {
	e := newEnv(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/audits", e.submission())
	req = testutil.WithActor(req, "u-alice", "alice@example.com")
	record := testutil.UnmarshalResponse[audit.Record](t, testutil.DoRequest(e.router, req))

	edit := map[string]any{"answers": map[string]audit.Answer{
		e.q1.ID: {Value: audit.NotApplicable},
		e.q2.ID: {Value: audit.Satisfactory},
	}}
	editReq := testutil.NewJSONRequest(t, http.MethodPut, "/audits/"+record.ID, edit)
	editReq = testutil.WithActor(editReq, "u-bob", "bob@example.com")
	rr := testutil.DoRequest(e.router, editReq)

	testutil.AssertStatus(t, rr, http.StatusOK)
	updated := testutil.UnmarshalResponse[audit.Record](t, rr)
	assert.Equal(t, audit.NotApplicable, updated.Answers[e.q1.ID].Value)
	assert.Equal(t, "bob@example.com", updated.LastEditedBy.Email)
}

func TestHandleListRange(t *testing.T) {
	e := newEnv(t)

	for _, date := range []string{"2025-02-24", "2025-03-03"} {
		sub := e.submission()
		sub.Date = date
		req := testutil.NewJSONRequest(t, http.MethodPost, "/audits", sub)
		req = testutil.WithActor(req, "u-alice", "alice@example.com")
		testutil.AssertStatus(t, testutil.DoRequest(e.router, req), http.StatusCreated)
	}

	rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet,
		"/audits?auditType=daily&start=2025-02-01&end=2025-02-28"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	records := testutil.UnmarshalResponse[[]audit.Record](t, rr)
	assert.Len(t, *records, 1)

	t.Run("csv download", func(t *testing.T) {
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet,
			"/audits/export.csv?auditType=daily&start=2025-02-01&end=2025-03-31"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, `attachment; filename="daily-audits.csv"`, rr.Header().Get("Content-Disposition"))
		assert.Contains(t, string(testutil.ReadBody(t, rr)), "2025-02-24")
	})

	t.Run("unknown audit type", func(t *testing.T) {
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet,
			"/audits?auditType=hourly&start=2025-02-01&end=2025-02-28"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}
