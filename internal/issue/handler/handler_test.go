package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"lpa/internal/issue"
	"lpa/internal/issue/service"
	"lpa/pkg/testutil"
)

func newRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	New(service.New(issue.NewInMemoryStore(), logger), logger).Register(router)
	return router
}

func TestIssueLifecycleOverHTTP(t *testing.T) {
	router := newRouter()

	create := testutil.NewJSONRequest(t, http.MethodPost, "/issues", service.CreateRequest{
		Subcategory:        "fip1",
		Item:               "q7",
		Date:               "2025-02-24",
		ProblemDescription: "guard rail loose",
	})
	create = testutil.WithActor(create, "u-alice", "alice@example.com")
	rr := testutil.DoRequest(router, create)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[issue.Record](t, rr)
	assert.Equal(t, issue.StatusOpen, created.Status)
	assert.Equal(t, "2025-W09", created.Week)

	t.Run("list by status", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/issues?status=Open"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		listed := testutil.UnmarshalResponse[[]issue.Record](t, rr)
		assert.Len(t, *listed, 1)
	})

	t.Run("update status", func(t *testing.T) {
		status := "Resolved"
		update := testutil.NewJSONRequest(t, http.MethodPut, "/issues/"+created.ID, service.UpdateRequest{Status: &status})
		update = testutil.WithActor(update, "u-bob", "bob@example.com")
		rr := testutil.DoRequest(router, update)
		testutil.AssertStatus(t, rr, http.StatusOK)
		updated := testutil.UnmarshalResponse[issue.Record](t, rr)
		assert.Equal(t, issue.StatusResolved, updated.Status)
		assert.Equal(t, "bob@example.com", updated.LastEditedBy.Email)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/issues?status=Closed"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("missing issue", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/issues/nope"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
