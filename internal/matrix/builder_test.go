package matrix

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpa/internal/audit"
	"lpa/internal/questionbank"
	"lpa/pkg/requestcontext"
)

var testQuestions = []questionbank.Question{
	{ID: "q1", Text: "Is the workstation clean?", Type: questionbank.TypeRadio, Options: questionbank.RadioOptions, Order: 1},
	{ID: "q2", Text: "Are torque values recorded?", Type: questionbank.TypeRadio, Options: questionbank.RadioOptions, Order: 2},
}

func seedRecord(t *testing.T, store audit.Store, record audit.Record) string {
	t.Helper()
	if record.Config == nil {
		record.Config = testQuestions
	}
	id, err := store.Insert(context.Background(), &record)
	require.NoError(t, err)
	return id
}

func TestBuildWeeklyMatrix(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()

	// 2025-W09 runs Sunday 2025-02-23 through Saturday 2025-03-01.
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", TimeOfDay: audit.Morning,
		Answers: map[string]audit.Answer{
			"q1": {Value: audit.Satisfactory},
			"q2": {Value: audit.NotSatisfactory, Issue: &audit.IssueDraft{ProblemDescription: "missing log"}},
		},
	})
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", TimeOfDay: audit.Afternoon,
		Answers:     map[string]audit.Answer{"q1": {Value: audit.NotApplicable}},
	})
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeWeekly, Date: "2025-02-25", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", WeeklySubType: audit.RoleQualityTech,
		Answers: map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
	})
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeMonthly, Date: "2025-02-10", Week: "2025-W07", Month: "2025-02",
		Subcategory: "fip1",
		Answers:     map[string]audit.Answer{"q2": {Value: audit.Satisfactory}},
	})

	built, err := NewBuilder(store, nil).Build(ctx, "2025-W09", "fip1", testQuestions)
	require.NoError(t, err)

	assert.Equal(t, "2025-02", built.Month)
	assert.Equal(t, time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC), built.WeekDates[0])

	// 2025-02-24 is a Monday, day index 1.
	assert.Equal(t, audit.MarkSatisfactory, built.DailyMark("q1", 1, audit.Morning))
	assert.Equal(t, audit.MarkNotSatisfactory, built.DailyMark("q2", 1, audit.Morning))
	assert.Equal(t, audit.MarkNotApplicable, built.DailyMark("q1", 1, audit.Afternoon))
	assert.Equal(t, audit.MarkEmpty, built.DailyMark("q2", 1, audit.Afternoon))
	assert.Equal(t, audit.MarkEmpty, built.DailyMark("q1", 2, audit.Morning))

	assert.Equal(t, audit.MarkSatisfactory, built.WeeklyMark("q1", audit.RoleQualityTech))
	assert.Equal(t, audit.MarkEmpty, built.WeeklyMark("q1", audit.RoleOperationsManager))

	assert.Equal(t, audit.MarkSatisfactory, built.MonthlyMark("q2"))
	assert.Equal(t, audit.MarkEmpty, built.MonthlyMark("q1"))
}

func TestBuildScopesBySubcategoryAndWeek(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()

	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip2", TimeOfDay: audit.Morning,
		Answers:     map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
	})
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-03-03", Week: "2025-W10", Month: "2025-03",
		Subcategory: "fip1", TimeOfDay: audit.Morning,
		Answers:     map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
	})

	built, err := NewBuilder(store, nil).Build(ctx, "2025-W09", "fip1", testQuestions)
	require.NoError(t, err)
	assert.Equal(t, audit.MarkEmpty, built.DailyMark("q1", 1, audit.Morning))
}

func TestBuildFirstWriterWinsOnDuplicateSlot(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()

	// Two records in the same slot, as a duplicate-guard race would leave.
	first := audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", TimeOfDay: audit.Morning,
		Answers:   map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
		CreatedAt: time.Date(2025, 2, 24, 8, 0, 0, 0, time.UTC),
	}
	second := first
	second.Answers = map[string]audit.Answer{"q1": {Value: audit.NotSatisfactory}}
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	seedRecord(t, store, first)
	seedRecord(t, store, second)

	built, err := NewBuilder(store, nil).Build(ctx, "2025-W09", "fip1", testQuestions)
	require.NoError(t, err)
	assert.Equal(t, audit.MarkSatisfactory, built.DailyMark("q1", 1, audit.Morning))
}

func TestBuildDuplicateWithUnansweredQuestionDoesNotShadow(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()

	// The earlier record left q2 unanswered; the later duplicate answered it.
	// An empty mark never claims a cell, so the later answer shows through.
	first := audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", TimeOfDay: audit.Morning,
		Answers:   map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
		CreatedAt: time.Date(2025, 2, 24, 8, 0, 0, 0, time.UTC),
	}
	second := first
	second.Answers = map[string]audit.Answer{"q2": {Value: audit.NotApplicable}}
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	seedRecord(t, store, first)
	seedRecord(t, store, second)

	built, err := NewBuilder(store, nil).Build(ctx, "2025-W09", "fip1", testQuestions)
	require.NoError(t, err)
	assert.Equal(t, audit.MarkSatisfactory, built.DailyMark("q1", 1, audit.Morning))
	assert.Equal(t, audit.MarkNotApplicable, built.DailyMark("q2", 1, audit.Morning))
}

func TestBuildRejectsMalformedWeek(t *testing.T) {
	_, err := NewBuilder(audit.NewInMemoryStore(), nil).Build(context.Background(), "2025-09", "fip1", testQuestions)
	assert.Error(t, err)
}

func TestBuildDashboard(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()

	alice := requestcontext.UserRef{UID: "u-alice", Email: "alice@example.com"}
	bob := requestcontext.UserRef{UID: "u-bob", Email: "bob@example.com"}

	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", TimeOfDay: audit.Morning,
		Answers:   map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
		CreatedBy: alice, LastEditedBy: alice,
	})
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeWeekly, Date: "2025-02-25", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", WeeklySubType: audit.RoleOperationsManager,
		Answers:   map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
		CreatedBy: bob, LastEditedBy: bob,
	})
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeMonthly, Date: "2025-02-10", Week: "2025-W07", Month: "2025-02",
		Subcategory: "fip2",
		Answers:   map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
		CreatedBy: alice, LastEditedBy: bob,
	})
	// A daily record on another date must not appear.
	seedRecord(t, store, audit.Record{
		AuditType: audit.TypeDaily, Date: "2025-02-25", Week: "2025-W09", Month: "2025-02",
		Subcategory: "fip1", TimeOfDay: audit.Morning,
		Answers:     map[string]audit.Answer{"q1": {Value: audit.Satisfactory}},
	})

	dashboard, err := NewBuilder(store, nil).BuildDashboard(ctx, "2025-02-24")
	require.NoError(t, err)

	assert.Equal(t, "2025-W09", dashboard.Week)
	assert.Equal(t, "2025-02", dashboard.Month)
	require.Len(t, dashboard.Coverage, 2)

	fip1 := dashboard.Coverage[0]
	assert.Equal(t, "fip1", fip1.Subcategory)
	require.NotNil(t, fip1.Daily[audit.Morning])
	assert.Equal(t, alice, fip1.Daily[audit.Morning].CreatedBy)
	assert.Nil(t, fip1.Daily[audit.Midday])
	require.NotNil(t, fip1.Weekly[audit.RoleOperationsManager])
	assert.Equal(t, bob, fip1.Weekly[audit.RoleOperationsManager].CreatedBy)
	assert.Nil(t, fip1.Monthly)

	fip2 := dashboard.Coverage[1]
	assert.Equal(t, "fip2", fip2.Subcategory)
	require.NotNil(t, fip2.Monthly)
	assert.Equal(t, bob, fip2.Monthly.LastEditedBy)

	t.Run("malformed date", func(t *testing.T) {
		_, err := NewBuilder(store, nil).BuildDashboard(ctx, "02/24/2025")
		assert.Error(t, err)
	})
}
