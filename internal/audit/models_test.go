package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerJSONVariants(t *testing.T) {
	t.Run("plain value stays a bare string", func(t *testing.T) {
		data, err := json.Marshal(Answer{Value: Satisfactory})
		require.NoError(t, err)
		assert.JSONEq(t, `"Satisfactory"`, string(data))

		var back Answer
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, Satisfactory, back.Value)
		assert.Nil(t, back.Issue)
	})

	t.Run("non-conforming value carries the issue draft", func(t *testing.T) {
		answer := Answer{
			Value: NotSatisfactory,
			Issue: &IssueDraft{ProblemDescription: "leak", Owner: "maint"},
		}
		data, err := json.Marshal(answer)
		require.NoError(t, err)

		var back Answer
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, back.NonConforming())
		require.NotNil(t, back.Issue)
		assert.Equal(t, "leak", back.Issue.ProblemDescription)
	})

	t.Run("numeric answers normalize to strings", func(t *testing.T) {
		var answer Answer
		require.NoError(t, json.Unmarshal([]byte(`42`), &answer))
		assert.Equal(t, "42", answer.Value)
	})

	t.Run("malformed answers are rejected", func(t *testing.T) {
		var answer Answer
		assert.Error(t, json.Unmarshal([]byte(`{"issue":{}}`), &answer))
		assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &answer))
	})
}

func TestAnswerMark(t *testing.T) {
	assert.Equal(t, MarkSatisfactory, Answer{Value: Satisfactory}.Mark())
	assert.Equal(t, MarkNotSatisfactory, Answer{Value: NotSatisfactory, Issue: &IssueDraft{}}.Mark())
	assert.Equal(t, MarkNotApplicable, Answer{Value: NotApplicable}.Mark())
	assert.Equal(t, MarkEmpty, Answer{Value: "17"}.Mark())
	assert.Equal(t, MarkEmpty, Answer{Value: "free text"}.Mark())
	assert.Equal(t, MarkEmpty, Answer{}.Mark())
}

func TestDecodeAnswersShapes(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		answers, err := DecodeAnswers([]byte(`{"q1":"Satisfactory","q2":{"answer":"Not Satisfactory","issue":{"location":"line 2"}}}`))
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, Satisfactory, answers["q1"].Value)
		assert.True(t, answers["q2"].NonConforming())
		assert.Equal(t, "line 2", answers["q2"].Issue.Location)
	})

	t.Run("nested by section", func(t *testing.T) {
		answers, err := DecodeAnswers([]byte(`{
			"Section 1": {"q1": "Satisfactory"},
			"Section 2": {"q2": {"answer": "Not Applicable"}}
		}`))
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, Satisfactory, answers["q1"].Value)
		assert.Equal(t, NotApplicable, answers["q2"].Value)
	})

	t.Run("empty payload", func(t *testing.T) {
		answers, err := DecodeAnswers(nil)
		require.NoError(t, err)
		assert.Empty(t, answers)

		answers, err = DecodeAnswers([]byte(`null`))
		require.NoError(t, err)
		assert.Empty(t, answers)
	})
}

func TestRecordSlot(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   SlotKey
	}{
		{
			name:   "daily keyed by date and time of day",
			record: Record{AuditType: TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02", Subcategory: "fip1", TimeOfDay: Morning},
			want:   SlotKey{AuditType: TypeDaily, Subcategory: "fip1", PeriodKey: "2025-02-24", TimeOfDay: Morning},
		},
		{
			name:   "weekly keyed by week and reviewer role",
			record: Record{AuditType: TypeWeekly, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02", Subcategory: "fip1", WeeklySubType: RoleQualityTech},
			want:   SlotKey{AuditType: TypeWeekly, Subcategory: "fip1", PeriodKey: "2025-W09", WeeklySubType: RoleQualityTech},
		},
		{
			name:   "monthly keyed by month alone",
			record: Record{AuditType: TypeMonthly, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02", Subcategory: "fip1"},
			want:   SlotKey{AuditType: TypeMonthly, Subcategory: "fip1", PeriodKey: "2025-02"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Slot())
		})
	}
}

func TestSlotQueryMatchesOnlyItsSlot(t *testing.T) {
	record := Record{AuditType: TypeDaily, Date: "2025-02-24", Week: "2025-W09", Month: "2025-02", Subcategory: "fip1", TimeOfDay: Morning}
	q := SlotQuery(record.Slot())
	assert.True(t, q.Matches(&record))

	other := record
	other.TimeOfDay = Afternoon
	assert.False(t, q.Matches(&other))

	otherDay := record
	otherDay.Date = "2025-02-25"
	assert.False(t, q.Matches(&otherDay))
}
