package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpa/internal/audit"
)

func testKey() Key {
	return Key{
		UserID:      "user-1",
		AuditType:   audit.TypeDaily,
		PeriodKey:   "2025-02-24",
		Slot:        "M",
		Subcategory: "fip1",
	}
}

func TestKeyScoping(t *testing.T) {
	base := testKey()

	variants := []Key{
		{UserID: "user-2", AuditType: base.AuditType, PeriodKey: base.PeriodKey, Slot: base.Slot, Subcategory: base.Subcategory},
		{UserID: base.UserID, AuditType: audit.TypeWeekly, PeriodKey: base.PeriodKey, Slot: base.Slot, Subcategory: base.Subcategory},
		{UserID: base.UserID, AuditType: base.AuditType, PeriodKey: "2025-02-25", Slot: base.Slot, Subcategory: base.Subcategory},
		{UserID: base.UserID, AuditType: base.AuditType, PeriodKey: base.PeriodKey, Slot: "A", Subcategory: base.Subcategory},
		{UserID: base.UserID, AuditType: base.AuditType, PeriodKey: base.PeriodKey, Slot: base.Slot, Subcategory: "fip2"},
	}
	for _, variant := range variants {
		assert.NotEqual(t, base.String(), variant.String())
	}

	t.Run("delimiter in a segment cannot alias another key", func(t *testing.T) {
		tricky := base
		tricky.UserID = "user:1"
		honest := base
		honest.UserID = "user_1"
		assert.Equal(t, honest.String(), tricky.String(), "sanitization must be deterministic")
		assert.NotEqual(t, base.String(), tricky.String())
	})
}

func TestInMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(DefaultTTL)
	key := testKey()

	answers := map[string]audit.Answer{
		"q1": {Value: audit.Satisfactory},
		"q2": {Value: audit.NotSatisfactory, Issue: &audit.IssueDraft{ProblemDescription: "leak"}},
	}
	require.NoError(t, store.Save(ctx, key, answers))

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, answers, loaded)

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, map[string]audit.Answer{"q1": {Value: audit.NotApplicable}}))
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, audit.NotApplicable, loaded["q1"].Value)
	})

	t.Run("clear evicts", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, key))
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestInMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(24 * time.Hour)
	key := testKey()

	savedAt := time.Date(2025, 2, 24, 9, 0, 0, 0, time.UTC)
	now := savedAt
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Save(ctx, key, map[string]audit.Answer{"q1": {Value: audit.Satisfactory}}))

	t.Run("still alive just inside the TTL", func(t *testing.T) {
		now = savedAt.Add(23*time.Hour + 59*time.Minute)
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
	})

	t.Run("evicted just past the TTL", func(t *testing.T) {
		now = savedAt.Add(24*time.Hour + time.Minute)
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		// Eviction is permanent: rewinding the clock does not revive it.
		now = savedAt
		loaded, err = store.Load(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestInMemoryStoreCorruptDraft(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(DefaultTTL)
	key := testKey()

	require.NoError(t, store.Save(ctx, key, map[string]audit.Answer{"q1": {Value: audit.Satisfactory}}))
	store.Corrupt(key)

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err, "corrupt drafts must be absorbed, not surfaced")
	assert.Empty(t, loaded)

	// The entry was evicted, so a fresh save starts clean.
	require.NoError(t, store.Save(ctx, key, map[string]audit.Answer{"q2": {Value: audit.NotApplicable}}))
	loaded, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestLoadMissingDraftIsEmptyNotError(t *testing.T) {
	store := NewInMemoryStore(DefaultTTL)
	loaded, err := store.Load(context.Background(), testKey())
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}
