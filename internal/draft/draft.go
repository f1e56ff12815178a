// Package draft persists in-progress answer sets so an interrupted audit can
// be resumed. Drafts are scoped to one user and one slot, expire after a TTL,
// and are cleared by a successful submission. A draft that fails to decode is
// treated exactly like a missing one: evicted, never surfaced.
package draft

import (
	"context"
	"strings"
	"time"

	"lpa/internal/audit"
)

// DefaultTTL bounds how long an unsubmitted draft survives.
const DefaultTTL = 24 * time.Hour

// Key scopes a draft. All five parts participate so drafts never leak across
// users or collide across otherwise-identical slots.
type Key struct {
	UserID      string
	AuditType   audit.Type
	PeriodKey   string
	Slot        string // time-of-day (daily), reviewer role (weekly), empty (monthly)
	Subcategory string
}

const keyPrefix = "draft:"

// String renders the storage key. Segments are sanitized so a user-controlled
// identifier containing the delimiter cannot alias another draft's key.
func (k Key) String() string {
	segments := []string{k.UserID, string(k.AuditType), k.PeriodKey, k.Slot, k.Subcategory}
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment)
	}
	return keyPrefix + strings.Join(segments, ":")
}

func sanitizeSegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// Draft is the stored wrapper: the partial answers plus when they were saved.
type Draft struct {
	Answers map[string]audit.Answer `json:"answers"`
	SavedAt time.Time               `json:"savedAt"`
}

// Store is the draft persistence surface.
//
// Load returns an empty answer set - never an error - when the draft is
// missing, expired, or fails to decode; the latter two also evict the entry.
type Store interface {
	Save(ctx context.Context, key Key, answers map[string]audit.Answer) error
	Load(ctx context.Context, key Key) (map[string]audit.Answer, error)
	Clear(ctx context.Context, key Key) error
}
