// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, tests inject
// them — without services importing net/http.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, actor)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// UserRef identifies the current actor. It is consumed verbatim into
// createdBy/lastEditedBy/editedBy on audit and issue records.
type UserRef struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (u UserRef) IsZero() bool { return u.UID == "" && u.Email == "" }

// Context key types (unexported for encapsulation).
type (
	actorKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyActor       = actorKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

func WithActor(ctx context.Context, actor UserRef) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// Actor returns the authenticated actor, or a zero UserRef when unset.
func Actor(ctx context.Context) UserRef {
	actor, ok := ctx.Value(ContextKeyActor).(UserRef)
	if !ok {
		return UserRef{}
	}
	return actor
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func RequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return requestID
}

// WithTime pins the request's notion of "now". Used by middleware to give the
// whole request one timestamp, and by tests to exercise TTL boundaries.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	t, ok := ctx.Value(ContextKeyRequestTime).(time.Time)
	if !ok {
		return time.Now()
	}
	return t
}
