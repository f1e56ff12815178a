package testutil

import (
	"net/http"
	"time"

	"lpa/pkg/requestcontext"
)

// WithActor adds an authenticated actor to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithActor(req *http.Request, uid, email string) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), requestcontext.UserRef{UID: uid, Email: email})
	return req.WithContext(ctx)
}

// WithTime pins the request's notion of "now".
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
