package testutil

import (
	"net/http"
	"time"

	"pixkeys/pkg/requestcontext"
)

// WithSubject marks the request as authenticated by subject, as the auth
// middleware would.
func WithSubject(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithSubject(req.Context(), subject))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
