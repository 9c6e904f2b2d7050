// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and stores read them
// without importing net/http.
//
// The evaluation clock is the load-bearing accessor here: time-dependent
// rules (blacklist expiry, lockups, velocity windows) and the policy
// activation gate all read Now(ctx), so tests pin time with WithTime and
// production middleware stamps the request arrival time once per request.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey    struct{}
	requestTimeKey  struct{}
	adminSubjectKey struct{}
)

// RequestID retrieves the correlation ID set by middleware, or "" if unset.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now returns the request-scoped evaluation time, falling back to the wall
// clock when no time was injected. All rule and registry code must use this
// instead of time.Now so a single operation sees one consistent instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the evaluation time. Set by middleware at request arrival;
// tests use it to exercise expiry and window boundaries deterministically.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// AdminSubject retrieves the authenticated admin subject, or "" if the
// request was not admin-authenticated.
func AdminSubject(ctx context.Context) string {
	if sub, ok := ctx.Value(adminSubjectKey{}).(string); ok {
		return sub
	}
	return ""
}

// WithAdminSubject injects the authenticated admin subject.
func WithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey{}, subject)
}
