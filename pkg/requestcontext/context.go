// Package requestcontext provides HTTP-independent accessors for request-scoped values.
//
// Middleware sets the values; services read them. Keeping this package free of
// net/http lets the attendance and verification services import it directly.
//
//	subject := requestcontext.SubjectID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject a fixed clock with WithTime.
package requestcontext

import (
	"context"
	"time"

	id "bioclock/pkg/domain"
)

type (
	subjectIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	userAgentKey   struct{}
	clientIPKey    struct{}
	operatorKey    struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeySubjectID   = subjectIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyOperator    = operatorKey{}
)

// SubjectID retrieves the authenticated subject. Returns the zero value if unset.
func SubjectID(ctx context.Context) id.SubjectID {
	if subjectID, ok := ctx.Value(ContextKeySubjectID).(id.SubjectID); ok {
		return subjectID
	}
	return id.SubjectID{}
}

// WithSubjectID injects the authenticated subject into the context.
func WithSubjectID(ctx context.Context, subjectID id.SubjectID) context.Context {
	return context.WithValue(ctx, ContextKeySubjectID, subjectID)
}

// IsOperator reports whether the caller may record attendance on behalf of others.
func IsOperator(ctx context.Context) bool {
	operator, _ := ctx.Value(ContextKeyOperator).(bool)
	return operator
}

func WithOperator(ctx context.Context, operator bool) context.Context {
	return context.WithValue(ctx, ContextKeyOperator, operator)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// UserAgent retrieves the caller's User-Agent header.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// ClientIP retrieves the caller's address.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// Now retrieves the request-scoped time.
// Falls back to time.Now() outside HTTP requests (CLI, tests without a clock).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request time. Adjudication and session expiry both read
// the clock through Now, so a single pinned instant keeps a request consistent.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
