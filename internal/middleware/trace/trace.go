// Package trace assigns every request an ID and exposes it through the
// request context and the X-Request-ID response header.
package trace

import (
	"context"
	"net/http"
	"regexp"
	"sync/atomic"

	"github.com/google/uuid"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Middleware assigns request IDs.
type Middleware struct {
	total int64
}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Middleware reuses a well-formed incoming X-Request-ID and otherwise
// generates one.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&m.total, 1)

		id := r.Header.Get(HeaderRequestID)
		if !validID.MatchString(id) {
			id = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// TotalRequests returns how many requests passed through m.
func (m *Middleware) TotalRequests() int64 {
	return atomic.LoadInt64(&m.total)
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// FromRequest is GetRequestID for the request's context.
func FromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}
