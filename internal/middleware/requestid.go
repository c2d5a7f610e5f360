package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

const maxRequestIDLength = 128

// inboundRequestIDHeaders are checked in order. Some gateways in front of the
// API only forward a correlation id.
var inboundRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestID propagates a well-formed inbound id or assigns a fresh UUID. The
// id ends up in log lines and response headers, so only token characters are
// accepted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := ""
		for _, header := range inboundRequestIDHeaders {
			if v := strings.TrimSpace(r.Header.Get(header)); validRequestID(v) {
				rid = v
				break
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, rid)
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return v
	}
	return ""
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
