package api

import (
	"context"
	"net/http"

	"github.com/warp/revenue-engine/revenue"
)

// Headers set by the identity gateway in front of this service. The gateway
// authenticates the user; this service only applies the access policy.
const (
	HeaderLawFirmID    = "X-Law-Firm-ID"
	HeaderUserID       = "X-User-ID"
	HeaderUserRole     = "X-User-Role"
	HeaderDepartmentID = "X-Department-ID"
)

type ctxKey string

const callerKey ctxKey = "caller"

// CallerResolver supplies the caller context of a request.
type CallerResolver interface {
	Resolve(r *http.Request) (revenue.Caller, bool)
}

// HeaderResolver reads the caller from gateway headers.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (revenue.Caller, bool) {
	c := revenue.Caller{
		UserID:       revenue.UserID(r.Header.Get(HeaderUserID)),
		LawFirmID:    revenue.LawFirmID(r.Header.Get(HeaderLawFirmID)),
		Role:         revenue.Role(r.Header.Get(HeaderUserRole)),
		DepartmentID: revenue.DepartmentID(r.Header.Get(HeaderDepartmentID)),
	}
	if c.LawFirmID == "" || c.Role == "" {
		return revenue.Caller{}, false
	}
	return c, true
}

// RequireCaller rejects requests without a caller context with 401.
func RequireCaller(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := resolver.Resolve(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing caller context", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, c)))
		})
	}
}

// CallerFrom returns the caller stored by RequireCaller.
func CallerFrom(ctx context.Context) (revenue.Caller, bool) {
	c, ok := ctx.Value(callerKey).(revenue.Caller)
	return c, ok
}
