package middleware

import (
	"context"
	"net/http"
	"strings"

	"gymdesk/internal/auth"
	domainAccount "gymdesk/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const claimsContextKey contextKey = "claims"

// TokenValidator is the subset of auth.JWTManager the middleware needs.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth returns middleware that validates a bearer token when one is present and
// stores its claims in the request context.
// It does NOT block anonymous requests; use RequireStaff, RequireAdmin or RequireMember for that.
// A malformed or expired token is rejected with 401 so clients learn to re-login.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeJSONError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}
			claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole returns middleware that admits staff tokens carrying one of the given roles.
// POST: 401 without a token, 403 for member tokens or other roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
				return
			}
			if claims.Kind != auth.KindStaff || !roleSet[claims.Role] {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff admits any staff or admin token.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(domainAccount.RoleAdmin, domainAccount.RoleStaff)(next)
}

// RequireAdmin admits admin tokens only.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(domainAccount.RoleAdmin)(next)
}

// RequireMember admits tokens issued after OTP verification.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		if claims.Kind != auth.KindMember || claims.Phone == "" {
			writeJSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext extracts the token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// ContextWithClaims returns a context carrying the given claims.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
