package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/auth"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

var (
	errNoCredentials = errors.New("missing bearer token")
	errBadScheme     = errors.New("authorization scheme must be Bearer")
)

// Authenticate requires a valid bearer token and puts its user on the
// request context. Failures carry an RFC 6750 challenge.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				challenge(w, "", err.Error())
				return
			}

			claims, err := verifier.Verify(token)
			switch {
			case errors.Is(err, domain.ErrExpiredToken):
				challenge(w, "invalid_token", "token expired")
				return
			case err != nil:
				challenge(w, "invalid_token", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), claims.User())))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errNoCredentials
	}
	return token, nil
}

func challenge(w http.ResponseWriter, code, message string) {
	value := `Bearer realm="cambio"`
	if code != "" {
		value += `, error="` + code + `"`
	}
	w.Header().Set("WWW-Authenticate", value)
	writeJSONError(w, http.StatusUnauthorized, message)
}

// SystemActor runs every request as domain.SystemUser. It replaces
// Authenticate when authentication is switched off.
func SystemActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), domain.SystemUser)))
	})
}

// RequireRole lets through active users holding at least minRole.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := domain.UserFromContext(r.Context())
			switch {
			case !ok:
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			case !user.Active:
				writeJSONError(w, http.StatusForbidden, "account disabled")
			case !hasRole(user.Role, minRole):
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func hasRole(role, minRole domain.Role) bool {
	switch minRole {
	case domain.RoleAdmin:
		return role.IsPrivileged()
	case domain.RoleOperator:
		return role.CanCreate()
	default:
		return role.CanViewAll()
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
