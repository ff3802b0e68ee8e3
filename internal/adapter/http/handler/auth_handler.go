package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/auth"
	"github.com/iho/cambio/internal/infrastructure/metrics"
	"github.com/iho/cambio/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler.
type UserService interface {
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)
	UpdateUser(ctx context.Context, input usecase.UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id, actorID string) error
}

// AuthHandler handles login and user management endpoints.
type AuthHandler struct {
	users      UserService
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserService, jwtManager *auth.JWTManager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtManager: jwtManager,
		metrics:    m,
	}
}

// Login exchanges email and password for a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.countAttempt("invalid")
		writeDomainError(w, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.countAttempt("failure")
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrInactiveUser) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		writeDomainError(w, err)
		return
	}

	token, err := h.jwtManager.Issue(user)
	if err != nil {
		h.countAttempt("error")
		writeError(w, http.StatusInternalServerError, "failed to generate token", "")
		return
	}

	h.countAttempt("success")
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      dto.UserFromDomain(user),
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// CreateUser registers a back-office user.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// ListUsers pages through back-office users.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UsersFromDomain(users))
}

// UpdateUser changes the name, role, status or password of a user.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), domain.ActorID(r.Context())))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// DeleteUser removes a user.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id"), domain.ActorID(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) countAttempt(status string) {
	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}
