package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

// LimitService defines the behavior needed by LimitHandler.
type LimitService interface {
	GetLimit(ctx context.Context, customerID string) (*domain.CustomerLimit, error)
	Create(ctx context.Context, input usecase.CreateLimitInput) (*domain.CustomerLimit, error)
	SetBalance(ctx context.Context, input usecase.SetBalanceInput) (*domain.CustomerLimit, error)
}

// LimitHandler handles customer limit requests.
type LimitHandler struct {
	limitUC LimitService
}

// NewLimitHandler creates a new LimitHandler.
func NewLimitHandler(limitUC LimitService) *LimitHandler {
	return &LimitHandler{limitUC: limitUC}
}

// Create grants a customer its limit.
func (h *LimitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLimitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(domain.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit, err := h.limitUC.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LimitFromDomain(limit))
}

// Get returns the limit of a customer.
func (h *LimitHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limitUC.GetLimit(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LimitFromDomain(limit))
}

// SetBalance overrides the balance of a customer limit.
func (h *LimitHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.SetBalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "customerID"), domain.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit, err := h.limitUC.SetBalance(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LimitFromDomain(limit))
}
