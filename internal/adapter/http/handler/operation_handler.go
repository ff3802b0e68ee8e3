package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

// OperationService defines the behavior needed by OperationHandler.
type OperationService interface {
	CreateOperation(ctx context.Context, input usecase.CreateOperationInput) (*domain.ExchangeOperation, error)
	UpdateOperation(ctx context.Context, input usecase.UpdateOperationInput) (*domain.ExchangeOperation, error)
	DeleteOperation(ctx context.Context, input usecase.DeleteOperationInput) (*domain.ExchangeOperation, error)
	GenerateTicket(ctx context.Context, id, actorID string) (string, error)
	GetOperation(ctx context.Context, id string) (*domain.ExchangeOperation, error)
	SearchOperations(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error)
	OperationEvents(ctx context.Context, id string, limit, offset int) ([]*domain.OutboxEvent, error)
}

// OperationHandler handles exchange operation requests. Commands answer with
// the dto.OperationResult envelope.
type OperationHandler struct {
	operationUC OperationService
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(operationUC OperationService) *OperationHandler {
	return &OperationHandler{operationUC: operationUC}
}

// Create quotes and books a new operation.
func (h *OperationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.OperationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeOperationError(w, err)
		return
	}

	input, err := req.ToCreateInput(domain.ActorID(r.Context()))
	if err != nil {
		writeOperationError(w, err)
		return
	}

	op, err := h.operationUC.CreateOperation(r.Context(), input)
	if err != nil {
		writeOperationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OperationSucceeded("operation created", op))
}

// Update re-quotes an existing operation.
func (h *OperationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.OperationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeOperationError(w, err)
		return
	}

	input, err := req.ToUpdateInput(chi.URLParam(r, "id"), domain.ActorID(r.Context()))
	if err != nil {
		writeOperationError(w, err)
		return
	}

	op, err := h.operationUC.UpdateOperation(r.Context(), input)
	if err != nil {
		writeOperationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationSucceeded("operation updated", op))
}

// Delete soft-deletes an operation and releases its reservation.
func (h *OperationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	op, err := h.operationUC.DeleteOperation(r.Context(), usecase.DeleteOperationInput{
		ID:      chi.URLParam(r, "id"),
		ActorID: domain.ActorID(r.Context()),
	})
	if err != nil {
		writeOperationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationSucceeded("operation deleted", op))
}

// Ticket returns the receipt hash of an operation.
func (h *OperationHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.operationUC.GenerateTicket(r.Context(), chi.URLParam(r, "id"), domain.ActorID(r.Context()))
	if err != nil {
		writeOperationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TicketSucceeded(ticket))
}

// Get gets an operation by ID.
func (h *OperationHandler) Get(w http.ResponseWriter, r *http.Request) {
	op, err := h.operationUC.GetOperation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// Events lists the state changes recorded for an operation.
//
//	?limit=&offset=
func (h *OperationHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.operationUC.OperationEvents(
		r.Context(),
		chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}

// Search pages through operations.
//
//	?customer_id=&status=&start_date=&end_date=&sort_by=&ascending=&page=&page_size=
//
// Dates accept RFC 3339 or YYYY-MM-DD; a bare end date covers the whole day.
func (h *OperationHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOperationFilter(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	page, err := h.operationUC.SearchOperations(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationPageFromDomain(page))
}

func parseOperationFilter(r *http.Request) (domain.OperationFilter, error) {
	q := r.URL.Query()

	filter := domain.OperationFilter{
		CustomerID: q.Get("customer_id"),
		SortBy:     q.Get("sort_by"),
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   parseIntQuery(r, "page_size", domain.DefaultOperationPageSize),
	}

	if v := q.Get("status"); v != "" {
		status, err := domain.ParseOperationStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}

	if v := q.Get("ascending"); v != "" {
		asc, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("%w: ascending must be a boolean", dto.ErrValidationFailed)
		}
		filter.Ascending = asc
	}

	start, err := parseDateQuery(q.Get("start_date"), false)
	if err != nil {
		return filter, err
	}
	end, err := parseDateQuery(q.Get("end_date"), true)
	if err != nil {
		return filter, err
	}
	filter.StartDate = start
	filter.EndDate = end

	return filter, nil
}

func parseDateQuery(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", dto.ErrValidationFailed, v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
