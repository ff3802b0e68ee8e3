package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

// CurrencyService defines the behavior needed by CurrencyHandler.
type CurrencyService interface {
	BaseCode() string
	Quote(ctx context.Context, fromCode, toCode string) (*usecase.QuoteResult, error)
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]*domain.Currency, error)
	ListRates(ctx context.Context) ([]*usecase.CurrencyRate, error)
	CreateCurrency(ctx context.Context, input usecase.CreateCurrencyInput) (*domain.Currency, error)
	UpdateRate(ctx context.Context, input usecase.UpdateRateInput) (*domain.Currency, error)
}

// CurrencyHandler serves the currency registry and quotes.
type CurrencyHandler struct {
	currencyUC CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyUC CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyUC: currencyUC}
}

// List lists registered currencies.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencyUC.ListCurrencies(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(currencies))
}

// Get gets a currency by code.
func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := h.currencyUC.GetCurrency(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

// Create registers a currency.
func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCurrencyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(domain.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	currency, err := h.currencyUC.CreateCurrency(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyFromDomain(currency))
}

// UpdateRate replaces the rate of a currency.
func (h *CurrencyHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "code"), domain.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	currency, err := h.currencyUC.UpdateRate(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

// Rates quotes every currency against the base currency.
func (h *CurrencyHandler) Rates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.currencyUC.ListRates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RatesFromUseCase(h.currencyUC.BaseCode(), rates))
}

// Quote resolves the rate for ?from=&to=.
func (h *CurrencyHandler) Quote(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required", "")
		return
	}

	quote, err := h.currencyUC.Quote(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromUseCase(quote))
}
