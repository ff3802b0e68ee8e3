package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
)

// CurrencyUseCase resolves quotes and administers the currency registry.
type CurrencyUseCase struct {
	currencyRepo CurrencyRepository
	auditRepo    AuditRepository
	authz        Authorizer
	idGen        IDGenerator
	baseCode     string
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewCurrencyUseCase creates a new CurrencyUseCase. An empty baseCode selects
// domain.DefaultBaseCurrency.
func NewCurrencyUseCase(
	currencyRepo CurrencyRepository,
	auditRepo AuditRepository,
	authz Authorizer,
	idGen IDGenerator,
	baseCode string,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *CurrencyUseCase {
	if baseCode == "" {
		baseCode = domain.DefaultBaseCurrency
	}

	return &CurrencyUseCase{
		currencyRepo: currencyRepo,
		auditRepo:    auditRepo,
		authz:        authz,
		idGen:        idGen,
		baseCode:     domain.NormalizeCurrencyCode(baseCode),
		metrics:      metrics,
		logger:       logger,
	}
}

// BaseCode returns the code of the base currency.
func (uc *CurrencyUseCase) BaseCode() string {
	return uc.baseCode
}

// QuoteResult is a resolved exchange rate with the currencies it was read from.
type QuoteResult struct {
	From     *domain.Currency
	To       *domain.Currency
	Rate     decimal.Decimal
	QuotedAt time.Time
}

// Quote resolves the rate converting fromCode into toCode. Both currencies are
// read from the registry on every call.
func (uc *CurrencyUseCase) Quote(ctx context.Context, fromCode, toCode string) (*QuoteResult, error) {
	from, err := uc.GetCurrency(ctx, fromCode)
	if err != nil {
		return nil, err
	}

	to, err := uc.GetCurrency(ctx, toCode)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.QuotesServed.Inc()
	}

	return &QuoteResult{
		From:     from,
		To:       to,
		Rate:     domain.Quote(from, to, uc.baseCode),
		QuotedAt: time.Now().UTC(),
	}, nil
}

// GetCurrency looks up a currency by code.
func (uc *CurrencyUseCase) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	if err := domain.ValidateCurrencyCode(code); err != nil {
		return nil, err
	}

	return uc.currencyRepo.GetByCode(ctx, domain.NormalizeCurrencyCode(code))
}

// ListCurrencies returns every registered currency.
func (uc *CurrencyUseCase) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	return uc.currencyRepo.List(ctx)
}

// CurrencyRate is a currency quoted in both directions against the base.
type CurrencyRate struct {
	Code       string
	Name       string
	ToBase     decimal.Decimal // Quote(currency, base)
	FromBase   decimal.Decimal // Quote(base, currency)
	LastUpdate time.Time
}

// ListRates quotes every registered currency against the base currency.
func (uc *CurrencyUseCase) ListRates(ctx context.Context) ([]*CurrencyRate, error) {
	currencies, err := uc.currencyRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var base *domain.Currency
	for _, c := range currencies {
		if c.IsBase(uc.baseCode) {
			base = c
			break
		}
	}
	if base == nil {
		return nil, fmt.Errorf("%w: base currency %s is not registered", domain.ErrCurrencyNotFound, uc.baseCode)
	}

	rates := make([]*CurrencyRate, 0, len(currencies))
	for _, c := range currencies {
		rates = append(rates, &CurrencyRate{
			Code:       c.Code,
			Name:       c.Name,
			ToBase:     domain.Quote(c, base, uc.baseCode),
			FromBase:   domain.Quote(base, c, uc.baseCode),
			LastUpdate: c.LastUpdate,
		})
	}

	return rates, nil
}

// CreateCurrencyInput represents input for registering a currency.
type CreateCurrencyInput struct {
	Code    string
	Name    string
	Rate    decimal.Decimal
	ActorID string
}

// CreateCurrency registers a currency. Only privileged actors may do this.
func (uc *CurrencyUseCase) CreateCurrency(ctx context.Context, input CreateCurrencyInput) (*domain.Currency, error) {
	if err := requirePrivileged(ctx, uc.authz, input.ActorID); err != nil {
		return nil, err
	}

	currency, err := uc.newCurrency(input.Code, input.Name, input.Rate)
	if err != nil {
		return nil, err
	}

	if _, err := uc.currencyRepo.GetByCode(ctx, currency.Code); err == nil {
		return nil, domain.ErrCurrencyAlreadyExists
	} else if !errors.Is(err, domain.ErrCurrencyNotFound) {
		return nil, err
	}

	if err := uc.currencyRepo.Create(ctx, currency); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, domain.AuditActionCurrencyCreate, currency.Code, nil, domain.MarshalState(currency))

	return currency, nil
}

// UpdateRateInput represents input for changing a currency rate.
type UpdateRateInput struct {
	Code    string
	Rate    decimal.Decimal
	ActorID string
}

// UpdateRate replaces the rate of a currency. The base currency always keeps
// a rate of 1.
func (uc *CurrencyUseCase) UpdateRate(ctx context.Context, input UpdateRateInput) (*domain.Currency, error) {
	if err := requirePrivileged(ctx, uc.authz, input.ActorID); err != nil {
		return nil, err
	}

	if err := domain.ValidateRate(input.Rate); err != nil {
		return nil, err
	}

	before, err := uc.GetCurrency(ctx, input.Code)
	if err != nil {
		return nil, err
	}

	if before.IsBase(uc.baseCode) && !input.Rate.Equal(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: the base currency rate is fixed at 1", domain.ErrInvalidRate)
	}

	updated, err := uc.currencyRepo.UpdateRate(ctx, before.Code, input.Rate, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, domain.AuditActionCurrencyRate, updated.Code, domain.MarshalState(before), domain.MarshalState(updated))

	if uc.metrics != nil {
		uc.metrics.RateUpdates.WithLabelValues(updated.Code).Inc()
	}

	return updated, nil
}

// SeedDefaults registers the default currencies that are missing and returns
// how many were created.
func (uc *CurrencyUseCase) SeedDefaults(ctx context.Context) (int, error) {
	created := 0

	for _, seed := range domain.DefaultCurrencies {
		rate, err := decimal.NewFromString(seed.Rate)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", seed.Code, err)
		}

		_, err = uc.currencyRepo.GetByCode(ctx, seed.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrCurrencyNotFound) {
			return created, err
		}

		currency, err := uc.newCurrency(seed.Code, seed.Name, rate)
		if err != nil {
			return created, err
		}

		if err := uc.currencyRepo.Create(ctx, currency); err != nil {
			if errors.Is(err, domain.ErrCurrencyAlreadyExists) {
				continue
			}
			return created, err
		}
		created++
	}

	return created, nil
}

func (uc *CurrencyUseCase) newCurrency(code, name string, rate decimal.Decimal) (*domain.Currency, error) {
	if err := domain.ValidateCurrencyCode(code); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > domain.MaxCurrencyNameLength {
		return nil, fmt.Errorf("%w: name must have 1 to %d characters", domain.ErrInvalidCurrency, domain.MaxCurrencyNameLength)
	}

	if err := domain.ValidateRate(rate); err != nil {
		return nil, err
	}

	code = domain.NormalizeCurrencyCode(code)
	if code == uc.baseCode && !rate.Equal(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: the base currency rate is fixed at 1", domain.ErrInvalidRate)
	}

	return &domain.Currency{
		ID:         uc.idGen.Generate(),
		Code:       code,
		Name:       name,
		RateToBase: rate,
		LastUpdate: time.Now().UTC(),
	}, nil
}

// audit records a registry change. Registry writes are single statements, so
// the row is written after the fact and a failure does not undo the change.
func (uc *CurrencyUseCase) audit(ctx context.Context, actorID string, action domain.AuditAction, code string, before, after domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	log := newAuditLog(ctx, uc.idGen.Generate(), actorID, action, domain.ResourceTypeCurrency, code, before, after)
	if err := uc.auditRepo.Create(ctx, log); err != nil {
		log.Status = string(domain.AuditStatusError)
		uc.logger.Error().Err(err).
			Str("action", log.Action).
			Str("currency", code).
			Str("actor_id", actorID).
			Msg("audit write failed")
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}
}
