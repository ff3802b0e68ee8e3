package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	queries *generated.Queries
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(db generated.DBTX) *CurrencyRepository {
	return &CurrencyRepository{queries: generated.New(db)}
}

// Create inserts a currency. A duplicate code yields domain.ErrCurrencyAlreadyExists.
func (r *CurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	err := r.queries.CreateCurrency(ctx, generated.CreateCurrencyParams{
		ID:         currency.ID,
		Code:       currency.Code,
		Name:       currency.Name,
		RateToBase: decimalToNumeric(currency.RateToBase),
		LastUpdate: timeToPgTimestamptz(currency.LastUpdate),
	})
	if isUniqueViolation(err) {
		return domain.ErrCurrencyAlreadyExists
	}

	return err
}

// GetByID retrieves a currency by ID.
func (r *CurrencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	row, err := r.queries.GetCurrencyByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCurrencyNotFound
		}

		return nil, err
	}

	return rowToCurrency(row), nil
}

// GetByCode retrieves a currency by its ISO code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	row, err := r.queries.GetCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCurrencyNotFound
		}

		return nil, err
	}

	return rowToCurrency(row), nil
}

// UpdateRate stores a new rate and returns the updated currency.
func (r *CurrencyRepository) UpdateRate(ctx context.Context, code string, rate decimal.Decimal, updatedAt time.Time) (*domain.Currency, error) {
	row, err := r.queries.UpdateCurrencyRate(ctx, generated.UpdateCurrencyRateParams{
		Code:       code,
		RateToBase: decimalToNumeric(rate),
		LastUpdate: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCurrencyNotFound
		}

		return nil, err
	}

	return rowToCurrency(row), nil
}

// List returns every registered currency ordered by code.
func (r *CurrencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	rows, err := r.queries.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	currencies := make([]*domain.Currency, 0, len(rows))
	for _, row := range rows {
		currencies = append(currencies, rowToCurrency(row))
	}

	return currencies, nil
}

func rowToCurrency(row generated.Currency) *domain.Currency {
	return &domain.Currency{
		ID:         row.ID,
		Code:       row.Code,
		Name:       row.Name,
		RateToBase: numericToDecimal(row.RateToBase),
		LastUpdate: row.LastUpdate.Time,
	}
}
