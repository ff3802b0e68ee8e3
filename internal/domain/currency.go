package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseCurrency is the currency limits are denominated in.
const DefaultBaseCurrency = "BRL"

// Currency is a registered currency priced against the base currency.
type Currency struct {
	ID         string
	Code       string
	Name       string
	RateToBase decimal.Decimal
	LastUpdate time.Time
}

// IsBase reports whether c is the base currency identified by baseCode.
func (c *Currency) IsBase(baseCode string) bool {
	return strings.EqualFold(c.Code, baseCode)
}

// Quote returns the rate that converts an amount of from into to.
//
// Rates go through the base currency. For two non-base currencies the result
// is to.RateToBase / from.RateToBase, which is kept as-is for compatibility
// with existing operation records.
func Quote(from, to *Currency, baseCode string) decimal.Decimal {
	fromBase := from.IsBase(baseCode)
	toBase := to.IsBase(baseCode)

	switch {
	case fromBase && toBase:
		return decimal.NewFromInt(1)
	case fromBase:
		return to.RateToBase
	case toBase:
		return decimal.NewFromInt(1).Div(from.RateToBase)
	default:
		return to.RateToBase.Div(from.RateToBase)
	}
}

// SeedCurrency is a currency loaded on first start.
type SeedCurrency struct {
	Code string
	Name string
	Rate string
}

// DefaultCurrencies is the initial currency registry, priced in BRL.
var DefaultCurrencies = []SeedCurrency{
	{Code: "BRL", Name: "Real Brasileiro", Rate: "1.0"},
	{Code: "USD", Name: "Dólar Americano", Rate: "5.0"},
	{Code: "EUR", Name: "Euro", Rate: "5.5"},
	{Code: "GBP", Name: "Libra Esterlina", Rate: "6.3"},
	{Code: "JPY", Name: "Iene Japonês", Rate: "0.034"},
	{Code: "CHF", Name: "Franco Suíço", Rate: "5.7"},
	{Code: "CAD", Name: "Dólar Canadense", Rate: "3.7"},
	{Code: "AUD", Name: "Dólar Australiano", Rate: "3.3"},
	{Code: "CNY", Name: "Yuan Chinês", Rate: "0.7"},
	{Code: "NZD", Name: "Dólar Neozelandês", Rate: "3.05"},
	{Code: "SGD", Name: "Dólar de Singapura", Rate: "3.75"},
	{Code: "HKD", Name: "Dólar de Hong Kong", Rate: "0.64"},
	{Code: "SEK", Name: "Coroa Sueca", Rate: "0.48"},
	{Code: "KRW", Name: "Won Sul-Coreano", Rate: "0.0038"},
	{Code: "INR", Name: "Rupia Indiana", Rate: "0.060"},
	{Code: "MXN", Name: "Peso Mexicano", Rate: "0.30"},
	{Code: "ARS", Name: "Peso Argentino", Rate: "0.0060"},
	{Code: "DKK", Name: "Coroa Dinamarquesa", Rate: "0.74"},
	{Code: "ILS", Name: "Shekel Israelense", Rate: "1.37"},
	{Code: "NOK", Name: "Coroa Norueguesa", Rate: "0.48"},
}
