package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message   string `json:"message,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// UserResponse represents a back-office user. The password hash never leaves
// the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// UsersFromDomain converts domain users to response.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = UserFromDomain(u)
	}
	return out
}

// LoginResponse carries a signed access token.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// CurrencyResponse represents a currency in API responses.
type CurrencyResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Rate       decimal.Decimal `json:"rate"`
	LastUpdate time.Time       `json:"last_update"`
}

// CurrencyFromDomain converts a domain currency to response.
func CurrencyFromDomain(c *domain.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		ID:         c.ID,
		Code:       c.Code,
		Name:       c.Name,
		Rate:       c.RateToBase,
		LastUpdate: c.LastUpdate,
	}
}

// CurrenciesFromDomain converts domain currencies to responses.
func CurrenciesFromDomain(currencies []*domain.Currency) []*CurrencyResponse {
	result := make([]*CurrencyResponse, len(currencies))
	for i, c := range currencies {
		result[i] = CurrencyFromDomain(c)
	}
	return result
}

// RateResponse is a currency quoted in both directions against the base.
type RateResponse struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	ToBase     decimal.Decimal `json:"to_base"`
	FromBase   decimal.Decimal `json:"from_base"`
	LastUpdate time.Time       `json:"last_update"`
}

// RatesResponse lists every currency against the base currency.
type RatesResponse struct {
	Base  string          `json:"base"`
	Rates []*RateResponse `json:"rates"`
}

// RatesFromUseCase converts use case rates to response.
func RatesFromUseCase(base string, rates []*usecase.CurrencyRate) *RatesResponse {
	result := make([]*RateResponse, len(rates))
	for i, r := range rates {
		result[i] = &RateResponse{
			Code:       r.Code,
			Name:       r.Name,
			ToBase:     r.ToBase,
			FromBase:   r.FromBase,
			LastUpdate: r.LastUpdate,
		}
	}
	return &RatesResponse{Base: base, Rates: result}
}

// QuoteResponse represents a resolved exchange rate.
type QuoteResponse struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Rate     decimal.Decimal `json:"rate"`
	QuotedAt time.Time       `json:"quoted_at"`
}

// QuoteFromUseCase converts a quote to response.
func QuoteFromUseCase(q *usecase.QuoteResult) *QuoteResponse {
	return &QuoteResponse{
		From:     q.From.Code,
		To:       q.To.Code,
		Rate:     q.Rate,
		QuotedAt: q.QuotedAt,
	}
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Document     string    `json:"document"`
	DocumentType string    `json:"document_type"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	IsCompany    bool      `json:"is_company"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// CustomerFromDomain converts a domain customer to response.
func CustomerFromDomain(c *domain.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:           c.ID,
		Name:         c.Name,
		Document:     c.Document,
		DocumentType: string(c.DocumentType),
		Phone:        c.Phone,
		Email:        c.Email,
		IsCompany:    c.IsCompany,
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
	}
}

// CustomersFromDomain converts domain customers to responses.
func CustomersFromDomain(customers []*domain.Customer) []*CustomerResponse {
	result := make([]*CustomerResponse, len(customers))
	for i, c := range customers {
		result[i] = CustomerFromDomain(c)
	}
	return result
}

// LimitResponse represents a customer limit in API responses.
type LimitResponse struct {
	CustomerID    string          `json:"customer_id"`
	Balance       decimal.Decimal `json:"balance"`
	GrantedAmount decimal.Decimal `json:"granted_amount"`
	Exposure      decimal.Decimal `json:"exposure"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	LastUpdatedBy string          `json:"last_updated_by,omitempty"`
	LastUpdatedAt *time.Time      `json:"last_updated_at,omitempty"`
}

// LimitFromDomain converts a domain limit to response.
func LimitFromDomain(l *domain.CustomerLimit) *LimitResponse {
	return &LimitResponse{
		CustomerID:    l.CustomerID,
		Balance:       l.Balance,
		GrantedAmount: l.GrantedAmount,
		Exposure:      l.Exposure(),
		CreatedBy:     l.CreatedBy,
		CreatedAt:     l.CreatedAt,
		LastUpdatedBy: l.LastUpdatedBy,
		LastUpdatedAt: l.LastUpdatedAt,
	}
}

// OperationResponse represents an exchange operation in API responses.
type OperationResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	Status       string          `json:"status"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OperationFromDomain converts a domain operation to response.
func OperationFromDomain(o *domain.ExchangeOperation) *OperationResponse {
	return &OperationResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		FromCurrency: o.FromCode,
		ToCurrency:   o.ToCode,
		Amount:       o.Amount,
		ExchangeRate: o.ExchangeRate,
		FinalAmount:  o.FinalAmount,
		Status:       string(o.Status),
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// OperationResult is the tagged envelope returned by operation commands.
// Exactly one of Operation and Ticket is set on success.
type OperationResult struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Kind      string             `json:"kind,omitempty"`
	Retryable bool               `json:"retryable,omitempty"`
	Operation *OperationResponse `json:"operation,omitempty"`
	Ticket    string             `json:"ticket,omitempty"`
}

// OperationSucceeded wraps an operation in a successful envelope.
func OperationSucceeded(message string, o *domain.ExchangeOperation) *OperationResult {
	return &OperationResult{Success: true, Message: message, Operation: OperationFromDomain(o)}
}

// TicketSucceeded wraps a ticket in a successful envelope.
func TicketSucceeded(ticket string) *OperationResult {
	return &OperationResult{Success: true, Message: "ticket generated", Ticket: ticket}
}

// OperationPageResponse is one page of an operation search.
type OperationPageResponse struct {
	Operations      []*OperationResponse `json:"operations"`
	Page            int                  `json:"page"`
	PageSize        int                  `json:"page_size"`
	TotalCount      int64                `json:"total_count"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	TotalPages      int                  `json:"total_pages"`
	HasPreviousPage bool                 `json:"has_previous_page"`
	HasNextPage     bool                 `json:"has_next_page"`
}

// OperationPageFromDomain converts a search page to response.
func OperationPageFromDomain(p *domain.OperationPage) *OperationPageResponse {
	ops := make([]*OperationResponse, len(p.Operations))
	for i, o := range p.Operations {
		ops[i] = OperationFromDomain(o)
	}

	return &OperationPageResponse{
		Operations:      ops,
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalCount:      p.TotalCount,
		TotalAmount:     p.TotalAmount,
		TotalPages:      p.TotalPages,
		HasPreviousPage: p.HasPreviousPage,
		HasNextPage:     p.HasNextPage,
	}
}

// EventResponse is one recorded state change of an operation or limit.
type EventResponse struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to response.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = &EventResponse{
			ID:          e.ID,
			EventType:   e.EventType,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
			PublishedAt: e.PublishedAt,
		}
	}
	return out
}

// AuditLogResponse is one audit trail entry.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	out := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		out[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			IPAddress:    l.IPAddress,
			UserAgent:    l.UserAgent,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return out
}

// DiscrepancyResponse describes a limit that does not reconcile.
type DiscrepancyResponse struct {
	CustomerID    string          `json:"customer_id"`
	Balance       decimal.Decimal `json:"balance"`
	GrantedAmount decimal.Decimal `json:"granted_amount"`
	ActiveAmount  decimal.Decimal `json:"active_amount"`
	Difference    decimal.Decimal `json:"difference"`
}

// ReconciliationResponse is the ledger consistency report.
type ReconciliationResponse struct {
	Consistent       bool                   `json:"consistent"`
	TotalLimits      int                    `json:"total_limits"`
	ConsistentLimits int                    `json:"consistent_limits"`
	TotalBalance     decimal.Decimal        `json:"total_balance"`
	TotalReserved    decimal.Decimal        `json:"total_reserved"`
	Discrepancies    []*DiscrepancyResponse `json:"discrepancies"`
	CheckedAt        time.Time              `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation report to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) *ReconciliationResponse {
	discrepancies := make([]*DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = &DiscrepancyResponse{
			CustomerID:    d.CustomerID,
			Balance:       d.Balance,
			GrantedAmount: d.GrantedAmount,
			ActiveAmount:  d.ActiveAmount,
			Difference:    d.Difference(),
		}
	}

	return &ReconciliationResponse{
		Consistent:       r.LedgerConsistent,
		TotalLimits:      r.TotalLimits,
		ConsistentLimits: r.ConsistentLimits,
		TotalBalance:     r.TotalBalance,
		TotalReserved:    r.TotalReserved,
		Discrepancies:    discrepancies,
		CheckedAt:        r.CheckedAt,
	}
}
