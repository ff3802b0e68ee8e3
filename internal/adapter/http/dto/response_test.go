package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

func TestOperationFromDomain(t *testing.T) {
	now := time.Now()
	op := &domain.ExchangeOperation{
		ID:           "op-1",
		CustomerID:   "c1",
		FromCode:     "USD",
		ToCode:       "BRL",
		Amount:       decimal.RequireFromString("10"),
		ExchangeRate: decimal.RequireFromString("5"),
		FinalAmount:  decimal.RequireFromString("50"),
		Status:       domain.OperationStatusCompleted,
		CreatedBy:    "operator",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	resp := OperationFromDomain(op)
	if resp.FromCurrency != "USD" || resp.ToCurrency != "BRL" || resp.Status != "completed" {
		t.Fatalf("unexpected operation response: %+v", resp)
	}
	if !resp.FinalAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected final amount 50, got %s", resp.FinalAmount)
	}
}

func TestOperationResultEnvelope(t *testing.T) {
	op := &domain.ExchangeOperation{ID: "op-1", Status: domain.OperationStatusCompleted}

	body, err := json.Marshal(OperationSucceeded("operation created", op))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["success"] != true || decoded["message"] != "operation created" {
		t.Fatalf("unexpected envelope: %s", body)
	}
	if _, ok := decoded["operation"]; !ok {
		t.Fatalf("expected operation in envelope: %s", body)
	}
	if _, ok := decoded["ticket"]; ok {
		t.Fatalf("ticket must be omitted when empty: %s", body)
	}

	body, _ = json.Marshal(TicketSucceeded("abc="))
	decoded = map[string]any{}
	_ = json.Unmarshal(body, &decoded)
	if decoded["ticket"] != "abc=" {
		t.Fatalf("expected ticket in envelope: %s", body)
	}
	if _, ok := decoded["operation"]; ok {
		t.Fatalf("operation must be omitted for tickets: %s", body)
	}
}

func TestLimitFromDomain(t *testing.T) {
	limit := &domain.CustomerLimit{
		CustomerID:    "c1",
		Balance:       decimal.RequireFromString("30"),
		GrantedAmount: decimal.RequireFromString("100"),
	}

	resp := LimitFromDomain(limit)
	if !resp.Exposure.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected exposure 70, got %s", resp.Exposure)
	}
}

func TestOperationPageFromDomain(t *testing.T) {
	page := &domain.OperationPage{
		Operations:  []*domain.ExchangeOperation{{ID: "a"}, {ID: "b"}},
		Page:        2,
		PageSize:    2,
		TotalCount:  5,
		TotalAmount: decimal.RequireFromString("42"),
		TotalPages:  3,
		HasNextPage: true,
	}

	resp := OperationPageFromDomain(page)
	if len(resp.Operations) != 2 || resp.Operations[1].ID != "b" {
		t.Fatalf("unexpected operations: %+v", resp.Operations)
	}
	if resp.TotalPages != 3 || !resp.HasNextPage || resp.HasPreviousPage {
		t.Fatalf("unexpected paging: %+v", resp)
	}
}

func TestReconciliationFromUseCase(t *testing.T) {
	report := &usecase.ReconciliationReport{
		TotalLimits:      2,
		ConsistentLimits: 1,
		Discrepancies: []*domain.LimitReconciliation{{
			CustomerID:    "c1",
			Balance:       decimal.RequireFromString("60"),
			GrantedAmount: decimal.RequireFromString("100"),
			ActiveAmount:  decimal.RequireFromString("30"),
		}},
	}

	resp := ReconciliationFromUseCase(report)
	if resp.Consistent {
		t.Fatal("expected inconsistent report")
	}
	if len(resp.Discrepancies) != 1 || !resp.Discrepancies[0].Difference.Equal(decimal.NewFromInt(-10)) {
		t.Fatalf("unexpected discrepancies: %+v", resp.Discrepancies)
	}
}

func TestRatesFromUseCase(t *testing.T) {
	rates := []*usecase.CurrencyRate{{Code: "USD", ToBase: decimal.NewFromInt(5), FromBase: decimal.RequireFromString("0.2")}}

	resp := RatesFromUseCase("BRL", rates)
	if resp.Base != "BRL" || len(resp.Rates) != 1 || resp.Rates[0].Code != "USD" {
		t.Fatalf("unexpected rates response: %+v", resp)
	}
}
