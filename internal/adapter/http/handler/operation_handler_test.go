package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

type operationServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateOperationInput) (*domain.ExchangeOperation, error)
	updateFn func(ctx context.Context, input usecase.UpdateOperationInput) (*domain.ExchangeOperation, error)
	deleteFn func(ctx context.Context, input usecase.DeleteOperationInput) (*domain.ExchangeOperation, error)
	ticketFn func(ctx context.Context, id, actorID string) (string, error)
	getFn    func(ctx context.Context, id string) (*domain.ExchangeOperation, error)
	searchFn func(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error)
	eventsFn func(ctx context.Context, id string, limit, offset int) ([]*domain.OutboxEvent, error)
}

func (s *operationServiceStub) CreateOperation(ctx context.Context, input usecase.CreateOperationInput) (*domain.ExchangeOperation, error) {
	return s.createFn(ctx, input)
}

func (s *operationServiceStub) UpdateOperation(ctx context.Context, input usecase.UpdateOperationInput) (*domain.ExchangeOperation, error) {
	return s.updateFn(ctx, input)
}

func (s *operationServiceStub) DeleteOperation(ctx context.Context, input usecase.DeleteOperationInput) (*domain.ExchangeOperation, error) {
	return s.deleteFn(ctx, input)
}

func (s *operationServiceStub) GenerateTicket(ctx context.Context, id, actorID string) (string, error) {
	return s.ticketFn(ctx, id, actorID)
}

func (s *operationServiceStub) GetOperation(ctx context.Context, id string) (*domain.ExchangeOperation, error) {
	return s.getFn(ctx, id)
}

func (s *operationServiceStub) SearchOperations(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
	return s.searchFn(ctx, filter)
}

func (s *operationServiceStub) OperationEvents(ctx context.Context, id string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return s.eventsFn(ctx, id, limit, offset)
}

func sampleOperation() *domain.ExchangeOperation {
	return &domain.ExchangeOperation{
		ID:           "op-1",
		CustomerID:   "c1",
		FromCode:     "USD",
		ToCode:       "BRL",
		Amount:       decimal.RequireFromString("10"),
		ExchangeRate: decimal.RequireFromString("0.2"),
		FinalAmount:  decimal.RequireFromString("2"),
		Status:       domain.OperationStatusCompleted,
		CreatedBy:    "operator-1",
	}
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) dto.OperationResult {
	t.Helper()
	var res dto.OperationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return res
}

func TestOperationHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateOperationInput
	h := NewOperationHandler(&operationServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateOperationInput) (*domain.ExchangeOperation, error) {
			captured = input
			return sampleOperation(), nil
		},
	})

	body, _ := json.Marshal(dto.OperationRequest{CustomerID: "c1", FromCurrency: "USD", ToCurrency: "BRL", Amount: "10"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/operations", bytes.NewReader(body)), "operator-1", domain.RoleOperator)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ActorID != "operator-1" || captured.FromCode != "USD" || !captured.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	res := decodeResult(t, rec)
	if !res.Success || res.Operation == nil || res.Operation.ID != "op-1" || res.Ticket != "" {
		t.Fatalf("unexpected envelope: %+v", res)
	}
}

func TestOperationHandler_Create_InsufficientLimit(t *testing.T) {
	h := NewOperationHandler(&operationServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateOperationInput) (*domain.ExchangeOperation, error) {
			return nil, domain.ErrInsufficientLimit
		},
	})

	body, _ := json.Marshal(dto.OperationRequest{CustomerID: "c1", FromCurrency: "USD", ToCurrency: "BRL", Amount: "10"})
	rec := httptest.NewRecorder()

	h.Create(rec, httptest.NewRequest(http.MethodPost, "/operations", bytes.NewReader(body)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	res := decodeResult(t, rec)
	if res.Success || res.Kind != string(domain.KindInsufficientLimit) || res.Operation != nil {
		t.Fatalf("unexpected envelope: %+v", res)
	}
}

func TestOperationHandler_Create_ValidationError(t *testing.T) {
	called := false
	h := NewOperationHandler(&operationServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateOperationInput) (*domain.ExchangeOperation, error) {
			called = true
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/operations", bytes.NewBufferString(`{"customer_id":"c1","from_currency":"USD","to_currency":"BRL","amount":"-5"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatal("use case must not run for invalid input")
	}
	if res := decodeResult(t, rec); res.Kind != string(domain.KindInvalidArgument) {
		t.Fatalf("expected invalid_argument, got %+v", res)
	}
}

func TestOperationHandler_Update_UsesPathID(t *testing.T) {
	var captured usecase.UpdateOperationInput
	h := NewOperationHandler(&operationServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateOperationInput) (*domain.ExchangeOperation, error) {
			captured = input
			op := sampleOperation()
			op.Status = domain.OperationStatusModified
			return op, nil
		},
	})

	body, _ := json.Marshal(dto.OperationRequest{CustomerID: "c1", FromCurrency: "EUR", ToCurrency: "BRL", Amount: "3"})
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/operations/op-1", bytes.NewReader(body)), "id", "op-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ID != "op-1" || captured.FromCode != "EUR" || captured.ActorID != domain.SystemUser.ID {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if res := decodeResult(t, rec); res.Operation.Status != "modified" {
		t.Fatalf("unexpected envelope: %+v", res)
	}
}

func TestOperationHandler_Delete_AlreadyDeleted(t *testing.T) {
	h := NewOperationHandler(&operationServiceStub{
		deleteFn: func(ctx context.Context, input usecase.DeleteOperationInput) (*domain.ExchangeOperation, error) {
			return nil, domain.ErrOperationAlreadyDeleted
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/operations/op-1", nil), "id", "op-1")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if res := decodeResult(t, rec); res.Kind != string(domain.KindInvalidState) {
		t.Fatalf("expected invalid_state, got %+v", res)
	}
}

func TestOperationHandler_Ticket(t *testing.T) {
	h := NewOperationHandler(&operationServiceStub{
		ticketFn: func(ctx context.Context, id, actorID string) (string, error) {
			if id != "op-1" || actorID != "viewer-1" {
				t.Fatalf("unexpected args %s %s", id, actorID)
			}
			return "aGFzaA==", nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/operations/op-1/ticket", nil), "id", "op-1")
	req = asUser(req, "viewer-1", domain.RoleViewer)
	rec := httptest.NewRecorder()

	h.Ticket(rec, req)

	res := decodeResult(t, rec)
	if rec.Code != http.StatusOK || res.Ticket != "aGFzaA==" || res.Operation != nil {
		t.Fatalf("unexpected ticket response %d: %+v", rec.Code, res)
	}
}

func TestOperationHandler_Get_NotFound(t *testing.T) {
	h := NewOperationHandler(&operationServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ExchangeOperation, error) {
			return nil, domain.ErrOperationNotFound
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/operations/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestOperationHandler_Events(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewOperationHandler(&operationServiceStub{
		eventsFn: func(ctx context.Context, id string, limit, offset int) ([]*domain.OutboxEvent, error) {
			if id != "op-1" || limit != 5 || offset != 0 {
				t.Fatalf("unexpected args %s %d %d", id, limit, offset)
			}
			return []*domain.OutboxEvent{domain.NewOperationEvent("evt-1", domain.EventTypeOperationCreated, sampleOperation(), at)}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/operations/op-1/events?limit=5", nil), "id", "op-1")
	rec := httptest.NewRecorder()

	h.Events(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body []dto.EventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body[0].EventType != domain.EventTypeOperationCreated || body[0].Payload["final_amount"] != "2" {
		t.Fatalf("unexpected events %+v", body)
	}
}

func TestOperationHandler_Events_NotFound(t *testing.T) {
	h := NewOperationHandler(&operationServiceStub{
		eventsFn: func(ctx context.Context, id string, limit, offset int) ([]*domain.OutboxEvent, error) {
			return nil, domain.ErrOperationNotFound
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/operations/missing/events", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Events(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestOperationHandler_Search_ParsesFilter(t *testing.T) {
	var captured domain.OperationFilter
	h := NewOperationHandler(&operationServiceStub{
		searchFn: func(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
			captured = filter
			return &domain.OperationPage{
				Operations: []*domain.ExchangeOperation{sampleOperation()},
				Page:       2,
				PageSize:   5,
				TotalCount: 6,
				TotalPages: 2,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/operations?customer_id=c1&status=Completed&sort_by=amount&ascending=true&page=2&page_size=5&start_date=2025-01-01&end_date=2025-01-31",
		nil)
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.CustomerID != "c1" || captured.Status != domain.OperationStatusCompleted || captured.SortBy != "amount" {
		t.Fatalf("unexpected filter: %+v", captured)
	}
	if !captured.Ascending || captured.Page != 2 || captured.PageSize != 5 {
		t.Fatalf("unexpected paging: %+v", captured)
	}
	if captured.StartDate == nil || !captured.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %v", captured.StartDate)
	}
	if captured.EndDate == nil || captured.EndDate.Day() != 31 || captured.EndDate.Hour() != 23 {
		t.Fatalf("end date should cover the whole day: %v", captured.EndDate)
	}

	var page dto.OperationPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.TotalCount != 6 || len(page.Operations) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestOperationHandler_Search_BadQuery(t *testing.T) {
	queries := []string{
		"start_date=yesterday",
		"status=archived",
		"ascending=maybe",
	}

	for _, query := range queries {
		h := NewOperationHandler(&operationServiceStub{
			searchFn: func(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
				t.Fatalf("%s: search must not run", query)
				return nil, nil
			},
		})

		rec := httptest.NewRecorder()
		h.Search(rec, httptest.NewRequest(http.MethodGet, "/operations?"+query, nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, rec.Code)
		}
	}
}
