package handler

import (
	"context"
	"net/http"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

// ReconciliationService defines the behavior needed by LedgerHandler.
type ReconciliationService interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// StatsService defines the behavior needed for dashboard figures.
type StatsService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// LedgerHandler handles ledger-wide reports.
type LedgerHandler struct {
	reconciliationUC ReconciliationService
	statsUC          StatsService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliationUC ReconciliationService, statsUC StatsService) *LedgerHandler {
	return &LedgerHandler{reconciliationUC: reconciliationUC, statsUC: statsUC}
}

// CheckConsistency reconciles every customer limit against its live
// operations. An inconsistent ledger answers 409 with the discrepancies.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	status := http.StatusOK
	if !report.LedgerConsistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ReconciliationFromUseCase(report))
}

// DashboardStats returns the headline back-office figures.
func (h *LedgerHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsUC.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
