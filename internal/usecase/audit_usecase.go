package usecase

import (
	"context"

	"github.com/iho/cambio/internal/domain"
)

// AuditUseCase serves the compliance trail to administrators.
type AuditUseCase struct {
	auditRepo AuditRepository
	authz     Authorizer
}

func NewAuditUseCase(auditRepo AuditRepository, authz Authorizer) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo, authz: authz}
}

// ListAuditLogs returns entries matching filter, newest first.
func (uc *AuditUseCase) ListAuditLogs(ctx context.Context, actorID string, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if err := requirePrivileged(ctx, uc.authz, actorID); err != nil {
		return nil, err
	}
	if err := filter.Normalize(); err != nil {
		return nil, err
	}
	return uc.auditRepo.List(ctx, filter)
}
