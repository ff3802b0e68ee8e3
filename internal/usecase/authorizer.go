package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/cambio/internal/domain"
)

// UserAuthorizer implements Authorizer on top of the user store.
type UserAuthorizer struct {
	userRepo UserRepository
}

// NewUserAuthorizer creates a new UserAuthorizer.
func NewUserAuthorizer(userRepo UserRepository) *UserAuthorizer {
	return &UserAuthorizer{userRepo: userRepo}
}

// IsPrivileged reports whether actorID holds the admin role. The user attached
// to ctx is trusted when it is the actor; anyone else is looked up.
func (a *UserAuthorizer) IsPrivileged(ctx context.Context, actorID string) (bool, error) {
	if user, ok := domain.UserFromContext(ctx); ok && user.ID == actorID {
		return user.Active && user.Role.IsPrivileged(), nil
	}

	user, err := a.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	return user.Active && user.Role.IsPrivileged(), nil
}

func requirePrivileged(ctx context.Context, authz Authorizer, actorID string) error {
	privileged, err := authz.IsPrivileged(ctx, actorID)
	if err != nil {
		return err
	}
	if !privileged {
		return domain.ErrPermissionDenied
	}
	return nil
}

// requireOwnerOrPrivileged allows the creator of op and privileged actors.
func requireOwnerOrPrivileged(ctx context.Context, authz Authorizer, op *domain.ExchangeOperation, actorID string) error {
	if op.OwnedBy(actorID) {
		return nil
	}
	return requirePrivileged(ctx, authz, actorID)
}

// newAuditLog stamps a success entry with the request that caused it.
func newAuditLog(ctx context.Context, id, actorID string, action domain.AuditAction, resourceType, resourceID string, before, after domain.JSON) *domain.AuditLog {
	meta := domain.RequestMetaFrom(ctx)
	return &domain.AuditLog{
		ID:           id,
		UserID:       actorID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
}
