package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/cambio/internal/domain"
)

// UserRepository persists back-office accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// UserUseCase manages the accounts of operators, viewers and admins. Users
// it returns never carry a password hash.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
	cost     int
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(userRepo UserRepository, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		idGen:    idGen,
		cost:     bcrypt.DefaultCost,
	}
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	switch existing, err := uc.userRepo.GetByEmail(ctx, email); {
	case err == nil && existing != nil:
		return nil, domain.ErrEmailAlreadyExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.cost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Email:          email,
		Name:           strings.TrimSpace(input.Name),
		HashedPassword: string(hash),
		Role:           input.Role,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return withoutHash(user), nil
}

// EnsureAdmin creates the bootstrap admin unless email is taken. It reports
// whether an account was created.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	if _, err := uc.CreateUser(ctx, CreateUserInput{
		Email:    email,
		Name:     "Administrator",
		Password: password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate checks credentials. Unknown emails still pay for a bcrypt
// comparison so response time does not reveal which accounts exist.
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil || user == nil {
		_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(input.Password))
		return nil, domain.ErrUnauthorized
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}

	return withoutHash(user), nil
}

func (uc *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	users, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = withoutHash(u)
	}
	return out, nil
}

// UpdateUserInput changes the non-nil fields of user ID on behalf of ActorID.
type UpdateUserInput struct {
	ID       string
	ActorID  string
	Name     *string
	Role     *domain.Role
	Active   *bool
	Password *string
}

// UpdateUser applies input. An admin may not demote or deactivate their own
// account, so at least one admin always remains able to sign in.
func (uc *UserUseCase) UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.ID == input.ActorID {
		demoted := input.Role != nil && !input.Role.IsPrivileged()
		deactivated := input.Active != nil && !*input.Active
		if demoted || deactivated {
			return nil, domain.ErrSelfLockout
		}
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Password != nil {
		if err := domain.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), uc.cost)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return withoutHash(user), nil
}

// DeleteUser removes an account. Operations it created keep its id.
func (uc *UserUseCase) DeleteUser(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return domain.ErrSelfLockout
	}
	return uc.userRepo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func withoutHash(u *domain.User) *domain.User {
	clean := *u
	clean.HashedPassword = ""
	return &clean
}

var decoyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("cambio decoy password"), bcrypt.DefaultCost)
	return hash
})
