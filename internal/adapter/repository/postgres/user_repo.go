package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
)

const selectUsers = `SELECT id, email, name, hashed_password, role, active, created_at, updated_at FROM users`

// userRow mirrors the users table for pgx's struct collectors.
type userRow struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	HashedPassword string    `db:"hashed_password"`
	Role           string    `db:"role"`
	Active         bool      `db:"active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (u userRow) toDomain() *domain.User {
	return &domain.User{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		HashedPassword: u.HashedPassword,
		Role:           domain.Role(u.Role),
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserRepository stores operator accounts.
type UserRepository struct {
	db generated.DBTX
}

func NewUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, name, hashed_password, role, active, created_at, updated_at)
		VALUES (@id, @email, @name, @hashed_password, @role, @active, @created_at, @updated_at)`,
		userArgs(user),
	)
	switch {
	case isUniqueViolation(err):
		return domain.ErrEmailAlreadyExists
	case err != nil:
		return fmt.Errorf("insert user %s: %w", user.Email, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, selectUsers+` WHERE id = $1`, id)
}

// GetByEmail expects an already normalized address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, selectUsers+` WHERE email = $1`, email)
}

func (r *UserRepository) one(ctx context.Context, query string, arg string) (*domain.User, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query user %s: %w", arg, err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user %s: %w", arg, err)
	}
	return row.toDomain(), nil
}

// Update rewrites everything but the email and creation time.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = @name, hashed_password = @hashed_password, role = @role,
		    active = @active, updated_at = @updated_at
		WHERE id = @id`,
		userArgs(user),
	)
	if err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List pages through accounts ordered by email.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, selectUsers+` ORDER BY email LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	users := make([]*domain.User, len(collected))
	for i, row := range collected {
		users[i] = row.toDomain()
	}
	return users, nil
}

func userArgs(user *domain.User) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":              user.ID,
		"email":           user.Email,
		"name":            user.Name,
		"hashed_password": user.HashedPassword,
		"role":            string(user.Role),
		"active":          user.Active,
		"created_at":      user.CreatedAt,
		"updated_at":      user.UpdatedAt,
	}
}
