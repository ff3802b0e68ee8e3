package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambio/internal/domain"
)

var userRowColumns = []string{"id", "email", "name", "hashed_password", "role", "active", "created_at", "updated_at"}

func TestUserRepositoryGetByEmail(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("admin@cambio.local").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("user-1", "admin@cambio.local", "Administrator", "$2a$10$hash", "admin", true, testTime, testTime))
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("nobody@cambio.local").
		WillReturnRows(pgxmock.NewRows(userRowColumns))

	repo := NewUserRepository(mock)

	user, err := repo.GetByEmail(ctx, "admin@cambio.local")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.True(t, user.Active)

	_, err = repo.GetByEmail(ctx, "nobody@cambio.local")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assertExpectations(t, mock)
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("INSERT INTO users").WillReturnError(uniqueViolation())

	err := NewUserRepository(mock).Create(context.Background(), &domain.User{ID: "user-2", Email: "admin@cambio.local", Role: domain.RoleOperator})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assertExpectations(t, mock)
}

func TestUserRepositoryDeleteMissing(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("DELETE FROM users").WithArgs("user-x").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := NewUserRepository(mock).Delete(context.Background(), "user-x")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assertExpectations(t, mock)
}

func TestUserRepositoryList(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("FROM users ORDER BY email").
		WithArgs(2, 0).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("user-1", "ana@cambio.local", "Ana", "$2a$10$a", "operator", true, testTime, testTime).
			AddRow("user-2", "bia@cambio.local", "Bia", "$2a$10$b", "viewer", false, testTime, testTime))

	users, err := NewUserRepository(mock).List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.RoleOperator, users[0].Role)
	assert.Equal(t, "bia@cambio.local", users[1].Email)
	assert.False(t, users[1].Active)
	assertExpectations(t, mock)
}

func TestUserRepositoryUpdateMissing(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("UPDATE users").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewUserRepository(mock).Update(context.Background(), &domain.User{ID: "user-x", Role: domain.RoleViewer})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assertExpectations(t, mock)
}
