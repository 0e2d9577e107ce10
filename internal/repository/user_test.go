package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "marco", Email: "marco@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	tests := []struct {
		name string
		user *models.User
	}{
		{"duplicate username", &models.User{Username: "marco", Email: "other@example.com", Password: "hash"}},
		{"duplicate email", &models.User{Username: "other", Email: "marco@example.com", Password: "hash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeConflict, appErr.Code)
			assert.Equal(t, "Username or email already exist", appErr.Message)
		})
	}
}

func TestUserRepository_FindByIdentifier(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	existing := createUser(t, db, "giulia")

	tests := []struct {
		name       string
		identifier string
		found      bool
	}{
		{"by email", "giulia@example.com", true},
		{"by username", "giulia", true},
		{"unknown", "nobody", false},
		{"email is case sensitive", "GIULIA@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByIdentifier(ctx, tt.identifier)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, user)
				return
			}
			require.NotNil(t, user)
			assert.Equal(t, existing.ID, user.ID)
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := createUser(t, db, "luca")

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "luca", got.Username)

	_, err = repo.GetByID(context.Background(), 999)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"pg other error", &pgconn.PgError{Code: "23503", Message: "foreign key"}, false},
		{"postgres message", errors.New(`duplicate key value violates unique constraint "idx_users_email"`), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueConstraintError(tt.err))
		})
	}
}
