package postgresdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usrlinks/internal/models"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected string
	}{
		{"plain", "john", "john"},
		{"percent", "50%", `50\%`},
		{"underscore", "a_b", `a\_b`},
		{"backslash", `a\b`, `a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeLike(tt.term))
		})
	}
}

func TestMapWriteError(t *testing.T) {
	emailErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
	assert.ErrorIs(t, mapWriteError(emailErr), models.ErrEmailTaken)

	otherErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_pkey"}
	assert.ErrorIs(t, mapWriteError(otherErr), models.ErrConflict)

	broken := &pgconn.PgError{Code: "08006"}
	err := mapWriteError(broken)
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.ErrorIs(t, err, broken)
}

func TestPostgresDB(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	ctx := context.Background()
	db, err := New(ctx, dsn, 3*time.Second, WithDBPreReset(true))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping(ctx))

	johnID, err := db.CreateUser(ctx, "John Doe", "John@example.com", "h1")
	require.NoError(t, err)
	janeID, err := db.CreateUser(ctx, "Jane Smith", "jane@example.com", "h2")
	require.NoError(t, err)
	assert.Greater(t, janeID, johnID)

	_, err = db.CreateUser(ctx, "Copy", "John@example.com", "h3")
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	usr, err := db.GetUserByEmail(ctx, "john@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, johnID, usr.ID)
	assert.Equal(t, "h1", usr.PasswordHash)

	newName := "Johnny 50%"
	require.NoError(t, db.UpdateUser(ctx, johnID, models.UserPatch{Name: &newName}))
	usr, err = db.GetUserByID(ctx, johnID)
	require.NoError(t, err)
	assert.Equal(t, newName, usr.Name)
	assert.False(t, usr.UpdatedAt.Before(usr.CreatedAt))

	taken := "jane@example.com"
	assert.ErrorIs(t, db.UpdateUser(ctx, johnID, models.UserPatch{Email: &taken}), models.ErrEmailTaken)
	assert.ErrorIs(t, db.UpdateUser(ctx, 99999, models.UserPatch{Name: &newName}), models.ErrNotFound)

	found, err := db.SearchUsersByName(ctx, "50%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, johnID, found[0].ID)

	found, err = db.SearchUsersByName(ctx, "SMITH")
	require.NoError(t, err)
	require.Len(t, found, 1)

	all, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	deleted, err := db.DeleteUser(ctx, janeID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = db.DeleteUser(ctx, janeID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = db.GetUserByID(ctx, janeID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
