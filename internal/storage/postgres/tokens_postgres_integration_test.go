package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a real database; set TEST_DATABASE_URL to enable
// them (schema from migrations/001_init.sql must be applied).
func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) *models.User {
	t.Helper()
	repo := NewUserPostgres(pool)
	user, err := repo.Create(context.Background(), models.User{
		Name:     "Integration",
		Email:    fmt.Sprintf("it-%s@example.com", uuid.NewString()),
		Password: "hashed-password",
		Role:     models.UserRole,
		Active:   true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

func TestTokensPostgresFindValidPartition(t *testing.T) {
	pool := mustOpenTestPool(t)
	repo := NewTokensPostgres(pool)
	user := createTestUser(t, pool)
	ctx := context.Background()

	valid := "it-valid-" + uuid.NewString()
	require.NoError(t, repo.Save(ctx, user.ID, valid, time.Now().Add(time.Hour)))

	expired := "it-expired-" + uuid.NewString()
	require.NoError(t, repo.Save(ctx, user.ID, expired, time.Now().Add(-time.Second)))

	revoked := "it-revoked-" + uuid.NewString()
	require.NoError(t, repo.Save(ctx, user.ID, revoked, time.Now().Add(time.Hour)))
	n, err := repo.Revoke(ctx, revoked)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := repo.FindValid(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)

	for name, token := range map[string]string{
		"expired": expired,
		"revoked": revoked,
		"unknown": "it-unknown-" + uuid.NewString(),
	} {
		_, err := repo.FindValid(ctx, token)
		assert.ErrorIs(t, err, app_errors.ErrTokenNotFound, name)
	}
}

func TestTokensPostgresRevokeIdempotent(t *testing.T) {
	pool := mustOpenTestPool(t)
	repo := NewTokensPostgres(pool)
	user := createTestUser(t, pool)
	ctx := context.Background()

	token := "it-revoke-" + uuid.NewString()
	require.NoError(t, repo.Save(ctx, user.ID, token, time.Now().Add(time.Hour)))

	first, err := repo.Revoke(ctx, token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first)

	second, err := repo.Revoke(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, second, "revoking twice must be a no-op the second time")
}

func TestTokensPostgresMultipleSessionsPerUser(t *testing.T) {
	pool := mustOpenTestPool(t)
	repo := NewTokensPostgres(pool)
	user := createTestUser(t, pool)
	ctx := context.Background()

	first := "it-s1-" + uuid.NewString()
	second := "it-s2-" + uuid.NewString()
	require.NoError(t, repo.Save(ctx, user.ID, first, time.Now().Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, user.ID, second, time.Now().Add(time.Hour)))

	// Saving a second token must not invalidate the first.
	_, err := repo.FindValid(ctx, first)
	require.NoError(t, err)
	_, err = repo.FindValid(ctx, second)
	require.NoError(t, err)
}

func TestUserPostgresDuplicateEmail(t *testing.T) {
	pool := mustOpenTestPool(t)
	repo := NewUserPostgres(pool)
	user := createTestUser(t, pool)

	_, err := repo.Create(context.Background(), models.User{
		Name:     "Duplicate",
		Email:    user.Email,
		Password: "hashed-password",
		Role:     models.UserRole,
		Active:   true,
	})
	require.ErrorIs(t, err, app_errors.ErrUserExists)
}
