package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokensPostgres struct {
	db *pgxpool.Pool
}

func NewTokensPostgres(db *pgxpool.Pool) *TokensPostgres {
	return &TokensPostgres{db: db}
}

// Save inserts a new refresh token row. Earlier tokens for the same user are
// left untouched so several devices can hold live sessions at once.
func (r *TokensPostgres) Save(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, userID, token, expiresAt)
	return err
}

// FindValid resolves the owning user of a refresh token that is neither
// revoked nor expired. Expired, revoked and unknown tokens all come back as
// ErrTokenNotFound; callers treat the three cases identically.
func (r *TokensPostgres) FindValid(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT u.id, u.nombre, u.correo, u.password, u.rol, u.centro_operacion_id, u.activo, u.last_login_at, u.created_at
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.token = $1 AND rt.revoked = false AND rt.expires_at > now()
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, token).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.OperationCenterID, &user.Active, &user.LastLoginAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrTokenNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Revoke marks a still-active token revoked and reports how many rows
// changed. Revoking an already revoked or unknown token affects zero rows.
func (r *TokensPostgres) Revoke(ctx context.Context, token string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = true WHERE token = $1 AND revoked = false`
	tag, err := r.db.Exec(ctx, query, token)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
