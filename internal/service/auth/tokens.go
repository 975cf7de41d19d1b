package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

const refreshTokenBytes = 64

// TokenManager issues short-lived signed access tokens and opaque refresh
// tokens. Access tokens are self-contained (signature + expiry is the whole
// check); refresh tokens carry no claims and must be resolved through the
// token store.
type TokenManager struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

func NewTokenManager(secretKey, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
	}
}

type AccessClaims struct {
	UserID            uuid.UUID  `json:"user_id"`
	Role              string     `json:"rol"`
	OperationCenterID *uuid.UUID `json:"centro_operacion_id,omitempty"`
	jwt.RegisteredClaims
}

func (m *TokenManager) IssueAccessToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(signingMethod, AccessClaims{
		UserID:            user.ID,
		Role:              user.Role,
		OperationCenterID: user.OperationCenterID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("access token signing failed: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks signature and expiry only; it never touches
// storage. Any parse failure surfaces as ErrInvalidToken.
func (m *TokenManager) VerifyAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidToken, err)
	}
	return claims, nil
}

// NewRefreshToken returns hex of 64 cryptographically random bytes.
func (m *TokenManager) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("refresh token generation failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (m *TokenManager) RefreshExpiration() time.Time {
	return time.Now().Add(m.refreshTTL)
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}
