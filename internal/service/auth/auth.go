package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepo interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type tokenRepo interface {
	Save(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	FindValid(ctx context.Context, token string) (*models.User, error)
	Revoke(ctx context.Context, token string) (int64, error)
}

type AuthService struct {
	log       logger.Log
	tokens    *TokenManager
	userRepo  UserRepo
	tokenRepo tokenRepo
}

func NewAuthService(l logger.Log, tokens *TokenManager, uRepo UserRepo, tRepo tokenRepo) *AuthService {
	return &AuthService{
		log:       l,
		tokens:    tokens,
		userRepo:  uRepo,
		tokenRepo: tRepo,
	}
}

func (s *AuthService) Register(ctx context.Context, user models.User) (*models.User, error) {
	hashed, err := hashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	if user.Role == "" {
		user.Role = models.UserRole
	}
	user.Active = true

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login deliberately reports unknown email and wrong password as the same
// error so responses cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	user, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return nil, nil, app_errors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !checkPasswordHash(password, user.Password) {
		return nil, nil, app_errors.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, nil, app_errors.ErrAccountDisabled
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	if err := s.tokenRepo.Save(ctx, user.ID, refreshToken, s.tokens.RefreshExpiration()); err != nil {
		return nil, nil, err
	}
	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, nil, err
	}

	return user, &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is not rotated: the same opaque value stays usable
// until it expires or the session logs out, so concurrent tabs never race
// each other over a replacement.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, string, error) {
	if refreshToken == "" {
		return nil, "", app_errors.ErrInvalidToken
	}

	user, err := s.tokenRepo.FindValid(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrTokenNotFound) {
			return nil, "", app_errors.ErrInvalidToken
		}
		return nil, "", err
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, accessToken, nil
}

// Logout never fails towards the caller: the client must always be able to
// drop its local session, whatever the server-side state of the token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if _, err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		s.log.ErrorErr("failed to revoke refresh token", err)
	}
}

func (s *AuthService) AccessClaims(ctx context.Context, tokenStr string) (*AccessClaims, error) {
	return s.tokens.VerifyAccessToken(tokenStr)
}

func (s *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.ByID(ctx, id)
}

// UserFromRefreshToken resolves an identity straight from a refresh token,
// used by /auth/me when no usable access token accompanies the request.
func (s *AuthService) UserFromRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	if refreshToken == "" {
		return nil, app_errors.ErrInvalidToken
	}
	user, err := s.tokenRepo.FindValid(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrTokenNotFound) {
			return nil, app_errors.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
