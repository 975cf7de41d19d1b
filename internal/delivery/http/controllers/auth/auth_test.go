package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	authsvc "github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/auth"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	tm           *authsvc.TokenManager
	user         *models.User
	password     string
	validRefresh map[string]bool
	logoutCalls  []string
}

func newFakeAuthService(active bool) *fakeAuthService {
	return &fakeAuthService{
		tm: authsvc.NewTokenManager("handler-test-secret", "test", 15*time.Minute, 7*24*time.Hour),
		user: &models.User{
			ID:     uuid.New(),
			Name:   "Ana",
			Email:  "a@x.com",
			Role:   models.UserRole,
			Active: active,
		},
		password:     "secret123",
		validRefresh: map[string]bool{"refresh-token-1": true},
	}
}

func (f *fakeAuthService) Register(ctx context.Context, user models.User) (*models.User, error) {
	if user.Email == f.user.Email {
		return nil, app_errors.ErrUserExists
	}
	user.ID = uuid.New()
	user.Active = true
	return &user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	if email != f.user.Email || password != f.password {
		return nil, nil, app_errors.ErrInvalidCredentials
	}
	if !f.user.Active {
		return nil, nil, app_errors.ErrAccountDisabled
	}
	access, err := f.tm.IssueAccessToken(f.user)
	if err != nil {
		return nil, nil, err
	}
	return f.user, &models.TokenPair{AccessToken: access, RefreshToken: "refresh-token-1"}, nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, string, error) {
	if !f.validRefresh[refreshToken] {
		return nil, "", app_errors.ErrInvalidToken
	}
	access, err := f.tm.IssueAccessToken(f.user)
	if err != nil {
		return nil, "", err
	}
	return f.user, access, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) {
	f.logoutCalls = append(f.logoutCalls, refreshToken)
	delete(f.validRefresh, refreshToken)
}

func (f *fakeAuthService) AccessClaims(ctx context.Context, token string) (*authsvc.AccessClaims, error) {
	return f.tm.VerifyAccessToken(token)
}

func (f *fakeAuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id != f.user.ID {
		return nil, app_errors.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeAuthService) UserFromRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	if !f.validRefresh[refreshToken] {
		return nil, app_errors.ErrInvalidToken
	}
	return f.user, nil
}

func newTestRouter(t *testing.T, svc AuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(logger.New("test"), svc, false, 900, 604800)
	auth := r.Group("/v1/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.Register)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)
	auth.GET("/csrf", h.CSRFToken)
	return r
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsSessionCookies(t *testing.T) {
	svc := newFakeAuthService(true)
	r := newTestRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"correo":"a@x.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"correo":"a@x.com"`)
	assert.Contains(t, w.Body.String(), `"accessToken"`)

	access := cookieByName(w, middleware.AccessTokenCookie)
	refresh := cookieByName(w, RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, 604800, refresh.MaxAge)
	assert.Equal(t, "refresh-token-1", refresh.Value)
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"correo":"a@x.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, cookieByName(w, middleware.AccessTokenCookie))
}

func TestLoginDisabledAccount(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(false))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"correo":"a@x.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefreshWithValidCookie(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-token-1"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accessToken"`)

	access := cookieByName(w, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
	// The refresh token is not rotated.
	assert.Nil(t, cookieByName(w, RefreshTokenCookie))
}

func TestRefreshWithInvalidTokenSetsNoCookie(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "expired-or-unknown"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestRefreshBodyFallback(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh",
		strings.NewReader(`{"refreshToken":"refresh-token-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutTwiceBothSucceed(t *testing.T) {
	svc := newFakeAuthService(true)
	r := newTestRouter(t, svc)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-token-1"})
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		access := cookieByName(w, middleware.AccessTokenCookie)
		require.NotNil(t, access)
		assert.Equal(t, -1, access.MaxAge)
	}
	assert.Len(t, svc.logoutCalls, 2)
}

func TestMeWithBearerToken(t *testing.T) {
	svc := newFakeAuthService(true)
	r := newTestRouter(t, svc)

	token, err := svc.tm.IssueAccessToken(svc.user)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), `"correo":"a@x.com"`)
}

func TestMeFallsBackToRefreshCookie(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-token-1"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestMeUnauthenticated(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"nombre":"Ana","correo":"a@x.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterSuccess(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"nombre":"Luis","correo":"luis@x.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"correo":"luis@x.com"`)
}

func TestCSRFTokenEndpointEchoesCookie(t *testing.T) {
	r := newTestRouter(t, newFakeAuthService(true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/csrf", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "csrf-cookie-value"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "csrf-cookie-value")
}
