package auth

import (
	"context"
	"net/http"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	authsvc "github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/auth"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RefreshTokenCookie = "refreshToken"

type AuthService interface {
	Register(ctx context.Context, user models.User) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.User, string, error)
	Logout(ctx context.Context, refreshToken string)
	AccessClaims(ctx context.Context, token string) (*authsvc.AccessClaims, error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserFromRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
}

type AuthHandler struct {
	AuthService AuthService
	log         logger.Log
	production  bool
	accessTTL   int
	refreshTTL  int
}

func NewAuthHandler(l logger.Log, auth AuthService, production bool, accessTTLSeconds, refreshTTLSeconds int) *AuthHandler {
	return &AuthHandler{
		AuthService: auth,
		log:         l,
		production:  production,
		accessTTL:   accessTTLSeconds,
		refreshTTL:  refreshTTLSeconds,
	}
}

type userResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"nombre"`
	Email             string     `json:"correo"`
	Role              string     `json:"rol"`
	OperationCenterID *uuid.UUID `json:"centroOperacionId"`
	Active            bool       `json:"activo"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		OperationCenterID: u.OperationCenterID,
		Active:            u.Active,
	}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	if h.production {
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(name, value, maxAge, "/", "", true, httpOnly)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", false, httpOnly)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, pair *models.TokenPair) {
	h.setCookie(c, middleware.AccessTokenCookie, pair.AccessToken, h.accessTTL, true)
	h.setCookie(c, RefreshTokenCookie, pair.RefreshToken, h.refreshTTL, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessTokenCookie, "", -1, true)
	h.setCookie(c, RefreshTokenCookie, "", -1, true)
	h.setCookie(c, middleware.CSRFCookieName, "", -1, false)
}

// refreshTokenFrom prefers the httpOnly cookie; the body field exists for
// non-browser clients that manage tokens themselves.
func refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

type registerRequest struct {
	Name              string     `json:"nombre" binding:"required"`
	Email             string     `json:"correo" binding:"required,email"`
	Password          string     `json:"password" binding:"required,min=8"`
	Role              string     `json:"rol"`
	OperationCenterID *uuid.UUID `json:"centroOperacionId"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Name:              input.Name,
		Email:             input.Email,
		Password:          input.Password,
		Role:              input.Role,
		OperationCenterID: input.OperationCenterID,
	}

	created, err := h.AuthService.Register(c.Request.Context(), user)
	if err != nil {
		h.log.Info("register failed", "err", err.Error())
		controllers.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(created)})
}

type loginRequest struct {
	Email    string `json:"correo" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.AuthService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		controllers.AbortWithError(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":         toUserResponse(user),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh exchanges the refresh-token cookie for a new access token. The
// refresh cookie itself is left alone; only the access token is reissued.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := refreshTokenFrom(c)

	user, accessToken, err := h.AuthService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		controllers.AbortWithError(c, err)
		return
	}

	h.setCookie(c, middleware.AccessTokenCookie, accessToken, h.accessTTL, true)
	c.JSON(http.StatusOK, gin.H{
		"user":        toUserResponse(user),
		"accessToken": accessToken,
	})
}

// Logout always answers 200 so the client can drop local state even when
// the token was already expired, revoked or missing.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken := refreshTokenFrom(c)
	h.AuthService.Logout(c.Request.Context(), refreshToken)
	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	token := ""
	if parts := c.GetHeader("Authorization"); len(parts) > 7 && parts[:7] == "Bearer " {
		token = parts[7:]
	}
	if token == "" {
		token, _ = c.Cookie(middleware.AccessTokenCookie)
	}

	if token != "" {
		claims, err := h.AuthService.AccessClaims(c.Request.Context(), token)
		if err == nil {
			user, err := h.AuthService.User(c.Request.Context(), claims.UserID)
			if err == nil {
				c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": toUserResponse(user)})
				return
			}
		}
	}

	// Fall back to the refresh token: a browser whose access token just
	// expired can still identify itself.
	if refreshToken, err := c.Cookie(RefreshTokenCookie); err == nil && refreshToken != "" {
		user, err := h.AuthService.UserFromRefreshToken(c.Request.Context(), refreshToken)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": toUserResponse(user)})
			return
		}
	}

	controllers.AbortWithError(c, app_errors.ErrInvalidToken)
}

// CSRFToken returns the double-submit token so clients can read it even when
// cookie access from script is constrained. The CSRF middleware mints the
// cookie on this GET if the browser arrived without one.
func (h *AuthHandler) CSRFToken(c *gin.Context) {
	if v, ok := c.Get(middleware.CSRFTokenCtx); ok {
		if token, ok := v.(string); ok && token != "" {
			c.JSON(http.StatusOK, gin.H{"csrfToken": token})
			return
		}
	}
	if token, err := c.Cookie(middleware.CSRFCookieName); err == nil && token != "" {
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "CSRF token unavailable"})
}
