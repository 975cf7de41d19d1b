package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/auth"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessTokenCookie carries the access token for browser clients that do not
// set an Authorization header. Bearer wins when both are present.
const AccessTokenCookie = "accessToken"

type AuthService interface {
	AccessClaims(ctx context.Context, token string) (*auth.AccessClaims, error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		return parts[1]
	}
	return ""
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		token, _ = c.Cookie(AccessTokenCookie)
	}
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.service.AccessClaims(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to verify access token", "err", err.Error())
		controllers.AbortWithError(c, err)
		return
	}

	user, err := h.service.User(c.Request.Context(), claims.UserID)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(ClientIDCtx, user.ID)
	c.Set(ClientRoleCtx, user.Role)
	if user.OperationCenterID != nil {
		c.Set(ClientCenterCtx, *user.OperationCenterID)
	}
	c.Next()
}
