package controllers

import (
	"errors"
	"net/http"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/gin-gonic/gin"
)

// AbortWithError is the single place an auth or domain failure becomes an
// HTTP response. Handlers and middleware hand errors here instead of
// composing their own error JSON.
func AbortWithError(c *gin.Context, err error) {
	status, message := translate(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func translate(err error) (int, string) {
	switch {
	case errors.Is(err, app_errors.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, app_errors.ErrAccountDisabled):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, app_errors.ErrInvalidCredentials),
		errors.Is(err, app_errors.ErrInvalidToken),
		errors.Is(err, app_errors.ErrCSRFToken),
		errors.Is(err, app_errors.ErrTokenNotFound),
		errors.Is(err, app_errors.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, app_errors.ErrUserNotFound),
		errors.Is(err, app_errors.ErrEquipmentNotFound),
		errors.Is(err, app_errors.ErrCenterNotFound):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
