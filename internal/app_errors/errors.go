package app_errors

import "errors"

var ErrUnauthorized = errors.New("unauthorized")
var ErrInvalidToken = errors.New("token invalid or expired")
var ErrCSRFToken = errors.New("CSRF token invalid or missing")
var ErrInvalidCredentials = errors.New("incorrect email or password")
var ErrAccountDisabled = errors.New("account is disabled")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrTokenNotFound = errors.New("token not found")
var ErrEquipmentNotFound = errors.New("equipment not found")
var ErrCenterNotFound = errors.New("operation center not found")
