package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AdminRole = "admin"
	UserRole  = "usuario"
)

type User struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Password          string
	Role              string
	OperationCenterID *uuid.UUID
	Active            bool
	LastLoginAt       *time.Time
	CreatedAt         time.Time
}
