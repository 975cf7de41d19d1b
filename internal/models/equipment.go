package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EstadoDisponible   = "disponible"
	EstadoAsignado     = "asignado"
	EstadoEnReparacion = "en_reparacion"
)

type Equipment struct {
	ID                uuid.UUID
	Tipo              string
	Marca             string
	Modelo            string
	Serial            string
	Estado            string
	OperationCenterID uuid.UUID
	PhotoObjectKey    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OperationCenter struct {
	ID     uuid.UUID
	Name   string
	City   string
	Active bool
}
