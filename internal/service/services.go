package service

import (
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/auth"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/equipment"
)

type Collection struct {
	*auth.AuthService
	*equipment.EquipmentService
}
