package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPhotoSize = 10 << 20

type EquipmentService interface {
	ListEquipment(ctx context.Context, centerID *uuid.UUID) ([]models.Equipment, error)
	CreateEquipment(ctx context.Context, e models.Equipment) (*models.Equipment, error)
	ChangeEstado(ctx context.Context, id uuid.UUID, estado string) error
	UploadPhoto(ctx context.Context, id uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Centers(ctx context.Context) ([]models.OperationCenter, error)
}

type EquipmentHandler struct {
	service EquipmentService
	log     logger.Log
}

func NewEquipmentHandler(l logger.Log, s EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{
		service: s,
		log:     l,
	}
}

type equipmentResponse struct {
	ID                uuid.UUID `json:"id"`
	Tipo              string    `json:"tipo"`
	Marca             string    `json:"marca"`
	Modelo            string    `json:"modelo"`
	Serial            string    `json:"serial"`
	Estado            string    `json:"estado"`
	OperationCenterID uuid.UUID `json:"centroOperacionId"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toEquipmentResponse(e models.Equipment) equipmentResponse {
	return equipmentResponse{
		ID:                e.ID,
		Tipo:              e.Tipo,
		Marca:             e.Marca,
		Modelo:            e.Modelo,
		Serial:            e.Serial,
		Estado:            e.Estado,
		OperationCenterID: e.OperationCenterID,
		CreatedAt:         e.CreatedAt,
	}
}

func (h *EquipmentHandler) List(c *gin.Context) {
	var centerID *uuid.UUID
	if raw := c.Query("centro"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid centro id"})
			return
		}
		centerID = &id
	}

	list, err := h.service.ListEquipment(c.Request.Context(), centerID)
	if err != nil {
		h.log.ErrorErr("error listing equipment", err)
		AbortWithError(c, err)
		return
	}

	resp := make([]equipmentResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, toEquipmentResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"equipos": resp})
}

type createEquipmentRequest struct {
	Tipo              string    `json:"tipo" binding:"required"`
	Marca             string    `json:"marca" binding:"required"`
	Modelo            string    `json:"modelo" binding:"required"`
	Serial            string    `json:"serial" binding:"required"`
	OperationCenterID uuid.UUID `json:"centroOperacionId" binding:"required"`
}

func (h *EquipmentHandler) Create(c *gin.Context) {
	var input createEquipmentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateEquipment(c.Request.Context(), models.Equipment{
		Tipo:              input.Tipo,
		Marca:             input.Marca,
		Modelo:            input.Modelo,
		Serial:            input.Serial,
		OperationCenterID: input.OperationCenterID,
	})
	if err != nil {
		h.log.ErrorErr("error creating equipment", err)
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEquipmentResponse(*created))
}

type changeEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
}

func (h *EquipmentHandler) ChangeEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("equipo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipo id"})
		return
	}

	var input changeEstadoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ChangeEstado(c.Request.Context(), id, input.Estado); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "estado updated"})
}

func (h *EquipmentHandler) UploadPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("equipo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipo id"})
		return
	}

	fileHeader, err := c.FormFile("foto")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "foto file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	url, err := h.service.UploadPhoto(
		c.Request.Context(),
		id,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		h.log.ErrorErr("error uploading equipment photo", err)
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fotoUrl": url})
}

type centerResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"nombre"`
	City   string    `json:"ciudad"`
	Active bool      `json:"activo"`
}

func (h *EquipmentHandler) ListCenters(c *gin.Context) {
	centers, err := h.service.Centers(c.Request.Context())
	if err != nil {
		h.log.ErrorErr("error listing operation centers", err)
		AbortWithError(c, err)
		return
	}

	resp := make([]centerResponse, 0, len(centers))
	for _, ctr := range centers {
		resp = append(resp, centerResponse{ID: ctr.ID, Name: ctr.Name, City: ctr.City, Active: ctr.Active})
	}
	c.JSON(http.StatusOK, gin.H{"centros": resp})
}
