package equipment

import (
	"context"
	"io"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/google/uuid"
)

type EquipmentRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	List(ctx context.Context, centerID *uuid.UUID) ([]models.Equipment, error)
	Create(ctx context.Context, e models.Equipment) (*models.Equipment, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
	SetPhotoKey(ctx context.Context, id uuid.UUID, objectKey string) error
	Centers(ctx context.Context) ([]models.OperationCenter, error)
}

type PhotoStorage interface {
	UploadPhoto(ctx context.Context, equipmentID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PhotoURL(ctx context.Context, objectKey string) (string, error)
}

type EquipmentService struct {
	log    logger.Log
	repo   EquipmentRepo
	photos PhotoStorage
}

func NewEquipmentService(l logger.Log, repo EquipmentRepo, photos PhotoStorage) *EquipmentService {
	return &EquipmentService{
		log:    l,
		repo:   repo,
		photos: photos,
	}
}

func (s *EquipmentService) ListEquipment(ctx context.Context, centerID *uuid.UUID) ([]models.Equipment, error) {
	return s.repo.List(ctx, centerID)
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, e models.Equipment) (*models.Equipment, error) {
	if e.Estado == "" {
		e.Estado = models.EstadoDisponible
	}
	return s.repo.Create(ctx, e)
}

func (s *EquipmentService) ChangeEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return s.repo.UpdateEstado(ctx, id, estado)
}

// UploadPhoto stores the image and records its object key on the equipment
// row, returning a presigned URL the caller can hand to the frontend.
func (s *EquipmentService) UploadPhoto(ctx context.Context, id uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.repo.ByID(ctx, id); err != nil {
		return "", err
	}
	objectKey, err := s.photos.UploadPhoto(ctx, id, filename, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetPhotoKey(ctx, id, objectKey); err != nil {
		return "", err
	}
	return s.photos.PhotoURL(ctx, objectKey)
}

func (s *EquipmentService) Centers(ctx context.Context) ([]models.OperationCenter, error) {
	return s.repo.Centers(ctx)
}
