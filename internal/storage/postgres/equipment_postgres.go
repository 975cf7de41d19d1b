package postgres

import (
	"context"
	"errors"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app_errors"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EquipmentPostgres struct {
	db *pgxpool.Pool
}

func NewEquipmentPostgres(db *pgxpool.Pool) *EquipmentPostgres {
	return &EquipmentPostgres{db: db}
}

const equipmentColumns = `id, tipo, marca, modelo, serial, estado, centro_operacion_id, photo_object_key, created_at, updated_at`

func scanEquipment(row pgx.Row) (*models.Equipment, error) {
	var e models.Equipment
	err := row.Scan(
		&e.ID, &e.Tipo, &e.Marca, &e.Modelo, &e.Serial, &e.Estado,
		&e.OperationCenterID, &e.PhotoObjectKey, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrEquipmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentPostgres) ByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipos WHERE id = $1`
	return scanEquipment(r.db.QueryRow(ctx, query, id))
}

func (r *EquipmentPostgres) List(ctx context.Context, centerID *uuid.UUID) ([]models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipos WHERE ($1::uuid IS NULL OR centro_operacion_id = $1) ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *EquipmentPostgres) Create(ctx context.Context, e models.Equipment) (*models.Equipment, error) {
	query := `
		INSERT INTO equipos (tipo, marca, modelo, serial, estado, centro_operacion_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		e.Tipo, e.Marca, e.Modelo, e.Serial, e.Estado, e.OperationCenterID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentPostgres) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	query := `UPDATE equipos SET estado = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, estado)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrEquipmentNotFound
	}
	return nil
}

func (r *EquipmentPostgres) SetPhotoKey(ctx context.Context, id uuid.UUID, objectKey string) error {
	query := `UPDATE equipos SET photo_object_key = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, objectKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrEquipmentNotFound
	}
	return nil
}

func (r *EquipmentPostgres) Centers(ctx context.Context) ([]models.OperationCenter, error) {
	query := `SELECT id, nombre, ciudad, activo FROM centros_operacion ORDER BY nombre`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var centers []models.OperationCenter
	for rows.Next() {
		var c models.OperationCenter
		if err := rows.Scan(&c.ID, &c.Name, &c.City, &c.Active); err != nil {
			return nil, err
		}
		centers = append(centers, c)
	}
	return centers, rows.Err()
}
