package repositories

import (
	"context"
	"strings"

	"fleettrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VehicleRepository interface {
	Repository[models.Vehicle]
	// GetByPlate matches case-insensitively via uppercase normalization.
	GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	GetByStatus(ctx context.Context, status models.VehicleStatus) ([]*models.Vehicle, error)
	// GetPaged returns the page ordered ascending by creation time plus the
	// total count of non-deleted rows, counted before windowing.
	GetPaged(ctx context.Context, page, pageSize int) ([]*models.Vehicle, int, error)
	// PlateExists checks the normalized plate against non-deleted vehicles,
	// optionally excluding one id.
	PlateExists(ctx context.Context, plate string, excludeID *uuid.UUID) (bool, error)
}

const vehicleColumns = "id, plate, brand, model, year, status, created_at, updated_at, is_deleted"

type vehicleRepo struct {
	db DB
}

func NewVehicleRepository(db DB) VehicleRepository {
	return &vehicleRepo{db: db}
}

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := row.Scan(&vehicle.ID, &vehicle.Plate, &vehicle.Brand, &vehicle.Model,
		&vehicle.Year, &vehicle.Status, &vehicle.CreatedAt, &vehicle.UpdatedAt, &vehicle.IsDeleted)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func scanVehicleRows(rows pgx.Rows) ([]*models.Vehicle, error) {
	defer rows.Close()
	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (r *vehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	query := `
		SELECT id, plate, brand, model, year, status, created_at, updated_at, is_deleted
		FROM vehicles
		WHERE id = $1 AND is_deleted = FALSE
	`
	return scanVehicle(r.db.QueryRow(ctx, query, id))
}

func (r *vehicleRepo) GetAll(ctx context.Context) ([]*models.Vehicle, error) {
	query := `
		SELECT id, plate, brand, model, year, status, created_at, updated_at, is_deleted
		FROM vehicles
		WHERE is_deleted = FALSE
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanVehicleRows(rows)
}

func (r *vehicleRepo) Add(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, plate, brand, model, year, status, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, FALSE)
	`
	_, err := r.db.Exec(ctx, query, vehicle.ID, vehicle.Plate, vehicle.Brand,
		vehicle.Model, vehicle.Year, vehicle.Status, vehicle.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePlate
	}
	return err
}

func (r *vehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE vehicles
		SET plate = $1, brand = $2, model = $3, year = $4, status = $5, updated_at = $6
		WHERE id = $7 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, vehicle.Plate, vehicle.Brand, vehicle.Model,
		vehicle.Year, vehicle.Status, vehicle.UpdatedAt, vehicle.ID)
	if isUniqueViolation(err) {
		return ErrDuplicatePlate
	}
	return err
}

func (r *vehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE vehicles
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *vehicleRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1 AND is_deleted = FALSE)`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *vehicleRepo) GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	query := `
		SELECT id, plate, brand, model, year, status, created_at, updated_at, is_deleted
		FROM vehicles
		WHERE plate = $1 AND is_deleted = FALSE
	`
	return scanVehicle(r.db.QueryRow(ctx, query, strings.ToUpper(plate)))
}

func (r *vehicleRepo) GetByStatus(ctx context.Context, status models.VehicleStatus) ([]*models.Vehicle, error) {
	query := `
		SELECT id, plate, brand, model, year, status, created_at, updated_at, is_deleted
		FROM vehicles
		WHERE status = $1 AND is_deleted = FALSE
	`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	return scanVehicleRows(rows)
}

func (r *vehicleRepo) GetPaged(ctx context.Context, page, pageSize int) ([]*models.Vehicle, int, error) {
	if page < 1 {
		page = 1
	}

	countQuery := `SELECT COUNT(*) FROM vehicles WHERE is_deleted = FALSE`
	var total int
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, plate, brand, model, year, status, created_at, updated_at, is_deleted
		FROM vehicles
		WHERE is_deleted = FALSE
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	vehicles, err := scanVehicleRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *vehicleRepo) PlateExists(ctx context.Context, plate string, excludeID *uuid.UUID) (bool, error) {
	normalized := strings.ToUpper(plate)
	var exists bool
	if excludeID != nil {
		query := `SELECT EXISTS(SELECT 1 FROM vehicles WHERE plate = $1 AND is_deleted = FALSE AND id <> $2)`
		err := r.db.QueryRow(ctx, query, normalized, *excludeID).Scan(&exists)
		return exists, err
	}
	query := `SELECT EXISTS(SELECT 1 FROM vehicles WHERE plate = $1 AND is_deleted = FALSE)`
	err := r.db.QueryRow(ctx, query, normalized).Scan(&exists)
	return exists, err
}
