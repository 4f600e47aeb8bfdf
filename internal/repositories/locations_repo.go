package repositories

import (
	"context"
	"fmt"
	"time"

	"fleettrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LocationRepository interface {
	Repository[models.Location]
	// GetByVehicleID returns the vehicle's non-deleted locations, most
	// recent first.
	GetByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*models.Location, error)
	GetLatestByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.Location, error)
	// GetPagedByVehicleID filters by inclusive recorded_at bounds when
	// supplied (each independently optional), orders descending by
	// recorded_at and windows the result. The total reflects the filtered
	// set, not the vehicle's full history.
	GetPagedByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, pageSize int, startDate, endDate *time.Time) ([]*models.Location, int, error)
}

type locationRepo struct {
	db DB
}

func NewLocationRepository(db DB) LocationRepository {
	return &locationRepo{db: db}
}

func scanLocation(row pgx.Row) (*models.Location, error) {
	location := &models.Location{}
	err := row.Scan(&location.ID, &location.VehicleID, &location.Latitude, &location.Longitude,
		&location.Speed, &location.RecordedAt, &location.CreatedAt, &location.UpdatedAt, &location.IsDeleted)
	if err != nil {
		return nil, err
	}
	return location, nil
}

func scanLocationRows(rows pgx.Rows) ([]*models.Location, error) {
	defer rows.Close()
	var locations []*models.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}

func (r *locationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	query := `
		SELECT id, vehicle_id, latitude, longitude, speed, recorded_at, created_at, updated_at, is_deleted
		FROM locations
		WHERE id = $1 AND is_deleted = FALSE
	`
	return scanLocation(r.db.QueryRow(ctx, query, id))
}

func (r *locationRepo) GetAll(ctx context.Context) ([]*models.Location, error) {
	query := `
		SELECT id, vehicle_id, latitude, longitude, speed, recorded_at, created_at, updated_at, is_deleted
		FROM locations
		WHERE is_deleted = FALSE
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanLocationRows(rows)
}

func (r *locationRepo) Add(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, vehicle_id, latitude, longitude, speed, recorded_at, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, FALSE)
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.VehicleID, location.Latitude,
		location.Longitude, location.Speed, location.RecordedAt, location.CreatedAt)
	return err
}

func (r *locationRepo) Update(ctx context.Context, location *models.Location) error {
	query := `
		UPDATE locations
		SET latitude = $1, longitude = $2, speed = $3, recorded_at = $4, updated_at = $5
		WHERE id = $6 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, location.Latitude, location.Longitude, location.Speed,
		location.RecordedAt, location.UpdatedAt, location.ID)
	return err
}

func (r *locationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE locations
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *locationRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1 AND is_deleted = FALSE)`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *locationRepo) GetByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*models.Location, error) {
	query := `
		SELECT id, vehicle_id, latitude, longitude, speed, recorded_at, created_at, updated_at, is_deleted
		FROM locations
		WHERE vehicle_id = $1 AND is_deleted = FALSE
		ORDER BY recorded_at DESC
	`
	rows, err := r.db.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	return scanLocationRows(rows)
}

func (r *locationRepo) GetLatestByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.Location, error) {
	query := `
		SELECT id, vehicle_id, latitude, longitude, speed, recorded_at, created_at, updated_at, is_deleted
		FROM locations
		WHERE vehicle_id = $1 AND is_deleted = FALSE
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	return scanLocation(r.db.QueryRow(ctx, query, vehicleID))
}

func (r *locationRepo) GetPagedByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, pageSize int, startDate, endDate *time.Time) ([]*models.Location, int, error) {
	if page < 1 {
		page = 1
	}

	where := "WHERE vehicle_id = $1 AND is_deleted = FALSE"
	args := []any{vehicleID}
	if startDate != nil {
		args = append(args, *startDate)
		where += fmt.Sprintf(" AND recorded_at >= $%d", len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		where += fmt.Sprintf(" AND recorded_at <= $%d", len(args))
	}

	countQuery := "SELECT COUNT(*) FROM locations " + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, vehicle_id, latitude, longitude, speed, recorded_at, created_at, updated_at, is_deleted
		FROM locations
		%s
		ORDER BY recorded_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	locations, err := scanLocationRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return locations, total, nil
}
