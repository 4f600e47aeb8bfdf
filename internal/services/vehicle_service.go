package services

import (
	"context"
	"errors"
	"log"
	"time"

	"fleettrack/internal/caching"
	"fleettrack/internal/models"
	"fleettrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vehicleCacheTTL = 5 * time.Minute
const latestLocationCacheTTL = 5 * time.Minute

// CreateVehicleInput carries the boundary-validated fields for a new
// vehicle. The plate is expected uppercase-normalized.
type CreateVehicleInput struct {
	Plate string
	Brand models.VehicleBrand
	Model string
	Year  int
}

// VehicleResponse is the read shape for a vehicle, including the
// recorded-at of its most recent location when one exists.
type VehicleResponse struct {
	ID             uuid.UUID            `json:"id"`
	Plate          string               `json:"plate"`
	Brand          models.VehicleBrand  `json:"brand"`
	BrandName      string               `json:"brand_name"`
	Model          string               `json:"model"`
	Year           int                  `json:"year"`
	Status         models.VehicleStatus `json:"status"`
	StatusName     string               `json:"status_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastLocationAt *time.Time           `json:"last_location_at,omitempty"`
}

// VehiclePage bundles a windowed slice with the total matching count so
// clients can compute the page count.
type VehiclePage struct {
	Items      []*VehicleResponse `json:"items"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

type VehicleService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*VehicleResponse, error)
	GetByPlate(ctx context.Context, plate string) (*VehicleResponse, error)
	GetPaged(ctx context.Context, page, pageSize int) (*VehiclePage, error)
	GetByStatus(ctx context.Context, status models.VehicleStatus) ([]*VehicleResponse, error)
	Create(ctx context.Context, input CreateVehicleInput) (*VehicleResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.VehicleStatus) (*VehicleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type vehicleService struct {
	vehicles  repositories.VehicleRepository
	locations repositories.LocationRepository
	uow       repositories.UnitOfWorkFactory
	cache     caching.CacheService
}

func NewVehicleService(vehicles repositories.VehicleRepository, locations repositories.LocationRepository,
	uow repositories.UnitOfWorkFactory, cache caching.CacheService) VehicleService {
	return &vehicleService{
		vehicles:  vehicles,
		locations: locations,
		uow:       uow,
		cache:     cache,
	}
}

func (s *vehicleService) GetByID(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	cached, err := s.cache.GetVehicle(ctx, id)
	if err != nil {
		log.Printf("WARN: vehicle cache read failed for %s: %v", id, err)
	}
	if cached != nil {
		return s.mapToResponse(ctx, cached)
	}

	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	if err := s.cache.SetVehicle(ctx, vehicle, vehicleCacheTTL); err != nil {
		log.Printf("WARN: vehicle cache write failed for %s: %v", id, err)
	}
	return s.mapToResponse(ctx, vehicle)
}

func (s *vehicleService) GetByPlate(ctx context.Context, plate string) (*VehicleResponse, error) {
	vehicle, err := s.vehicles.GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return s.mapToResponse(ctx, vehicle)
}

func (s *vehicleService) GetPaged(ctx context.Context, page, pageSize int) (*VehiclePage, error) {
	vehicles, total, err := s.vehicles.GetPaged(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		resp, err := s.mapToResponse(ctx, vehicle)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}

	return &VehiclePage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *vehicleService) GetByStatus(ctx context.Context, status models.VehicleStatus) ([]*VehicleResponse, error) {
	vehicles, err := s.vehicles.GetByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	items := make([]*VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		resp, err := s.mapToResponse(ctx, vehicle)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}
	return items, nil
}

func (s *vehicleService) Create(ctx context.Context, input CreateVehicleInput) (*VehicleResponse, error) {
	// Fast, friendly duplicate check; the partial unique index on the plate
	// column is the real safety net for concurrent creates.
	taken, err := s.vehicles.PlateExists(ctx, input.Plate, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPlateTaken
	}

	vehicle := &models.Vehicle{
		ID:        uuid.New(),
		Plate:     input.Plate,
		Brand:     input.Brand,
		Model:     input.Model,
		Year:      input.Year,
		Status:    models.StatusActive,
		CreatedAt: time.Now().UTC(),
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	if err := uow.Vehicles().Add(ctx, vehicle); err != nil {
		if errors.Is(err, repositories.ErrDuplicatePlate) {
			return nil, ErrPlateTaken
		}
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	return s.mapToResponse(ctx, vehicle)
}

func (s *vehicleService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.VehicleStatus) (*VehicleResponse, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	vehicle.Status = status
	vehicle.UpdatedAt = &now

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	if err := uow.Vehicles().Update(ctx, vehicle); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	if err := s.cache.DeleteVehicle(ctx, id); err != nil {
		log.Printf("WARN: vehicle cache invalidation failed for %s: %v", id, err)
	}
	return s.mapToResponse(ctx, vehicle)
}

// Delete soft-deletes the vehicle only. Its locations stay in storage and
// remain reachable by id; routes that check vehicle existence first will
// mask them.
func (s *vehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.vehicles.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrVehicleNotFound
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback(ctx)

	if err := uow.Vehicles().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		return err
	}

	if err := s.cache.DeleteVehicle(ctx, id); err != nil {
		log.Printf("WARN: vehicle cache invalidation failed for %s: %v", id, err)
	}
	if err := s.cache.DeleteLatestLocation(ctx, id); err != nil {
		log.Printf("WARN: latest-location cache invalidation failed for %s: %v", id, err)
	}
	return nil
}

func (s *vehicleService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.vehicles.Exists(ctx, id)
}

// mapToResponse attaches the latest ping timestamp. The per-vehicle lookup
// is the known N+1 of listing paths; the cache absorbs most of it without
// changing the result.
func (s *vehicleService) mapToResponse(ctx context.Context, vehicle *models.Vehicle) (*VehicleResponse, error) {
	latest, err := s.cache.GetLatestLocation(ctx, vehicle.ID)
	if err != nil {
		log.Printf("WARN: latest-location cache read failed for %s: %v", vehicle.ID, err)
		latest = nil
	}
	if latest == nil {
		latest, err = s.locations.GetLatestByVehicleID(ctx, vehicle.ID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
			latest = nil
		} else if err := s.cache.SetLatestLocation(ctx, latest, latestLocationCacheTTL); err != nil {
			log.Printf("WARN: latest-location cache write failed for %s: %v", vehicle.ID, err)
		}
	}

	resp := &VehicleResponse{
		ID:         vehicle.ID,
		Plate:      vehicle.Plate,
		Brand:      vehicle.Brand,
		BrandName:  vehicle.Brand.String(),
		Model:      vehicle.Model,
		Year:       vehicle.Year,
		Status:     vehicle.Status,
		StatusName: vehicle.Status.String(),
		CreatedAt:  vehicle.CreatedAt,
	}
	if latest != nil {
		resp.LastLocationAt = &latest.RecordedAt
	}
	return resp, nil
}
