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

// CreateLocationInput carries a boundary-validated GPS ping. RecordedAt is
// stamped server-side at creation; clients cannot backdate pings.
type CreateLocationInput struct {
	VehicleID uuid.UUID
	Latitude  float64
	Longitude float64
	Speed     *float64
}

type LocationResponse struct {
	ID         uuid.UUID `json:"id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      *float64  `json:"speed,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type LocationPage struct {
	Items      []*LocationResponse `json:"items"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

type LocationService interface {
	Create(ctx context.Context, input CreateLocationInput) (*LocationResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LocationResponse, error)
	GetPagedByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, pageSize int, startDate, endDate *time.Time) (*LocationPage, error)
	GetLatestByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*LocationResponse, error)
	GetByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*models.Location, error)
}

type locationService struct {
	locations repositories.LocationRepository
	vehicles  repositories.VehicleRepository
	uow       repositories.UnitOfWorkFactory
	cache     caching.CacheService
}

func NewLocationService(locations repositories.LocationRepository, vehicles repositories.VehicleRepository,
	uow repositories.UnitOfWorkFactory, cache caching.CacheService) LocationService {
	return &locationService{
		locations: locations,
		vehicles:  vehicles,
		uow:       uow,
		cache:     cache,
	}
}

func (s *locationService) Create(ctx context.Context, input CreateLocationInput) (*LocationResponse, error) {
	exists, err := s.vehicles.Exists(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}

	now := time.Now().UTC()
	location := &models.Location{
		ID:         uuid.New(),
		VehicleID:  input.VehicleID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Speed:      input.Speed,
		RecordedAt: now,
		CreatedAt:  now,
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	if err := uow.Locations().Add(ctx, location); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	// A fresh ping is always the newest one; overwrite the cached latest.
	if err := s.cache.SetLatestLocation(ctx, location, latestLocationCacheTTL); err != nil {
		log.Printf("WARN: latest-location cache write failed for %s: %v", input.VehicleID, err)
	}
	return mapLocationToResponse(location), nil
}

func (s *locationService) GetByID(ctx context.Context, id uuid.UUID) (*LocationResponse, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return mapLocationToResponse(location), nil
}

func (s *locationService) GetPagedByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, pageSize int,
	startDate, endDate *time.Time) (*LocationPage, error) {
	exists, err := s.vehicles.Exists(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}

	locations, total, err := s.locations.GetPagedByVehicleID(ctx, vehicleID, page, pageSize, startDate, endDate)
	if err != nil {
		return nil, err
	}

	items := make([]*LocationResponse, 0, len(locations))
	for _, location := range locations {
		items = append(items, mapLocationToResponse(location))
	}

	return &LocationPage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *locationService) GetLatestByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*LocationResponse, error) {
	exists, err := s.vehicles.Exists(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}

	cached, err := s.cache.GetLatestLocation(ctx, vehicleID)
	if err != nil {
		log.Printf("WARN: latest-location cache read failed for %s: %v", vehicleID, err)
		cached = nil
	}
	if cached != nil {
		return mapLocationToResponse(cached), nil
	}

	location, err := s.locations.GetLatestByVehicleID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	if err := s.cache.SetLatestLocation(ctx, location, latestLocationCacheTTL); err != nil {
		log.Printf("WARN: latest-location cache write failed for %s: %v", vehicleID, err)
	}
	return mapLocationToResponse(location), nil
}

// GetByVehicleID returns the full, unwindowed history newest-first. Report
// generation uses it; the HTTP listing endpoints always page.
func (s *locationService) GetByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*models.Location, error) {
	exists, err := s.vehicles.Exists(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}
	return s.locations.GetByVehicleID(ctx, vehicleID)
}

func mapLocationToResponse(location *models.Location) *LocationResponse {
	return &LocationResponse{
		ID:         location.ID,
		VehicleID:  location.VehicleID,
		Latitude:   location.Latitude,
		Longitude:  location.Longitude,
		Speed:      location.Speed,
		RecordedAt: location.RecordedAt,
		CreatedAt:  location.CreatedAt,
	}
}
