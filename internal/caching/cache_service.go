package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleettrack/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts the hot read paths: vehicle rows for GetByID and the
// latest location per vehicle (consulted by every vehicle-to-response
// mapping). Misses return (nil, nil); callers fall through to the store.
type CacheService interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	SetVehicle(ctx context.Context, vehicle *models.Vehicle, ttl time.Duration) error
	DeleteVehicle(ctx context.Context, id uuid.UUID) error

	GetLatestLocation(ctx context.Context, vehicleID uuid.UUID) (*models.Location, error)
	SetLatestLocation(ctx context.Context, location *models.Location, ttl time.Duration) error
	DeleteLatestLocation(ctx context.Context, vehicleID uuid.UUID) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func vehicleKey(id uuid.UUID) string {
	return fmt.Sprintf("fleettrack:vehicle:%s", id.String())
}

func latestLocationKey(vehicleID uuid.UUID) string {
	return fmt.Sprintf("fleettrack:vehicle:%s:latest", vehicleID.String())
}

func (r *redisCacheService) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	data, err := r.client.Get(ctx, vehicleKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *redisCacheService) SetVehicle(ctx context.Context, vehicle *models.Vehicle, ttl time.Duration) error {
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, vehicleKey(vehicle.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, vehicleKey(id)).Err()
}

func (r *redisCacheService) GetLatestLocation(ctx context.Context, vehicleID uuid.UUID) (*models.Location, error) {
	data, err := r.client.Get(ctx, latestLocationKey(vehicleID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var location models.Location
	if err := json.Unmarshal(data, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *redisCacheService) SetLatestLocation(ctx context.Context, location *models.Location, ttl time.Duration) error {
	data, err := json.Marshal(location)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, latestLocationKey(location.VehicleID), data, ttl).Err()
}

func (r *redisCacheService) DeleteLatestLocation(ctx context.Context, vehicleID uuid.UUID) error {
	return r.client.Del(ctx, latestLocationKey(vehicleID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
