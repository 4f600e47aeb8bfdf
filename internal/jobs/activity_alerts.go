package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"fleettrack/internal/models"
	"fleettrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultStaleThreshold = 24 * time.Hour

// ActivityAlertService flags active vehicles that have gone quiet: no GPS
// ping inside the threshold window, or no ping at all.
type ActivityAlertService struct {
	vehicleRepo  repositories.VehicleRepository
	locationRepo repositories.LocationRepository
}

type ActivityAlert struct {
	VehicleID uuid.UUID
	Plate     string
	LastSeen  *time.Time
}

func NewActivityAlertService(vehicleRepo repositories.VehicleRepository, locationRepo repositories.LocationRepository) *ActivityAlertService {
	return &ActivityAlertService{
		vehicleRepo:  vehicleRepo,
		locationRepo: locationRepo,
	}
}

func (a *ActivityAlertService) CheckStaleVehicles(ctx context.Context, threshold time.Duration) ([]ActivityAlert, error) {
	if threshold <= 0 {
		threshold = defaultStaleThreshold
	}
	cutoff := time.Now().UTC().Add(-threshold)

	vehicles, err := a.vehicleRepo.GetByStatus(ctx, models.StatusActive)
	if err != nil {
		log.Printf("Failed to list active vehicles for stale check: %v", err)
		return nil, err
	}

	var alerts []ActivityAlert
	for _, vehicle := range vehicles {
		latest, err := a.locationRepo.GetLatestByVehicleID(ctx, vehicle.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				alerts = append(alerts, ActivityAlert{VehicleID: vehicle.ID, Plate: vehicle.Plate})
				continue
			}
			log.Printf("Failed to get latest location for vehicle %s: %v", vehicle.ID.String(), err)
			continue
		}
		if latest.RecordedAt.Before(cutoff) {
			recordedAt := latest.RecordedAt
			alerts = append(alerts, ActivityAlert{VehicleID: vehicle.ID, Plate: vehicle.Plate, LastSeen: &recordedAt})
		}
	}

	return alerts, nil
}

func (a *ActivityAlertService) LogStaleVehicleAlerts(alerts []ActivityAlert) {
	if len(alerts) == 0 {
		log.Println("No stale vehicle alerts to log")
		return
	}

	log.Printf("Stale vehicle alerts (%d):", len(alerts))
	for _, alert := range alerts {
		if alert.LastSeen == nil {
			log.Printf("- Vehicle %s (%s) has never reported a location", alert.Plate, alert.VehicleID.String())
			continue
		}
		log.Printf("- Vehicle %s (%s) last seen at %s", alert.Plate, alert.VehicleID.String(), alert.LastSeen.Format(time.RFC3339))
	}
}

// ScheduledStaleVehicleCheck is the entry point wired into the scheduler.
func (a *ActivityAlertService) ScheduledStaleVehicleCheck(ctx context.Context) error {
	log.Println("Starting scheduled stale vehicle check")

	alerts, err := a.CheckStaleVehicles(ctx, defaultStaleThreshold)
	if err != nil {
		log.Printf("Scheduled stale vehicle check failed: %v", err)
		return err
	}
	a.LogStaleVehicleAlerts(alerts)

	log.Println("Scheduled stale vehicle check completed")
	return nil
}
