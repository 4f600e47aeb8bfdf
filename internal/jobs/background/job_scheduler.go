package background

import (
	"context"
	"log"
	"sync"
	"time"

	"fleettrack/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the periodic background jobs.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	activitySvc *jobs.ActivityAlertService
	jobsByName  map[string]gocron.Job
	mu          sync.RWMutex
}

func NewJobScheduler(activitySvc *jobs.ActivityAlertService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		activitySvc: activitySvc,
		jobsByName:  make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	staleJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.activitySvc.ScheduledStaleVehicleCheck, context.Background()),
		gocron.WithName("stale-vehicle-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stale vehicle job: %v", err)
	} else {
		js.jobsByName["stale-vehicle-check"] = staleJob
	}

	log.Printf("Registered %d background jobs", len(js.jobsByName))
}

// JobNames lists the currently registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobsByName))
	for name := range js.jobsByName {
		names = append(names, name)
	}
	return names
}
