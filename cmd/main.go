package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"fleettrack/internal/caching"
	"fleettrack/internal/handlers"
	"fleettrack/internal/jobs"
	"fleettrack/internal/jobs/background"
	"fleettrack/internal/repositories"
	"fleettrack/internal/services"
	"fleettrack/pkg/database"
)

const version = "1.0.0"

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"
	reportBucket := os.Getenv("REPORT_BUCKET")
	if reportBucket == "" {
		reportBucket = "fleettrack-reports"
	}

	storageSvc, err := services.NewMinioStorageService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(ctx, reportBucket); err != nil {
		log.Printf("WARN: could not ensure report bucket %s: %v", reportBucket, err)
	}

	// Repositories
	vehicleRepo := repositories.NewVehicleRepository(pool)
	locationRepo := repositories.NewLocationRepository(pool)
	uowFactory := repositories.NewUnitOfWorkFactory(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	vehicleSvc := services.NewVehicleService(vehicleRepo, locationRepo, uowFactory, cacheSvc)
	locationSvc := services.NewLocationService(locationRepo, vehicleRepo, uowFactory, cacheSvc)
	reportSvc := services.NewReportService(vehicleRepo, locationRepo, storageSvc, reportBucket)

	// Handlers
	vehicleHandlers := handlers.NewVehicleHandlers(vehicleSvc)
	locationHandlers := handlers.NewLocationHandlers(locationSvc)
	alertHandlers := handlers.NewAlertHandlers(vehicleSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	activitySvc := jobs.NewActivityAlertService(vehicleRepo, locationRepo)
	scheduler, err := background.NewJobScheduler(activitySvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")

	// Vehicle routes
	v1.GET("/vehicles", vehicleHandlers.ListVehicles)
	v1.POST("/vehicles", vehicleHandlers.CreateVehicle)
	v1.GET("/vehicles/:id", vehicleHandlers.GetVehicle)
	v1.DELETE("/vehicles/:id", vehicleHandlers.DeleteVehicle)
	v1.PATCH("/vehicles/:id/status", vehicleHandlers.UpdateVehicleStatus)
	v1.GET("/vehicles/plate/:plate", vehicleHandlers.GetVehicleByPlate)
	v1.GET("/vehicles/status/:status", vehicleHandlers.GetVehiclesByStatus)

	// Location routes
	v1.GET("/vehicles/:id/locations", locationHandlers.ListVehicleLocations)
	v1.POST("/vehicles/:id/locations", locationHandlers.CreateLocation)
	v1.GET("/vehicles/:id/locations/latest", locationHandlers.GetLatestLocation)
	v1.GET("/locations/:id", locationHandlers.GetLocation)

	// Alert routes
	v1.GET("/alerts/stolen-vehicles", alertHandlers.GetStolenVehicles)
	v1.GET("/alerts/maintenance-vehicles", alertHandlers.GetMaintenanceVehicles)

	// Report routes
	v1.POST("/vehicles/:id/reports/locations", reportHandlers.CreateLocationReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("FleetTrack server v%s starting on port %s", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", port)))
}
