package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"fleettrack/internal/models"
	"fleettrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf"
)

const reportURLExpiry = 24 * time.Hour

// LocationReport points at a generated PDF in object storage. The URL is
// presigned and expires.
type LocationReport struct {
	VehicleID  uuid.UUID `json:"vehicle_id"`
	Plate      string    `json:"plate"`
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	PointCount int       `json:"point_count"`
}

type ReportService interface {
	GenerateLocationReport(ctx context.Context, vehicleID uuid.UUID) (*LocationReport, error)
}

type reportService struct {
	vehicles  repositories.VehicleRepository
	locations repositories.LocationRepository
	storage   StorageService
	bucket    string
}

func NewReportService(vehicles repositories.VehicleRepository, locations repositories.LocationRepository,
	storage StorageService, bucket string) ReportService {
	return &reportService{
		vehicles:  vehicles,
		locations: locations,
		storage:   storage,
		bucket:    bucket,
	}
}

// GenerateLocationReport renders the vehicle's full location history as a
// PDF, uploads it and returns a presigned download URL.
func (s *reportService) GenerateLocationReport(ctx context.Context, vehicleID uuid.UUID) (*LocationReport, error) {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	locations, err := s.locations.GetByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := renderLocationPDF(vehicle, locations)
	if err != nil {
		return nil, fmt.Errorf("failed to render location report: %w", err)
	}

	objectName := fmt.Sprintf("reports/%s/locations-%s.pdf", vehicle.Plate, time.Now().UTC().Format("20060102-150405"))
	if err := s.storage.UploadReport(ctx, s.bucket, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return nil, fmt.Errorf("failed to upload location report: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, objectName, reportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign location report: %w", err)
	}

	return &LocationReport{
		VehicleID:  vehicle.ID,
		Plate:      vehicle.Plate,
		ObjectName: objectName,
		URL:        url,
		ExpiresAt:  time.Now().UTC().Add(reportURLExpiry),
		PointCount: len(locations),
	}, nil
}

func renderLocationPDF(vehicle *models.Vehicle, locations []*models.Location) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "FLEETTRACK LOCATION HISTORY")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Plate: %s", vehicle.Plate))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Vehicle: %s %s (%d)", vehicle.Brand.String(), vehicle.Model, vehicle.Year))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", vehicle.Status.String()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("02-Jan-2006 15:04 MST")))
	pdf.Ln(12)

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(55, 8, "Recorded At", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Latitude", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Longitude", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Speed (km/h)", "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, location := range locations {
		speed := "-"
		if location.Speed != nil {
			speed = fmt.Sprintf("%.1f", *location.Speed)
		}
		pdf.CellFormat(55, 7, location.RecordedAt.Format("02-Jan-2006 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.7f", location.Latitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.7f", location.Longitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, speed, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(locations) == 0 {
		pdf.Ln(4)
		pdf.Cell(0, 8, "No locations recorded for this vehicle.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
