package handlers

import (
	"errors"
	"net/http"

	"fleettrack/internal/common"
	"fleettrack/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers handles PDF export of location history.
type ReportHandlers struct {
	reportService services.ReportService
}

func NewReportHandlers(reportService services.ReportService) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// CreateLocationReport handles POST /v1/vehicles/:id/reports/locations.
// Generates the PDF, stores it and returns a time-limited download URL.
func (h *ReportHandlers) CreateLocationReport(c echo.Context) error {
	ctx := c.Request().Context()

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	report, err := h.reportService.GenerateLocationReport(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to generate location report")
	}
	return c.JSON(http.StatusCreated, report)
}
