package handlers

import (
	"net/http"

	"fleettrack/internal/common"
	"fleettrack/internal/models"
	"fleettrack/internal/services"

	"github.com/labstack/echo/v4"
)

// AlertHandlers surfaces vehicles that need operator attention.
type AlertHandlers struct {
	vehicleService services.VehicleService
}

func NewAlertHandlers(vehicleService services.VehicleService) *AlertHandlers {
	return &AlertHandlers{vehicleService: vehicleService}
}

// GetStolenVehicles handles GET /v1/alerts/stolen-vehicles.
func (h *AlertHandlers) GetStolenVehicles(c echo.Context) error {
	ctx := c.Request().Context()

	vehicles, err := h.vehicleService.GetByStatus(ctx, models.StatusStolen)
	if err != nil {
		return common.SendServerError(c, "Failed to list stolen vehicles")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// GetMaintenanceVehicles handles GET /v1/alerts/maintenance-vehicles.
func (h *AlertHandlers) GetMaintenanceVehicles(c echo.Context) error {
	ctx := c.Request().Context()

	vehicles, err := h.vehicleService.GetByStatus(ctx, models.StatusMaintenance)
	if err != nil {
		return common.SendServerError(c, "Failed to list vehicles in maintenance")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}
