package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fleettrack/internal/common"
	"fleettrack/internal/models"
	"fleettrack/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultVehiclePageSize = 10

// VehicleHandlers handles HTTP requests for the vehicle registry.
type VehicleHandlers struct {
	vehicleService services.VehicleService
}

func NewVehicleHandlers(vehicleService services.VehicleService) *VehicleHandlers {
	return &VehicleHandlers{vehicleService: vehicleService}
}

type createVehicleRequest struct {
	Plate string `json:"plate"`
	Brand int    `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

type updateVehicleStatusRequest struct {
	Status int `json:"status"`
}

// ListVehicles handles GET /v1/vehicles with page/page_size query params.
func (h *VehicleHandlers) ListVehicles(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntParam(c.QueryParam("page"), 1)
	pageSize := parseIntParam(c.QueryParam("page_size"), defaultVehiclePageSize)
	page, pageSize = common.NormalizePageParams(page, pageSize, defaultVehiclePageSize)

	result, err := h.vehicleService.GetPaged(ctx, page, pageSize)
	if err != nil {
		return common.SendServerError(c, "Failed to list vehicles")
	}
	return c.JSON(http.StatusOK, result)
}

// CreateVehicle handles POST /v1/vehicles. All field failures are reported
// together; the plate is uppercased before the format check so a lowercase
// duplicate surfaces as a conflict, not a validation error.
func (h *VehicleHandlers) CreateVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	var req createVehicleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	plate := common.NormalizePlate(req.Plate)
	brand := models.VehicleBrand(req.Brand)

	details := make(map[string]string)
	if err := common.ValidatePlate(plate); err != nil {
		details["plate"] = err.Error()
	}
	if !brand.IsValid() {
		details["brand"] = "brand is not a recognized value"
	}
	if err := common.ValidateModel(req.Model); err != nil {
		details["model"] = err.Error()
	}
	if err := common.ValidateYear(req.Year); err != nil {
		details["year"] = err.Error()
	}
	if len(details) > 0 {
		return common.SendValidationError(c, details)
	}

	vehicle, err := h.vehicleService.Create(ctx, services.CreateVehicleInput{
		Plate: plate,
		Brand: brand,
		Model: req.Model,
		Year:  req.Year,
	})
	if err != nil {
		if errors.Is(err, services.ErrPlateTaken) {
			return common.SendConflictError(c, "A vehicle with this plate already exists")
		}
		return common.SendServerError(c, "Failed to create vehicle")
	}
	return c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle handles GET /v1/vehicles/:id.
func (h *VehicleHandlers) GetVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	vehicle, err := h.vehicleService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to get vehicle")
	}
	return c.JSON(http.StatusOK, vehicle)
}

// GetVehicleByPlate handles GET /v1/vehicles/plate/:plate.
func (h *VehicleHandlers) GetVehicleByPlate(c echo.Context) error {
	ctx := c.Request().Context()

	plate := common.NormalizePlate(c.Param("plate"))
	if plate == "" {
		return common.SendClientError(c, "plate is required")
	}

	vehicle, err := h.vehicleService.GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to get vehicle")
	}
	return c.JSON(http.StatusOK, vehicle)
}

// GetVehiclesByStatus handles GET /v1/vehicles/status/:status. The status
// segment may be the numeric code or the name, case-insensitive.
func (h *VehicleHandlers) GetVehiclesByStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := models.ParseVehicleStatus(c.Param("status"))
	if err != nil {
		return common.SendClientError(c, "status is not a recognized value")
	}

	vehicles, err := h.vehicleService.GetByStatus(ctx, status)
	if err != nil {
		return common.SendServerError(c, "Failed to list vehicles by status")
	}
	return c.JSON(http.StatusOK, vehicles)
}

// UpdateVehicleStatus handles PATCH /v1/vehicles/:id/status. Any valid
// status can transition to any other.
func (h *VehicleHandlers) UpdateVehicleStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req updateVehicleStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	status := models.VehicleStatus(req.Status)
	if !status.IsValid() {
		return common.SendValidationError(c, map[string]string{
			"status": "status is not a recognized value",
		})
	}

	vehicle, err := h.vehicleService.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to update vehicle status")
	}
	return c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /v1/vehicles/:id (soft delete).
func (h *VehicleHandlers) DeleteVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.vehicleService.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to delete vehicle")
	}
	return c.NoContent(http.StatusNoContent)
}

// parseIntParam returns fallback for empty or malformed values; range
// clamping happens in NormalizePageParams.
func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
