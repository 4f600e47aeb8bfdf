package handlers

import (
	"errors"
	"net/http"

	"fleettrack/internal/common"
	"fleettrack/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultLocationPageSize = 50

// LocationHandlers handles HTTP requests for GPS location pings.
type LocationHandlers struct {
	locationService services.LocationService
}

func NewLocationHandlers(locationService services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

type createLocationRequest struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed"`
}

// ListVehicleLocations handles GET /v1/vehicles/:id/locations with
// page/page_size and optional start_date/end_date bounds (inclusive).
func (h *LocationHandlers) ListVehicleLocations(c echo.Context) error {
	ctx := c.Request().Context()

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	details := make(map[string]string)
	startDate, err := common.ParseDate(c.QueryParam("start_date"), "start_date")
	if err != nil {
		details["start_date"] = err.Error()
	}
	endDate, err := common.ParseDate(c.QueryParam("end_date"), "end_date")
	if err != nil {
		details["end_date"] = err.Error()
	}
	if len(details) > 0 {
		return common.SendValidationError(c, details)
	}

	page := parseIntParam(c.QueryParam("page"), 1)
	pageSize := parseIntParam(c.QueryParam("page_size"), defaultLocationPageSize)
	page, pageSize = common.NormalizePageParams(page, pageSize, defaultLocationPageSize)

	result, err := h.locationService.GetPagedByVehicleID(ctx, vehicleID, page, pageSize, startDate, endDate)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to list locations")
	}
	return c.JSON(http.StatusOK, result)
}

// GetLatestLocation handles GET /v1/vehicles/:id/locations/latest.
func (h *LocationHandlers) GetLatestLocation(c echo.Context) error {
	ctx := c.Request().Context()

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	location, err := h.locationService.GetLatestByVehicleID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		if errors.Is(err, services.ErrLocationNotFound) {
			return common.SendNotFoundError(c, "Location")
		}
		return common.SendServerError(c, "Failed to get latest location")
	}
	return c.JSON(http.StatusOK, location)
}

// CreateLocation handles POST /v1/vehicles/:id/locations. The recorded-at
// timestamp is assigned server-side.
func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req createLocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	details := make(map[string]string)
	if err := common.ValidateLatitude(req.Latitude); err != nil {
		details["latitude"] = err.Error()
	}
	if err := common.ValidateLongitude(req.Longitude); err != nil {
		details["longitude"] = err.Error()
	}
	if err := common.ValidateSpeed(req.Speed); err != nil {
		details["speed"] = err.Error()
	}
	if len(details) > 0 {
		return common.SendValidationError(c, details)
	}

	location, err := h.locationService.Create(ctx, services.CreateLocationInput{
		VehicleID: vehicleID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Speed:     req.Speed,
	})
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			return common.SendNotFoundError(c, "Vehicle")
		}
		return common.SendServerError(c, "Failed to record location")
	}
	return c.JSON(http.StatusCreated, location)
}

// GetLocation handles GET /v1/locations/:id.
func (h *LocationHandlers) GetLocation(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	location, err := h.locationService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			return common.SendNotFoundError(c, "Location")
		}
		return common.SendServerError(c, "Failed to get location")
	}
	return c.JSON(http.StatusOK, location)
}
