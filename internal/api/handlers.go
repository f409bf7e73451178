package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/cities"
	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/filtering"
	"github.com/kayaan/driver-gtm/internal/gtm"
)

// Provider hands out a pipeline service per environment and credentials.
type Provider interface {
	Service(environment string, creds dat.Credentials) (*gtm.Service, error)
}

type Handler struct {
	logger   *zap.Logger
	provider Provider
	cities   *cities.DB
}

func NewHandler(logger *zap.Logger, provider Provider, db *cities.DB) *Handler {
	return &Handler{
		logger:   logger,
		provider: provider,
		cities:   db,
	}
}

// parseAvailability builds a time window from optional RFC 3339 bounds.
func parseAvailability(from, to string) (filtering.TimeWindow, error) {
	var window filtering.TimeWindow

	if from != "" {
		earliest, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return window, &gtm.ValidationError{Field: "available_from", Reason: "must be RFC 3339"}
		}
		window.Earliest = earliest.UTC()
	}
	if to != "" {
		latest, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return window, &gtm.ValidationError{Field: "available_to", Reason: "must be RFC 3339"}
		}
		window.Latest = latest.UTC()
	}
	if !window.Earliest.IsZero() && !window.Latest.IsZero() && window.Latest.Before(window.Earliest) {
		return window, &gtm.ValidationError{Field: "available_to", Reason: "window ends before it starts"}
	}

	return window, nil
}

func (h *Handler) SearchDrivers(c echo.Context) error {
	var req searchDriversRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	window, err := parseAvailability(req.AvailableFrom, req.AvailableTo)
	if err != nil {
		return httpError(err)
	}

	service, err := h.provider.Service(req.Environment, req.Credentials.toCredentials())
	if err != nil {
		return httpError(err)
	}

	result, err := service.SearchDrivers(c.Request().Context(), &gtm.SearchRequest{
		City:              req.City,
		State:             req.State,
		EquipmentTypes:    req.EquipmentTypes,
		LoadType:          req.LoadType,
		Limit:             req.Limit,
		Availability:      window,
		DestinationStates: req.DestinationStates,
		MaxDeadheadMiles:  req.MaxDeadhead,
	})
	if err != nil {
		h.logger.Warn("driver search failed", zap.Error(err))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, searchDriversResponseFor(result))
}

func (h *Handler) LoadsForDriver(c echo.Context) error {
	var req loadsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	window, err := parseAvailability(req.AvailableFrom, req.AvailableTo)
	if err != nil {
		return httpError(err)
	}

	service, err := h.provider.Service(req.Environment, req.Credentials.toCredentials())
	if err != nil {
		return httpError(err)
	}

	result, err := service.RankLoads(c.Request().Context(), &gtm.LoadRequest{
		City:              req.City,
		State:             req.State,
		EquipmentTypes:    req.EquipmentTypes,
		LoadType:          req.LoadType,
		Limit:             req.Limit,
		Availability:      window,
		DestinationStates: req.DestinationStates,
		MaxDeadheadMiles:  req.MaxDeadhead,
	})
	if err != nil {
		h.logger.Warn("load ranking failed", zap.Error(err))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, loadsResponseFor(result))
}

func (h *Handler) Authenticate(c echo.Context) error {
	var req authenticateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	service, err := h.provider.Service(req.Environment, req.Credentials.toCredentials())
	if err != nil {
		return httpError(err)
	}

	if err := service.VerifyCredentials(c.Request().Context()); err != nil {
		h.logger.Warn("authentication failed", zap.Error(err))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": req.Environment,
	})
}

func (h *Handler) States(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"states": h.cities.States(),
	})
}

func (h *Handler) CitiesByState(c echo.Context) error {
	state := c.Param("state")

	list := h.cities.CitiesByState(state)
	if len(list) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "unknown state")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"state":  state,
		"cities": list,
	})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
