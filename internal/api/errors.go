package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/gtm"
)

// httpError maps pipeline errors onto client-facing status codes. Bad input
// is the caller's fault, rejected credentials are unauthorized, everything
// else from upstream is a bad gateway.
func httpError(err error) *echo.HTTPError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErr *gtm.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	}

	var authErr *dat.AuthError
	if errors.As(err, &authErr) {
		if authErr.Status == http.StatusUnauthorized || authErr.Status == http.StatusForbidden {
			return echo.NewHTTPError(http.StatusUnauthorized, "load board rejected the credentials")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "load board authentication unavailable")
	}

	var searchErr *dat.SearchError
	if errors.As(err, &searchErr) {
		return echo.NewHTTPError(http.StatusBadGateway, "load board search failed")
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
