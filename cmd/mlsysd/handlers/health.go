package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/soufianesys/mlsys/pkg/api/types/errors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes. It pings the registry
// database so a wedged connection pool is reported, not hidden.
func HealthHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return apierr.NewErrorMessage(
				http.StatusServiceUnavailable,
				"database unreachable",
				apierr.WithError(err),
			)
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}
