package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/soufianesys/mlsys/pkg/api/types/errors"
	apireg "github.com/soufianesys/mlsys/pkg/api/types/registry"
	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
)

type RegistrarService interface {
	ScanAndRegister(ctx context.Context, env domain.Environment) ([]domain.RegistryRecord, error)
}

// ModelRegistryHandler scans the environment's bucket and registers
// every model version it finds.
func ModelRegistryHandler(registrar RegistrarService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		env, err := domain.ParseEnvironment(c.QueryParam("env"))
		if err != nil {
			return apierr.BadRequest(
				`query parameter "env" should be one of dev, staging or prod`,
				err,
			)
		}

		records, err := registrar.ScanAndRegister(ctx, env)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownEnvironment) {
				return apierr.BadRequest(`unknown environment`, err)
			}
			if errors.Is(err, kerr.ErrStorage) {
				return apierr.NewErrorMessage(
					http.StatusBadGateway,
					"model bucket unreachable",
					apierr.WithError(err),
				)
			}
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, apireg.ComposeScanResult(env, records))
	}
}
