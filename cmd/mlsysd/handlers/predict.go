package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/soufianesys/mlsys/pkg/api/types/errors"
	apipred "github.com/soufianesys/mlsys/pkg/api/types/predictions"
	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
)

type PredictionService interface {
	RunPredictions(ctx context.Context, req domain.PredictionRequest) (int, error)
}

// PredictHandler scores every row of the input table with the
// requested model and appends the result to the output table.
func PredictHandler(runner PredictionService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		env, err := domain.ParseEnvironment(c.QueryParam("env"))
		if err != nil {
			return apierr.BadRequest(
				`query parameter "env" should be one of dev, staging or prod`,
				err,
			)
		}

		input, err := domain.ParseTableRef(c.QueryParam("input_table"))
		if err != nil {
			return apierr.BadRequest(
				`query parameter "input_table" should be formatted as DATASET.TABLE`,
				err,
			)
		}
		output, err := domain.ParseTableRef(c.QueryParam("output_table"))
		if err != nil {
			return apierr.BadRequest(
				`query parameter "output_table" should be formatted as DATASET.TABLE`,
				err,
			)
		}

		modelName := c.QueryParam("model_name")
		if modelName == "" {
			return apierr.BadRequest(
				`query parameter "model_name" is required`,
				nil,
			)
		}
		modelVersion := c.QueryParam("model_version")
		if !domain.ValidModelVersion(modelVersion) {
			return apierr.BadRequest(
				`query parameter "model_version" should be formatted as v{N}`,
				fmt.Errorf("bad model version: %q", modelVersion),
			)
		}

		req := domain.PredictionRequest{
			Environment:  env,
			InputTable:   input,
			OutputTable:  output,
			ModelName:    modelName,
			ModelVersion: modelVersion,
		}

		written, err := runner.RunPredictions(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownEnvironment) {
				return apierr.BadRequest(`unknown environment`, err)
			}
			if errors.Is(err, kerr.ErrModelLoad) {
				return apierr.NotFound(
					fmt.Sprintf("no loadable model at %s/%s", modelName, modelVersion),
					err,
				)
			}
			if errors.Is(err, kerr.ErrMissing) {
				return apierr.NotFound(`input or output table does not exist`, err)
			}
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, apipred.Summary{
			Environment:  string(env),
			ModelName:    modelName,
			ModelVersion: modelVersion,
			InputTable:   input.String(),
			OutputTable:  output.String(),
			RowsWritten:  written,
		})
	}
}
