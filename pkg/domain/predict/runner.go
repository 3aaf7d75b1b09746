// Package predict applies one registered model to one batch of warehouse
// rows and appends the results.
package predict

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
	kdbwh "github.com/soufianesys/mlsys/pkg/domain/warehouse/db"
	"github.com/soufianesys/mlsys/pkg/models"
	"github.com/soufianesys/mlsys/pkg/storage"
)

// Output column names attached to every prediction row.
const (
	ColumnPrediction          = "prediction"
	ColumnPredictionProba     = "prediction_proba"
	ColumnPredictionTimestamp = "prediction_timestamp"
	ColumnModelName           = "model_name"
	ColumnModelVersion        = "model_version"
)

type Runner struct {
	warehouse kdbwh.WarehouseInterface
	buckets   map[domain.Environment]storage.Bucket

	decode func([]byte) (models.Predictor, error)
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Runner) *Runner

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) *Runner {
		r.logger = l
		return r
	}
}

// WithClock replaces the batch timestamp clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) *Runner {
		r.now = now
		return r
	}
}

// WithDecoder replaces the model document decoder. For tests.
func WithDecoder(decode func([]byte) (models.Predictor, error)) Option {
	return func(r *Runner) *Runner {
		r.decode = decode
		return r
	}
}

func New(
	warehouse kdbwh.WarehouseInterface,
	buckets map[domain.Environment]storage.Bucket,
	options ...Option,
) *Runner {
	r := &Runner{
		warehouse: warehouse,
		buckets:   buckets,
		decode:    models.Decode,
		logger:    log.New(io.Discard, "", 0),
		now:       time.Now,
	}
	for _, opt := range options {
		r = opt(r)
	}
	return r
}

// RunPredictions pulls every row of the input table, scores it with the
// requested model version, and appends the rows, augmented with the
// prediction columns, to the output table. Returns the number of rows
// written.
//
// The batch is all-or-nothing: any failure before the append leaves the
// output table untouched, and every written row carries the same
// prediction timestamp.
func (r *Runner) RunPredictions(
	ctx context.Context, req domain.PredictionRequest,
) (int, error) {
	bucket, ok := r.buckets[req.Environment]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownEnvironment, req.Environment)
	}

	input, err := r.warehouse.GetTable(ctx, req.InputTable)
	if err != nil {
		return 0, err
	}
	r.logger.Printf("fetched %d rows from %s", input.Len(), req.InputTable)

	key := fmt.Sprintf(
		"%s/%s/%s", req.ModelName, req.ModelVersion, models.DocumentFilename,
	)
	raw, err := bucket.Get(ctx, key)
	if err != nil {
		return 0, kerr.ModelLoadError{
			ModelName: req.ModelName, ModelVersion: req.ModelVersion, Cause: err,
		}
	}
	predictor, err := r.decode(raw)
	if err != nil {
		return 0, kerr.ModelLoadError{
			ModelName: req.ModelName, ModelVersion: req.ModelVersion, Cause: err,
		}
	}
	r.logger.Printf("loaded model %s %s from bucket %s", req.ModelName, req.ModelVersion, bucket.Name())

	labels, err := predictor.Predict(input)
	if err != nil {
		return 0, fmt.Errorf(
			"predicting with %s %s: %w", req.ModelName, req.ModelVersion, err,
		)
	}

	var probas []float64
	if pp, ok := predictor.(models.ProbabilityPredictor); ok {
		probas, err = pp.PredictProba(input)
		if err != nil {
			return 0, fmt.Errorf(
				"predicting probabilities with %s %s: %w", req.ModelName, req.ModelVersion, err,
			)
		}
	}

	output, err := input.WithColumn(ColumnPrediction, asAnys(labels))
	if err != nil {
		return 0, err
	}
	if probas != nil {
		output, err = output.WithColumn(ColumnPredictionProba, asAnys(probas))
		if err != nil {
			return 0, err
		}
	}

	// one timestamp for the whole batch
	batchAt := r.now().UTC()
	output = output.WithConstantColumn(ColumnPredictionTimestamp, batchAt)
	output = output.WithConstantColumn(ColumnModelName, req.ModelName)
	output = output.WithConstantColumn(ColumnModelVersion, req.ModelVersion)

	written, err := r.warehouse.Append(ctx, req.OutputTable, output)
	if err != nil {
		return 0, err
	}
	r.logger.Printf("wrote %d prediction rows to %s", written, req.OutputTable)
	return written, nil
}

func asAnys[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
