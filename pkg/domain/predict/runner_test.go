package predict_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
	"github.com/soufianesys/mlsys/pkg/domain/predict"
	mockdb "github.com/soufianesys/mlsys/pkg/domain/warehouse/db/mock"
	"github.com/soufianesys/mlsys/pkg/storage"
	mockstorage "github.com/soufianesys/mlsys/pkg/storage/mock"
	"github.com/soufianesys/mlsys/pkg/utils/cmp"
	"github.com/soufianesys/mlsys/pkg/utils/try"
)

var fixedNow = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

const logisticDocument = `{
	"kind": "logistic_regression",
	"spec": {
		"features": ["x"],
		"coefficients": [1.0],
		"intercept": 0.0,
		"classes": ["neg", "pos"]
	}
}`

const majorityDocument = `{
	"kind": "majority_class",
	"spec": {"class": "no_churn"}
}`

func newRunner(
	warehouse *mockdb.WarehouseInterface, bucket storage.Bucket,
) *predict.Runner {
	return predict.New(
		warehouse,
		map[domain.Environment]storage.Bucket{domain.Dev: bucket},
		predict.WithClock(func() time.Time { return fixedNow }),
	)
}

func request() domain.PredictionRequest {
	return domain.PredictionRequest{
		Environment:  domain.Dev,
		InputTable:   domain.TableRef{Dataset: "mlsys_dev", Name: "features"},
		OutputTable:  domain.TableRef{Dataset: "mlsys_dev", Name: "predictions"},
		ModelName:    "churn",
		ModelVersion: "v2",
	}
}

func TestRunPredictions(t *testing.T) {
	ctx := context.Background()

	input := domain.Table{
		Columns: []string{"id", "x"},
		Rows: [][]any{
			{"a", 2.0},
			{"b", -3.0},
			{"c", 1.0},
		},
	}

	t.Run("it appends one scored row per input row", func(t *testing.T) {
		warehouse := mockdb.New()
		warehouse.Impl.GetTable = func(
			_ context.Context, ref domain.TableRef,
		) (domain.Table, error) {
			if ref.Name != "features" {
				t.Fatalf("unexpected GetTable: %s", ref)
			}
			return input, nil
		}

		bucket := mockstorage.New()
		bucket.Impl.Get = func(_ context.Context, key string) ([]byte, error) {
			if key != "churn/v2/model.json" {
				t.Fatalf("unexpected Get: %s", key)
			}
			return []byte(logisticDocument), nil
		}

		written := try.To(
			newRunner(warehouse, bucket).RunPredictions(ctx, request()),
		).OrFatal(t)

		if written != 3 {
			t.Errorf("unmatch written: actual = %d, expected = 3", written)
		}

		if len(warehouse.Calls.Append) != 1 {
			t.Fatalf("expected 1 append, got %d", len(warehouse.Calls.Append))
		}
		appended := warehouse.Calls.Append[0]
		if appended.Table.Name != "predictions" {
			t.Errorf("unmatch output table: %s", appended.Table)
		}

		expectedColumns := []string{
			"id", "x",
			"prediction", "prediction_proba",
			"prediction_timestamp", "model_name", "model_version",
		}
		if !cmp.SliceEq(appended.Data.Columns, expectedColumns) {
			t.Errorf("unmatch columns: %v", appended.Data.Columns)
		}

		labelAt, ok := appended.Data.ColumnIndex("prediction")
		if !ok {
			t.Fatal("no prediction column")
		}
		labels := make([]string, appended.Data.Len())
		for i, row := range appended.Data.Rows {
			labels[i] = row[labelAt].(string)
		}
		if !cmp.SliceEq(labels, []string{"pos", "neg", "pos"}) {
			t.Errorf("unmatch labels: %v", labels)
		}

		tsAt, _ := appended.Data.ColumnIndex("prediction_timestamp")
		for i, row := range appended.Data.Rows {
			if ts := row[tsAt].(time.Time); !ts.Equal(fixedNow) {
				t.Errorf("row %d: every row should carry the batch timestamp: %v", i, ts)
			}
		}

		nameAt, _ := appended.Data.ColumnIndex("model_name")
		versionAt, _ := appended.Data.ColumnIndex("model_version")
		for i, row := range appended.Data.Rows {
			if row[nameAt] != "churn" || row[versionAt] != "v2" {
				t.Errorf("row %d: unmatch model columns: %v", i, row)
			}
		}
	})

	t.Run("a model without probabilities writes no proba column", func(t *testing.T) {
		warehouse := mockdb.New()
		warehouse.Impl.GetTable = func(
			context.Context, domain.TableRef,
		) (domain.Table, error) {
			return input, nil
		}

		bucket := mockstorage.New()
		bucket.Impl.Get = func(context.Context, string) ([]byte, error) {
			return []byte(majorityDocument), nil
		}

		written := try.To(
			newRunner(warehouse, bucket).RunPredictions(ctx, request()),
		).OrFatal(t)
		if written != 3 {
			t.Errorf("unmatch written: %d", written)
		}

		appended := warehouse.Calls.Append[0]
		if _, ok := appended.Data.ColumnIndex("prediction_proba"); ok {
			t.Errorf("majority_class should not write prediction_proba: %v", appended.Data.Columns)
		}
		if _, ok := appended.Data.ColumnIndex("prediction"); !ok {
			t.Errorf("prediction column is missing: %v", appended.Data.Columns)
		}
	})

	t.Run("a missing model artifact is a model load error, and nothing is written", func(t *testing.T) {
		warehouse := mockdb.New()
		warehouse.Impl.GetTable = func(
			context.Context, domain.TableRef,
		) (domain.Table, error) {
			return input, nil
		}

		bucket := mockstorage.New()
		bucket.Impl.Get = func(context.Context, string) ([]byte, error) {
			return nil, storage.ErrNotFound
		}

		_, err := newRunner(warehouse, bucket).RunPredictions(ctx, request())
		if !errors.Is(err, kerr.ErrModelLoad) {
			t.Errorf("expected ErrModelLoad, got %v", err)
		}
		if len(warehouse.Calls.Append) != 0 {
			t.Errorf("nothing should be appended on failure: %+v", warehouse.Calls.Append)
		}
	})

	t.Run("an undecodable model document is a model load error", func(t *testing.T) {
		warehouse := mockdb.New()
		warehouse.Impl.GetTable = func(
			context.Context, domain.TableRef,
		) (domain.Table, error) {
			return input, nil
		}

		bucket := mockstorage.New()
		bucket.Impl.Get = func(context.Context, string) ([]byte, error) {
			return []byte(`{"kind": "gradient_boosting", "spec": {}}`), nil
		}

		_, err := newRunner(warehouse, bucket).RunPredictions(ctx, request())
		if !errors.Is(err, kerr.ErrModelLoad) {
			t.Errorf("expected ErrModelLoad, got %v", err)
		}
	})

	t.Run("a failing input table read is passed through", func(t *testing.T) {
		warehouse := mockdb.New()
		fakeErr := errors.New("fake table error")
		warehouse.Impl.GetTable = func(
			context.Context, domain.TableRef,
		) (domain.Table, error) {
			return domain.Table{}, fakeErr
		}

		bucket := mockstorage.New()

		_, err := newRunner(warehouse, bucket).RunPredictions(ctx, request())
		if !errors.Is(err, fakeErr) {
			t.Errorf("expected the table error, got %v", err)
		}
		if len(bucket.Calls.Get) != 0 {
			t.Errorf("the model should not be loaded when the input is unreadable")
		}
	})

	t.Run("an unknown environment is rejected", func(t *testing.T) {
		r := newRunner(mockdb.New(), mockstorage.New())
		req := request()
		req.Environment = domain.Prod
		if _, err := r.RunPredictions(ctx, req); !errors.Is(err, domain.ErrUnknownEnvironment) {
			t.Errorf("expected ErrUnknownEnvironment, got %v", err)
		}
	})
}
