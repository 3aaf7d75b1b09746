package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	handlers "github.com/soufianesys/mlsys/cmd/mlsysd/handlers"
	httptestutil "github.com/soufianesys/mlsys/internal/testutils/http"
	apireg "github.com/soufianesys/mlsys/pkg/api/types/registry"
	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
	"github.com/soufianesys/mlsys/pkg/utils/pointer"
)

type fakeRegistrar struct {
	records []domain.RegistryRecord
	err     error

	calls []domain.Environment
}

func (f *fakeRegistrar) ScanAndRegister(
	ctx context.Context, env domain.Environment,
) ([]domain.RegistryRecord, error) {
	f.calls = append(f.calls, env)
	return f.records, f.err
}

func httpStatusOf(t *testing.T, err error) int {
	t.Helper()
	httpErr := &echo.HTTPError{}
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return httpErr.Code
}

func TestModelRegistryHandler(t *testing.T) {
	t.Run("it responds the scan result", func(t *testing.T) {
		registeredAt := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		uploaded := registeredAt.Add(-time.Hour)

		registrar := &fakeRegistrar{
			records: []domain.RegistryRecord{
				{
					RecordId:        "rec-1",
					ModelName:       "churn",
					ModelVersion:    2,
					Environment:     domain.Dev,
					StorageLocation: "models-dev",
					FileSizeBytes:   pointer.Ref(int64(42)),
					UploadTimestamp: &uploaded,
					Uploader:        pointer.Ref("scan"),
					RegisteredAt:    registeredAt,
					Metadata:        pointer.Ref(`{"auc": 0.87}`),
				},
			},
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/model-registry/?env=dev")

		err := handlers.ModelRegistryHandler(registrar)(c)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != http.StatusOK {
			t.Fatalf("unmatch status: %d", resp.Code)
		}

		actual := apireg.ScanResult{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not JSON: %s", err)
		}

		if actual.Environment != "dev" || actual.Registered != 1 {
			t.Errorf("unmatch summary: %+v", actual)
		}
		if len(actual.Records) != 1 {
			t.Fatalf("unmatch records: %+v", actual.Records)
		}
		rec := actual.Records[0]
		if rec.RecordId != "rec-1" || rec.ModelName != "churn" || rec.ModelVersion != 2 {
			t.Errorf("unmatch record: %+v", rec)
		}
		if rec.RegisteredAt != "2024-04-01T12:00:00Z" {
			t.Errorf("unmatch registered_at: %s", rec.RegisteredAt)
		}
		if rec.Metadata == nil || *rec.Metadata != `{"auc": 0.87}` {
			t.Errorf("unmatch metadata: %+v", rec.Metadata)
		}

		if len(registrar.calls) != 1 || registrar.calls[0] != domain.Dev {
			t.Errorf("unmatch calls: %+v", registrar.calls)
		}
	})

	t.Run("an empty scan responds an empty record list", func(t *testing.T) {
		registrar := &fakeRegistrar{records: []domain.RegistryRecord{}}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/model-registry/?env=dev")

		if err := handlers.ModelRegistryHandler(registrar)(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		actual := apireg.ScanResult{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not JSON: %s", err)
		}
		if actual.Registered != 0 || len(actual.Records) != 0 {
			t.Errorf("unmatch: %+v", actual)
		}
	})

	t.Run("a missing environment parameter is a bad request", func(t *testing.T) {
		registrar := &fakeRegistrar{}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/model-registry/")

		err := handlers.ModelRegistryHandler(registrar)(c)
		if httpStatusOf(t, err) != http.StatusBadRequest {
			t.Errorf("expected 400, got %v", err)
		}
		if len(registrar.calls) != 0 {
			t.Errorf("the scan should not start: %+v", registrar.calls)
		}
	})

	t.Run("an unknown environment is a bad request", func(t *testing.T) {
		registrar := &fakeRegistrar{}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/model-registry/?env=qa")

		err := handlers.ModelRegistryHandler(registrar)(c)
		if httpStatusOf(t, err) != http.StatusBadRequest {
			t.Errorf("expected 400, got %v", err)
		}
	})

	t.Run("a storage failure is a bad gateway", func(t *testing.T) {
		registrar := &fakeRegistrar{
			err: kerr.StorageError{Op: "list", Bucket: "models-dev", Cause: errors.New("fake")},
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/model-registry/?env=dev")

		err := handlers.ModelRegistryHandler(registrar)(c)
		if httpStatusOf(t, err) != http.StatusBadGateway {
			t.Errorf("expected 502, got %v", err)
		}
	})

	t.Run("any other failure is an internal server error", func(t *testing.T) {
		registrar := &fakeRegistrar{err: errors.New("fake db error")}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/model-registry/?env=dev")

		err := handlers.ModelRegistryHandler(registrar)(c)
		if httpStatusOf(t, err) != http.StatusInternalServerError {
			t.Errorf("expected 500, got %v", err)
		}
	})
}
