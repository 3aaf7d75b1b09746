package db

import (
	"context"

	"github.com/soufianesys/mlsys/pkg/domain"
)

// RegistryInterface stores registry records for model version groups.
type RegistryInterface interface {
	// Insert appends rec to the scan-history table of the named dataset
	// (one dataset per environment, e.g. "mlsys_dev").
	//
	// Every call adds a new row; scan history is append-only.
	// Returns rec with its assigned RecordId.
	Insert(ctx context.Context, dataset string, rec domain.RegistryRecord) (domain.RegistryRecord, error)

	// Upsert writes rec to the shared model catalog, keyed on
	// (model_name, model_version, environment). An existing row for the
	// same key is replaced; this is the write used by single-object
	// (upload-event) registration.
	//
	// Returns the stored record with its RecordId (the existing row's id
	// when a row was replaced).
	Upsert(ctx context.Context, rec domain.RegistryRecord) (domain.RegistryRecord, error)
}
