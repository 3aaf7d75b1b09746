package errors

import (
	"errors"
	"fmt"
)

// Sentinels for the failure kinds the platform distinguishes.
// Wrap them with fmt.Errorf("...: %w", ...) or the typed errors below,
// and test with errors.Is.
var (
	// ErrMissing: a requested entity (table, record) does not exist.
	ErrMissing = errors.New("missing")

	// ErrStorage: listing or fetching from an object storage bucket failed.
	ErrStorage = errors.New("storage unavailable")

	// ErrRegistryWrite: writing a record to the registry store failed.
	// Records written earlier in the same run stay written.
	ErrRegistryWrite = errors.New("registry write failed")

	// ErrDataAccess: reading or appending a warehouse table failed.
	ErrDataAccess = errors.New("data access failed")

	// ErrModelLoad: the model artifact is missing, corrupt, or does not
	// expose the prediction capability.
	ErrModelLoad = errors.New("model load failed")
)

// StorageError reports a failed bucket operation.
type StorageError struct {
	Op     string // "list", "fetch", "stat"
	Bucket string
	Key    string // empty for bucket-level operations
	Cause  error
}

var _ error = StorageError{}

func (e StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s bucket %s: %s", e.Op, e.Bucket, e.Cause)
	}
	return fmt.Sprintf("%s %s in bucket %s: %s", e.Op, e.Key, e.Bucket, e.Cause)
}

func (e StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Cause}
}

// ModelLoadError reports that an artifact could not be turned into a
// usable predictor.
type ModelLoadError struct {
	ModelName    string
	ModelVersion string
	Cause        error
}

var _ error = ModelLoadError{}

func (e ModelLoadError) Error() string {
	return fmt.Sprintf(
		"model %s %s can not be loaded: %s", e.ModelName, e.ModelVersion, e.Cause,
	)
}

func (e ModelLoadError) Unwrap() []error {
	return []error{ErrModelLoad, e.Cause}
}
