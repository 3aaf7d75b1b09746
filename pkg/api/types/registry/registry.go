package registry

import (
	"github.com/soufianesys/mlsys/pkg/domain"
	"github.com/soufianesys/mlsys/pkg/utils/slices"
)

// Detail is the registry record as the API reports it.
type Detail struct {
	RecordId        string  `json:"record_id"`
	ModelName       string  `json:"model_name"`
	ModelVersion    int     `json:"model_version"`
	Environment     string  `json:"environment"`
	StorageLocation string  `json:"storage_location"`
	FileSizeBytes   *int64  `json:"file_size_bytes"`
	UploadTimestamp *string `json:"upload_timestamp"`
	Uploader        *string `json:"uploader"`
	RegisteredAt    string  `json:"registered_at"`
	Metadata        *string `json:"metadata"`
}

// ScanResult is the response of the model-registry endpoint.
type ScanResult struct {
	Environment string   `json:"environment"`
	Registered  int      `json:"registered"`
	Records     []Detail `json:"records"`
}

const timestampFormat = "2006-01-02T15:04:05Z07:00"

func ComposeDetail(r domain.RegistryRecord) Detail {
	var uploadedAt *string
	if r.UploadTimestamp != nil {
		s := r.UploadTimestamp.Format(timestampFormat)
		uploadedAt = &s
	}

	return Detail{
		RecordId:        r.RecordId,
		ModelName:       r.ModelName,
		ModelVersion:    r.ModelVersion,
		Environment:     string(r.Environment),
		StorageLocation: r.StorageLocation,
		FileSizeBytes:   r.FileSizeBytes,
		UploadTimestamp: uploadedAt,
		Uploader:        r.Uploader,
		RegisteredAt:    r.RegisteredAt.Format(timestampFormat),
		Metadata:        r.Metadata,
	}
}

func ComposeScanResult(env domain.Environment, records []domain.RegistryRecord) ScanResult {
	return ScanResult{
		Environment: string(env),
		Registered:  len(records),
		Records:     slices.Map(records, ComposeDetail),
	}
}
