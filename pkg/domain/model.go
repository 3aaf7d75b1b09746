package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Environment is a deployment environment which has its own model bucket
// and its own registry dataset.
type Environment string

const (
	Dev     Environment = "dev"
	Staging Environment = "staging"
	Prod    Environment = "prod"
)

// KnownEnvironments lists every environment mlsys can be pointed at.
func KnownEnvironments() []Environment {
	return []Environment{Dev, Staging, Prod}
}

var ErrUnknownEnvironment = errors.New("unknown environment")

func ParseEnvironment(s string) (Environment, error) {
	switch e := Environment(s); e {
	case Dev, Staging, Prod:
		return e, nil
	default:
		return "", fmt.Errorf(
			"%w: %q (must be one of dev, staging or prod)",
			ErrUnknownEnvironment, s,
		)
	}
}

// SidecarFilename is the optional metadata companion file stored next to
// a model artifact in its version directory.
const SidecarFilename = "metadata.json"

var ErrInvalidPath = errors.New("invalid artifact path")

var versionPattern = regexp.MustCompile(`^v([0-9]+)$`)

// ArtifactPath is a storage key parsed against the convention
//
//	{model_name}/v{N}/{filename}
//
// Keys of any other shape are not model artifacts.
type ArtifactPath struct {
	ModelName string
	Version   int
	Filename  string
}

// ParseArtifactPath parses a storage object key into an ArtifactPath.
//
// Keys which do not have exactly 3 non-empty segments, or whose second
// segment is not "v" followed by digits, yield ErrInvalidPath.
func ParseArtifactPath(key string) (ArtifactPath, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return ArtifactPath{}, fmt.Errorf(
			"%w: %q is not shaped {model_name}/v{N}/{filename}", ErrInvalidPath, key,
		)
	}

	name, version, filename := parts[0], parts[1], parts[2]
	if name == "" || filename == "" {
		return ArtifactPath{}, fmt.Errorf(
			"%w: %q has an empty segment", ErrInvalidPath, key,
		)
	}

	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return ArtifactPath{}, fmt.Errorf(
			"%w: version segment %q of %q is not v{N}", ErrInvalidPath, version, key,
		)
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return ArtifactPath{}, fmt.Errorf(
			"%w: version segment %q of %q: %s", ErrInvalidPath, version, key, err,
		)
	}

	return ArtifactPath{ModelName: name, Version: v, Filename: filename}, nil
}

// IsSidecar reports whether this path points at a metadata sidecar
// rather than a primary artifact.
func (p ArtifactPath) IsSidecar() bool {
	return p.Filename == SidecarFilename
}

// Key re-renders the path as a storage object key.
func (p ArtifactPath) Key() string {
	return fmt.Sprintf("%s/v%d/%s", p.ModelName, p.Version, p.Filename)
}

// SidecarKey is the key where the sidecar of this path's version group
// would live, whether or not such an object exists.
func (p ArtifactPath) SidecarKey() string {
	return fmt.Sprintf("%s/v%d/%s", p.ModelName, p.Version, SidecarFilename)
}

// RegistryRecord is one row of the model registry:
// a (model name, model version, environment) observation taken from
// object storage at RegisteredAt.
type RegistryRecord struct {
	RecordId        string
	ModelName       string
	ModelVersion    int
	Environment     Environment
	StorageLocation string

	// nullable; absent when the storage layer does not report them.
	FileSizeBytes   *int64
	UploadTimestamp *time.Time
	Uploader        *string

	RegisteredAt time.Time

	// raw JSON read from the sidecar. nil when no (valid) sidecar exists.
	Metadata *string
}

// Equal disregards RecordId, which is assigned by the registry store.
func (r RegistryRecord) Equal(o RegistryRecord) bool {
	return r.ModelName == o.ModelName &&
		r.ModelVersion == o.ModelVersion &&
		r.Environment == o.Environment &&
		r.StorageLocation == o.StorageLocation &&
		eqPtr(r.FileSizeBytes, o.FileSizeBytes) &&
		eqTimePtr(r.UploadTimestamp, o.UploadTimestamp) &&
		eqPtr(r.Uploader, o.Uploader) &&
		r.RegisteredAt.Equal(o.RegisteredAt) &&
		eqPtr(r.Metadata, o.Metadata)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// PredictionRequest is one invocation of the Prediction Runner.
// It is never persisted.
type PredictionRequest struct {
	Environment Environment
	InputTable  TableRef
	OutputTable TableRef
	ModelName   string

	// ModelVersion keeps the "v{N}" spelling used in storage keys.
	ModelVersion string
}

var modelVersionPattern = regexp.MustCompile(`^v[0-9]+$`)

// ValidModelVersion reports whether s is spelled like "v1", "v2", ... .
func ValidModelVersion(s string) bool {
	return modelVersionPattern.MatchString(s)
}
