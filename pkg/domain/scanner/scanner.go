// Package scanner discovers model artifacts in object storage and
// registers them in the model registry.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
	kdbreg "github.com/soufianesys/mlsys/pkg/domain/registry/db"
	"github.com/soufianesys/mlsys/pkg/storage"
)

// scanUploader marks batch-scan records: a full-bucket scan does not know
// who originally uploaded each object.
const scanUploader = "scan"

// eventUploader marks single-object records whose owner the storage
// layer did not surface.
const eventUploader = "unknown"

// Target is the scannable surface of one environment: its model bucket
// and the dataset its scan history is written to.
type Target struct {
	Bucket  storage.Bucket
	Dataset string
}

type Scanner struct {
	registry kdbreg.RegistryInterface
	targets  map[domain.Environment]Target

	logger *log.Logger
	now    func() time.Time
}

type Option func(*Scanner) *Scanner

func WithLogger(l *log.Logger) Option {
	return func(s *Scanner) *Scanner {
		s.logger = l
		return s
	}
}

// WithClock replaces the RegisteredAt clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) *Scanner {
		s.now = now
		return s
	}
}

func New(
	registry kdbreg.RegistryInterface,
	targets map[domain.Environment]Target,
	options ...Option,
) *Scanner {
	s := &Scanner{
		registry: registry,
		targets:  targets,
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

// versionGroup accumulates the objects found under one
// {model_name}/v{N}/ prefix during a listing pass.
type versionGroup struct {
	path    domain.ArtifactPath // path of the primary artifact
	primary *storage.ObjectInfo
	sidecar *storage.ObjectInfo
	latest  time.Time
}

// ScanAndRegister lists every object in env's bucket, groups valid
// artifact paths per (model name, version) and appends one registry
// record per group to env's scan-history dataset.
//
// Keys which are not shaped {model_name}/v{N}/{filename} are skipped and
// counted, never fatal. A listing failure is fatal. A registry write
// failure is fatal for that record but keeps earlier records written;
// the records written so far are returned together with the error.
func (s *Scanner) ScanAndRegister(
	ctx context.Context, env domain.Environment,
) ([]domain.RegistryRecord, error) {
	target, ok := s.targets[env]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEnvironment, env)
	}
	bucket := target.Bucket

	objects, err := bucket.List(ctx)
	if err != nil {
		return nil, kerr.StorageError{Op: "list", Bucket: bucket.Name(), Cause: err}
	}
	s.logger.Printf("scanning bucket %s: %d objects", bucket.Name(), len(objects))

	type groupKey struct {
		name    string
		version int
	}
	groups := map[groupKey]*versionGroup{}
	order := []groupKey{} // listing order of first appearance
	skipped := 0

	for i := range objects {
		obj := objects[i]
		path, err := domain.ParseArtifactPath(obj.Key)
		if err != nil {
			s.logger.Printf("skipped (invalid path shape): %s", obj.Key)
			skipped += 1
			continue
		}

		k := groupKey{name: path.ModelName, version: path.Version}
		g, ok := groups[k]
		if !ok {
			g = &versionGroup{}
			groups[k] = g
			order = append(order, k)
		}

		if obj.ModifiedAt.After(g.latest) {
			g.latest = obj.ModifiedAt
		}

		if path.IsSidecar() {
			if g.sidecar == nil {
				g.sidecar = &obj
			}
			continue
		}
		// first primary in listing order wins; later files in the same
		// group still contribute to the latest timestamp
		if g.primary == nil {
			g.primary = &obj
			g.path = path
		}
	}

	registered := []domain.RegistryRecord{}
	for _, k := range order {
		g := groups[k]
		if g.primary == nil {
			// a sidecar alone does not constitute a version group
			s.logger.Printf(
				"skipped (no primary artifact): %s/v%d", k.name, k.version,
			)
			skipped += 1
			continue
		}

		rec := s.compose(ctx, bucket, env, g)
		rec, err := s.registry.Insert(ctx, target.Dataset, rec)
		if err != nil {
			return registered, err
		}
		registered = append(registered, rec)
	}

	s.logger.Printf(
		"registered %d model versions from bucket %s (skipped %d keys)",
		len(registered), bucket.Name(), skipped,
	)
	return registered, nil
}

// RegisterObject registers the single storage key, the write path used
// by upload events. Unlike a batch scan it upserts: the catalog keeps
// one row per (model name, version, environment).
//
// Keys that are not primary artifacts (wrong shape, or a sidecar) are
// skipped: both the record and the error are nil.
func (s *Scanner) RegisterObject(
	ctx context.Context, env domain.Environment, key string,
) (*domain.RegistryRecord, error) {
	target, ok := s.targets[env]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEnvironment, env)
	}
	bucket := target.Bucket

	path, err := domain.ParseArtifactPath(key)
	if err != nil {
		s.logger.Printf("not registered (invalid path shape): %s", key)
		return nil, nil
	}
	if path.IsSidecar() {
		s.logger.Printf("not registered (sidecar): %s", key)
		return nil, nil
	}

	obj, err := bucket.Stat(ctx, key)
	if err != nil {
		return nil, kerr.StorageError{Op: "stat", Bucket: bucket.Name(), Key: key, Cause: err}
	}

	g := &versionGroup{path: path, primary: &obj, latest: obj.ModifiedAt}
	if sc, err := bucket.Stat(ctx, path.SidecarKey()); err == nil {
		g.sidecar = &sc
	}

	rec := s.compose(ctx, bucket, env, g)
	if rec.Uploader != nil && *rec.Uploader == scanUploader {
		uploader := eventUploader
		rec.Uploader = &uploader
	}

	stored, err := s.registry.Upsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Printf(
		"registered model %s v%d in %s", rec.ModelName, rec.ModelVersion, env,
	)
	return &stored, nil
}

// compose builds the registry record for one version group, fetching
// sidecar metadata when present. A sidecar that cannot be fetched or is
// not valid JSON yields a record with nil metadata, never an error.
func (s *Scanner) compose(
	ctx context.Context, bucket storage.Bucket, env domain.Environment, g *versionGroup,
) domain.RegistryRecord {
	size := g.primary.Size
	latest := g.latest

	uploader := g.primary.Owner
	if uploader == "" {
		uploader = scanUploader
	}

	rec := domain.RegistryRecord{
		ModelName:       g.path.ModelName,
		ModelVersion:    g.path.Version,
		Environment:     env,
		StorageLocation: bucket.Name(),
		FileSizeBytes:   &size,
		UploadTimestamp: &latest,
		Uploader:        &uploader,
		RegisteredAt:    s.now().UTC(),
	}

	if g.sidecar != nil {
		raw, err := bucket.Get(ctx, g.sidecar.Key)
		switch {
		case err != nil:
			s.logger.Printf("no metadata for %s: %s", g.path.Key(), err)
		case !json.Valid(raw):
			s.logger.Printf("metadata for %s is not valid JSON, ignored", g.path.Key())
		default:
			metadata := string(raw)
			rec.Metadata = &metadata
		}
	}

	return rec
}
