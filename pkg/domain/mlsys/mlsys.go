package mlsys

import (
	"context"

	"github.com/soufianesys/mlsys/pkg/configs/server"
	kpool "github.com/soufianesys/mlsys/pkg/conn/db/postgres/pool"
	"github.com/soufianesys/mlsys/pkg/domain"
	"github.com/soufianesys/mlsys/pkg/domain/predict"
	kdbreg "github.com/soufianesys/mlsys/pkg/domain/registry/db"
	kpgreg "github.com/soufianesys/mlsys/pkg/domain/registry/db/postgres"
	"github.com/soufianesys/mlsys/pkg/domain/scanner"
	kdbschema "github.com/soufianesys/mlsys/pkg/domain/schema/db"
	kpgschema "github.com/soufianesys/mlsys/pkg/domain/schema/db/postgres"
	kdbwh "github.com/soufianesys/mlsys/pkg/domain/warehouse/db"
	kpgwh "github.com/soufianesys/mlsys/pkg/domain/warehouse/db/postgres"
	"github.com/soufianesys/mlsys/pkg/storage"
	"github.com/soufianesys/mlsys/pkg/storage/local"
	"github.com/soufianesys/mlsys/pkg/storage/oss"
)

// Mlsys bundles the domain interfaces a process needs, built once from
// the server configuration.
type Mlsys interface {
	Registry() kdbreg.RegistryInterface
	Warehouse() kdbwh.WarehouseInterface
	Schema() kdbschema.SchemaInterface

	// Scanner is ready to scan every environment in the configuration.
	Scanner(options ...scanner.Option) *scanner.Scanner

	// Runner is ready to run predictions in every environment in the
	// configuration.
	Runner(options ...predict.Option) *predict.Runner

	Buckets() map[domain.Environment]storage.Bucket

	Ping(ctx context.Context) error
	Close()
}

type mlsys struct {
	pool kpool.Pool

	registry  kdbreg.RegistryInterface
	warehouse kdbwh.WarehouseInterface
	schema    kdbschema.SchemaInterface

	targets map[domain.Environment]scanner.Target
	buckets map[domain.Environment]storage.Bucket
}

type Option func(*_options)

type _options struct {
	schemaRepository string
}

func WithSchemaRepository(repository string) Option {
	return func(o *_options) {
		o.schemaRepository = repository
	}
}

func Default(
	ctx context.Context,
	config *server.ServerConfig,
	options ...Option,
) (Mlsys, error) {
	pool, err := kpool.Connect(ctx, config.Database)
	if err != nil {
		return nil, err
	}
	return New(pool, config, options...)
}

func New(
	pool kpool.Pool,
	config *server.ServerConfig,
	options ...Option,
) (Mlsys, error) {
	opt := &_options{}
	for _, o := range options {
		o(opt)
	}

	targets := map[domain.Environment]scanner.Target{}
	buckets := map[domain.Environment]storage.Bucket{}
	for env, e := range config.Environments {
		bucket, err := openBucket(e)
		if err != nil {
			return nil, err
		}
		targets[env] = scanner.Target{Bucket: bucket, Dataset: e.Dataset}
		buckets[env] = bucket
	}

	m := &mlsys{
		pool:      pool,
		registry:  kpgreg.New(pool),
		warehouse: kpgwh.New(pool),
		targets:   targets,
		buckets:   buckets,
	}
	if opt.schemaRepository != "" {
		m.schema = kpgschema.New(pool, opt.schemaRepository)
	}
	return m, nil
}

// openBucket builds each environment's bucket from its storage driver.
// For the local driver the configured bucket is a directory path; for
// oss it is the bucket name.
func openBucket(e server.EnvironmentConfig) (storage.Bucket, error) {
	switch e.Storage.Driver {
	case server.StorageDriverOSS:
		return oss.New(e.Bucket, oss.Config{
			Endpoint:        e.Storage.Endpoint,
			AccessKeyId:     e.Storage.AccessKeyId,
			AccessKeySecret: e.Storage.AccessKeySecret,
			SecurityToken:   e.Storage.SecurityToken,
		})
	default:
		return local.New(e.Bucket, e.Bucket)
	}
}

func (m *mlsys) Registry() kdbreg.RegistryInterface {
	return m.registry
}

func (m *mlsys) Warehouse() kdbwh.WarehouseInterface {
	return m.warehouse
}

func (m *mlsys) Schema() kdbschema.SchemaInterface {
	return m.schema
}

func (m *mlsys) Scanner(options ...scanner.Option) *scanner.Scanner {
	return scanner.New(m.registry, m.targets, options...)
}

func (m *mlsys) Runner(options ...predict.Option) *predict.Runner {
	return predict.New(m.warehouse, m.buckets, options...)
}

func (m *mlsys) Buckets() map[domain.Environment]storage.Bucket {
	return m.buckets
}

func (m *mlsys) Ping(ctx context.Context) error {
	return m.pool.Ping(ctx)
}

func (m *mlsys) Close() {
	m.pool.Close()
}
