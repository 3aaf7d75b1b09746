package server

import (
	"errors"
	"fmt"

	"github.com/soufianesys/mlsys/pkg/domain"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("server: invalid configuration")

// Storage drivers selectable per environment.
const (
	StorageDriverLocal = "local"
	StorageDriverOSS   = "oss"
)

// StorageConfig selects and parameterizes the object-storage driver of
// one environment. The zero value means the local driver.
type StorageConfig struct {
	// Driver is "local" (the default) or "oss".
	Driver string

	// Endpoint, AccessKeyId, AccessKeySecret and SecurityToken locate
	// and authenticate the OSS service. Ignored by the local driver.
	Endpoint        string
	AccessKeyId     string
	AccessKeySecret string
	SecurityToken   string
}

func (s *StorageConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Driver          string `yaml:"driver"`
		Endpoint        string `yaml:"endpoint"`
		AccessKeyId     string `yaml:"accessKeyId"`
		AccessKeySecret string `yaml:"accessKeySecret"`
		SecurityToken   string `yaml:"securityToken"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch raw.Driver {
	case "", StorageDriverLocal:
		raw.Driver = StorageDriverLocal
	case StorageDriverOSS:
		if raw.Endpoint == "" {
			return fmt.Errorf("%w: oss storage needs an endpoint", ErrInvalidConfig)
		}
		if raw.AccessKeyId == "" || raw.AccessKeySecret == "" {
			return fmt.Errorf("%w: oss storage needs credentials", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver: %s", ErrInvalidConfig, raw.Driver)
	}

	s.Driver = raw.Driver
	s.Endpoint = raw.Endpoint
	s.AccessKeyId = raw.AccessKeyId
	s.AccessKeySecret = raw.AccessKeySecret
	s.SecurityToken = raw.SecurityToken
	return nil
}

// EnvironmentConfig describes one deployment environment: where its
// model bucket lives and which dataset its scan history is written to.
type EnvironmentConfig struct {
	// Bucket is the storage container holding model artifacts.
	// For the local driver this is a directory path; for oss, the
	// bucket name.
	Bucket string

	// Dataset is the registry dataset (database schema) for this
	// environment, e.g. "mlsys_dev".
	Dataset string

	// Storage selects the driver serving Bucket. Omitted means local.
	Storage StorageConfig
}

func (e *EnvironmentConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Bucket  string        `yaml:"bucket"`
		Dataset string        `yaml:"dataset"`
		Storage StorageConfig `yaml:"storage"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Bucket == "" {
		return fmt.Errorf("%w: environment bucket is empty", ErrInvalidConfig)
	}
	if raw.Dataset == "" {
		return fmt.Errorf("%w: environment dataset is empty", ErrInvalidConfig)
	}
	if raw.Storage.Driver == "" {
		raw.Storage.Driver = StorageDriverLocal
	}
	e.Bucket = raw.Bucket
	e.Dataset = raw.Dataset
	e.Storage = raw.Storage
	return nil
}

// ServerConfig is the process-wide configuration, resolved once at entry
// and passed by parameter. No component reads configuration anywhere
// else.
type ServerConfig struct {
	// ServerPort is the port the HTTP daemon listens on.
	ServerPort string

	// Database is the connection string of the registry database.
	Database string

	// Environments maps each known environment to its bucket & dataset.
	Environments map[domain.Environment]EnvironmentConfig
}

func (c *ServerConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Port         string                       `yaml:"port"`
		Database     string                       `yaml:"database"`
		Environments map[string]EnvironmentConfig `yaml:"environments"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Port == "" {
		raw.Port = "8080"
	}
	if raw.Database == "" {
		return fmt.Errorf("%w: database is empty", ErrInvalidConfig)
	}
	if len(raw.Environments) == 0 {
		return fmt.Errorf("%w: no environments", ErrInvalidConfig)
	}

	envs := map[domain.Environment]EnvironmentConfig{}
	for name, e := range raw.Environments {
		env, err := domain.ParseEnvironment(name)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
		}
		envs[env] = e
	}

	c.ServerPort = raw.Port
	c.Database = raw.Database
	c.Environments = envs
	return nil
}
