package db

import "context"

// SchemaInterface manages the registry database schema.
type SchemaInterface interface {
	// Upgrade applies schema versions newer than the deployed one.
	Upgrade(ctx context.Context) error

	// Version returns the deployed schema version; 0 when the database
	// has never been provisioned.
	Version(ctx context.Context) (int, error)
}
