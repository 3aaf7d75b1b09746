package db

import (
	"context"

	"github.com/soufianesys/mlsys/pkg/domain"
)

// WarehouseInterface reads and appends tabular data.
//
// Tables are assumed to pre-exist; Append never creates or truncates.
type WarehouseInterface interface {
	// GetTable reads every row of the table into memory.
	GetTable(ctx context.Context, table domain.TableRef) (domain.Table, error)

	// Append inserts all rows of data into the table and returns the
	// number of rows written. Pure insert: existing rows are untouched.
	Append(ctx context.Context, table domain.TableRef, data domain.Table) (int, error)
}
