package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	kpool "github.com/soufianesys/mlsys/pkg/conn/db/postgres/pool"
	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
	kdbwh "github.com/soufianesys/mlsys/pkg/domain/warehouse/db"
)

type pgWarehouse struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdbwh.WarehouseInterface {
	return &pgWarehouse{pool: pool}
}

func (w *pgWarehouse) GetTable(
	ctx context.Context, table domain.TableRef,
) (domain.Table, error) {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %w", kerr.ErrDataAccess, err)
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx, `select * from `+pgx.Identifier{table.Dataset, table.Name}.Sanitize(),
	)
	if err != nil {
		return domain.Table{}, wrapTableError("read", table, err)
	}
	defer rows.Close()

	out := domain.Table{}
	for _, fd := range rows.FieldDescriptions() {
		out.Columns = append(out.Columns, string(fd.Name))
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.Table{}, wrapTableError("read", table, err)
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, wrapTableError("read", table, err)
	}

	return out, nil
}

func (w *pgWarehouse) Append(
	ctx context.Context, table domain.TableRef, data domain.Table,
) (int, error) {
	if data.Len() == 0 {
		return 0, nil
	}

	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", kerr.ErrDataAccess, err)
	}
	defer conn.Release()

	n, err := conn.Conn().CopyFrom(
		ctx,
		pgx.Identifier{table.Dataset, table.Name},
		data.Columns,
		pgx.CopyFromRows(data.Rows),
	)
	if err != nil {
		return 0, wrapTableError("append to", table, err)
	}

	return int(n), nil
}

// wrapTableError keys every failure as ErrDataAccess; a missing table or
// dataset additionally unwraps to ErrMissing.
func wrapTableError(op string, table domain.TableRef, err error) error {
	if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
		switch pgerr.Code {
		case pgerrcode.UndefinedTable, pgerrcode.InvalidSchemaName:
			return fmt.Errorf(
				"%w: %s %s: %w: %w", kerr.ErrDataAccess, op, table, kerr.ErrMissing, err,
			)
		}
	}
	return fmt.Errorf("%w: %s %s: %w", kerr.ErrDataAccess, op, table, err)
}
