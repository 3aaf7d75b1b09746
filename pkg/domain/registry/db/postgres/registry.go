package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/soufianesys/mlsys/pkg/conn/db/postgres/pool"
	"github.com/soufianesys/mlsys/pkg/domain"
	kerr "github.com/soufianesys/mlsys/pkg/domain/errors"
	kdbreg "github.com/soufianesys/mlsys/pkg/domain/registry/db"
)

const (
	// HistoryTable is the per-dataset append-only scan history.
	HistoryTable = "model_registry"

	// CatalogDataset/CatalogTable hold the shared current-state catalog
	// written by single-object registration.
	CatalogDataset = "ml_registry"
	CatalogTable   = "models"
)

type pgRegistry struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdbreg.RegistryInterface {
	return &pgRegistry{pool: pool}
}

func (r *pgRegistry) Insert(
	ctx context.Context, dataset string, rec domain.RegistryRecord,
) (domain.RegistryRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.RegistryRecord{}, fmt.Errorf("%w: %w", kerr.ErrRegistryWrite, err)
	}
	defer conn.Release()

	rec.RecordId = uuid.NewString()
	table := pgx.Identifier{dataset, HistoryTable}.Sanitize()

	if _, err := conn.Exec(
		ctx,
		`
		insert into `+table+` (
			"record_id", "model_name", "model_version", "environment",
			"storage_location", "file_size_bytes", "upload_timestamp",
			"uploader", "registered_at", "metadata"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
		rec.RecordId, rec.ModelName, rec.ModelVersion, string(rec.Environment),
		rec.StorageLocation,
		nullableInt8(rec.FileSizeBytes),
		nullableTimestamptz(rec.UploadTimestamp),
		nullableText(rec.Uploader),
		rec.RegisteredAt,
		nullableText(rec.Metadata),
	); err != nil {
		return domain.RegistryRecord{}, fmt.Errorf(
			"%w: insert into %s: %w", kerr.ErrRegistryWrite, table, err,
		)
	}

	return rec, nil
}

func (r *pgRegistry) Upsert(
	ctx context.Context, rec domain.RegistryRecord,
) (domain.RegistryRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.RegistryRecord{}, fmt.Errorf("%w: %w", kerr.ErrRegistryWrite, err)
	}
	defer conn.Release()

	table := pgx.Identifier{CatalogDataset, CatalogTable}.Sanitize()

	var recordId string
	if err := conn.QueryRow(
		ctx,
		`
		insert into `+table+` (
			"record_id", "model_name", "model_version", "environment",
			"storage_location", "file_size_bytes", "upload_timestamp",
			"uploader", "registered_at", "metadata"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		on conflict ("model_name", "model_version", "environment") do update set
			"storage_location" = excluded."storage_location",
			"file_size_bytes" = excluded."file_size_bytes",
			"upload_timestamp" = excluded."upload_timestamp",
			"uploader" = excluded."uploader",
			"registered_at" = excluded."registered_at",
			"metadata" = excluded."metadata"
		returning "record_id"
		`,
		uuid.NewString(), rec.ModelName, rec.ModelVersion, string(rec.Environment),
		rec.StorageLocation,
		nullableInt8(rec.FileSizeBytes),
		nullableTimestamptz(rec.UploadTimestamp),
		nullableText(rec.Uploader),
		rec.RegisteredAt,
		nullableText(rec.Metadata),
	).Scan(&recordId); err != nil {
		return domain.RegistryRecord{}, fmt.Errorf(
			"%w: upsert into %s: %w", kerr.ErrRegistryWrite, table, err,
		)
	}

	rec.RecordId = recordId
	return rec, nil
}

func nullableInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{Status: pgtype.Null}
	}
	return pgtype.Int8{Int: *v, Status: pgtype.Present}
}

func nullableText(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: *v, Status: pgtype.Present}
}

func nullableTimestamptz(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: *v, Status: pgtype.Present}
}
