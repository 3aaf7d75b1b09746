package mock

import (
	"context"

	"github.com/soufianesys/mlsys/pkg/domain"
	kdbreg "github.com/soufianesys/mlsys/pkg/domain/registry/db"
)

type RegistryInterface struct {
	Impl struct {
		Insert func(context.Context, string, domain.RegistryRecord) (domain.RegistryRecord, error)
		Upsert func(context.Context, domain.RegistryRecord) (domain.RegistryRecord, error)
	}
	Calls struct {
		Insert []struct {
			Dataset string
			Record  domain.RegistryRecord
		}
		Upsert []domain.RegistryRecord
	}
}

func New() *RegistryInterface {
	return &RegistryInterface{}
}

var _ kdbreg.RegistryInterface = &RegistryInterface{}

func (m *RegistryInterface) Insert(
	ctx context.Context, dataset string, rec domain.RegistryRecord,
) (domain.RegistryRecord, error) {
	m.Calls.Insert = append(m.Calls.Insert, struct {
		Dataset string
		Record  domain.RegistryRecord
	}{Dataset: dataset, Record: rec})
	if m.Impl.Insert != nil {
		return m.Impl.Insert(ctx, dataset, rec)
	}
	rec.RecordId = "mock-record"
	return rec, nil
}

func (m *RegistryInterface) Upsert(
	ctx context.Context, rec domain.RegistryRecord,
) (domain.RegistryRecord, error) {
	m.Calls.Upsert = append(m.Calls.Upsert, rec)
	if m.Impl.Upsert != nil {
		return m.Impl.Upsert(ctx, rec)
	}
	rec.RecordId = "mock-record"
	return rec, nil
}
