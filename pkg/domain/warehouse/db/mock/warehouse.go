package mock

import (
	"context"

	"github.com/soufianesys/mlsys/pkg/domain"
	kdbwh "github.com/soufianesys/mlsys/pkg/domain/warehouse/db"
)

type WarehouseInterface struct {
	Impl struct {
		GetTable func(context.Context, domain.TableRef) (domain.Table, error)
		Append   func(context.Context, domain.TableRef, domain.Table) (int, error)
	}
	Calls struct {
		GetTable []domain.TableRef
		Append   []struct {
			Table domain.TableRef
			Data  domain.Table
		}
	}
}

func New() *WarehouseInterface {
	return &WarehouseInterface{}
}

var _ kdbwh.WarehouseInterface = &WarehouseInterface{}

func (m *WarehouseInterface) GetTable(
	ctx context.Context, table domain.TableRef,
) (domain.Table, error) {
	m.Calls.GetTable = append(m.Calls.GetTable, table)
	if m.Impl.GetTable != nil {
		return m.Impl.GetTable(ctx, table)
	}
	panic("warehouse mock: GetTable is not set")
}

func (m *WarehouseInterface) Append(
	ctx context.Context, table domain.TableRef, data domain.Table,
) (int, error) {
	m.Calls.Append = append(m.Calls.Append, struct {
		Table domain.TableRef
		Data  domain.Table
	}{Table: table, Data: data})
	if m.Impl.Append != nil {
		return m.Impl.Append(ctx, table, data)
	}
	return data.Len(), nil
}
