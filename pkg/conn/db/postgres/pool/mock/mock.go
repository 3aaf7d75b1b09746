// Package mock provides hand-written fakes of the pool interfaces, so
// postgres-backed stores can be tested without a live database.
//
// Set behaviour via Impl; inspect invocations via Calls. Bookkeeping
// methods (Release, Commit, Rollback, Close) only count when Impl is
// unset; query methods panic, so a test never passes on an unstubbed
// path.
package mock

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgx/v4"
	kpool "github.com/soufianesys/mlsys/pkg/conn/db/postgres/pool"
)

// Query records one statement sent through a fake.
type Query struct {
	Sql  string
	Args []interface{}
}

type Pool struct {
	Impl struct {
		Begin   func(context.Context) (kpool.Tx, error)
		Acquire func(context.Context) (kpool.Conn, error)
		Ping    func(context.Context) error
		Close   func()
	}
	Calls struct {
		Begin   int
		Acquire int
		Ping    int
		Close   int
	}
}

func NewPool() *Pool {
	return &Pool{}
}

var _ kpool.Pool = &Pool{}

func (m *Pool) Begin(ctx context.Context) (kpool.Tx, error) {
	m.Calls.Begin += 1
	if m.Impl.Begin != nil {
		return m.Impl.Begin(ctx)
	}
	panic("pool mock: Begin is not set")
}

func (m *Pool) Acquire(ctx context.Context) (kpool.Conn, error) {
	m.Calls.Acquire += 1
	if m.Impl.Acquire != nil {
		return m.Impl.Acquire(ctx)
	}
	panic("pool mock: Acquire is not set")
}

func (m *Pool) Ping(ctx context.Context) error {
	m.Calls.Ping += 1
	if m.Impl.Ping != nil {
		return m.Impl.Ping(ctx)
	}
	return nil
}

func (m *Pool) Close() {
	m.Calls.Close += 1
	if m.Impl.Close != nil {
		m.Impl.Close()
	}
}

type Conn struct {
	Impl struct {
		Exec     func(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
		Query    func(context.Context, string, ...interface{}) (pgx.Rows, error)
		QueryRow func(context.Context, string, ...interface{}) pgx.Row
		Begin    func(context.Context) (kpool.Tx, error)
		Ping     func(context.Context) error
		Conn     func() *pgx.Conn
	}
	Calls struct {
		Exec     []Query
		Query    []Query
		QueryRow []Query
		Begin    int
		Ping     int
		Release  int
	}
}

func NewConn() *Conn {
	return &Conn{}
}

var _ kpool.Conn = &Conn{}

func (m *Conn) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	m.Calls.Exec = append(m.Calls.Exec, Query{Sql: sql, Args: arguments})
	if m.Impl.Exec != nil {
		return m.Impl.Exec(ctx, sql, arguments...)
	}
	panic("conn mock: Exec is not set")
}

func (m *Conn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	m.Calls.Query = append(m.Calls.Query, Query{Sql: sql, Args: args})
	if m.Impl.Query != nil {
		return m.Impl.Query(ctx, sql, args...)
	}
	panic("conn mock: Query is not set")
}

func (m *Conn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	m.Calls.QueryRow = append(m.Calls.QueryRow, Query{Sql: sql, Args: args})
	if m.Impl.QueryRow != nil {
		return m.Impl.QueryRow(ctx, sql, args...)
	}
	panic("conn mock: QueryRow is not set")
}

func (m *Conn) Begin(ctx context.Context) (kpool.Tx, error) {
	m.Calls.Begin += 1
	if m.Impl.Begin != nil {
		return m.Impl.Begin(ctx)
	}
	panic("conn mock: Begin is not set")
}

func (m *Conn) Ping(ctx context.Context) error {
	m.Calls.Ping += 1
	if m.Impl.Ping != nil {
		return m.Impl.Ping(ctx)
	}
	return nil
}

func (m *Conn) Release() {
	m.Calls.Release += 1
}

func (m *Conn) Conn() *pgx.Conn {
	if m.Impl.Conn != nil {
		return m.Impl.Conn()
	}
	panic("conn mock: Conn is not set")
}

type Tx struct {
	Impl struct {
		Exec     func(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
		Query    func(context.Context, string, ...interface{}) (pgx.Rows, error)
		QueryRow func(context.Context, string, ...interface{}) pgx.Row
		Begin    func(context.Context) (kpool.Tx, error)
		Commit   func(context.Context) error
		Rollback func(context.Context) error
	}
	Calls struct {
		Exec     []Query
		Query    []Query
		QueryRow []Query
		Begin    int
		Commit   int
		Rollback int
	}
}

func NewTx() *Tx {
	return &Tx{}
}

var _ kpool.Tx = &Tx{}

func (m *Tx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	m.Calls.Exec = append(m.Calls.Exec, Query{Sql: sql, Args: arguments})
	if m.Impl.Exec != nil {
		return m.Impl.Exec(ctx, sql, arguments...)
	}
	panic("tx mock: Exec is not set")
}

func (m *Tx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	m.Calls.Query = append(m.Calls.Query, Query{Sql: sql, Args: args})
	if m.Impl.Query != nil {
		return m.Impl.Query(ctx, sql, args...)
	}
	panic("tx mock: Query is not set")
}

func (m *Tx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	m.Calls.QueryRow = append(m.Calls.QueryRow, Query{Sql: sql, Args: args})
	if m.Impl.QueryRow != nil {
		return m.Impl.QueryRow(ctx, sql, args...)
	}
	panic("tx mock: QueryRow is not set")
}

func (m *Tx) Begin(ctx context.Context) (kpool.Tx, error) {
	m.Calls.Begin += 1
	if m.Impl.Begin != nil {
		return m.Impl.Begin(ctx)
	}
	panic("tx mock: Begin is not set")
}

func (m *Tx) Commit(ctx context.Context) error {
	m.Calls.Commit += 1
	if m.Impl.Commit != nil {
		return m.Impl.Commit(ctx)
	}
	return nil
}

func (m *Tx) Rollback(ctx context.Context) error {
	m.Calls.Rollback += 1
	if m.Impl.Rollback != nil {
		return m.Impl.Rollback(ctx)
	}
	return nil
}

// Rows replays a fixed result set as pgx.Rows.
type Rows struct {
	Columns []string
	Page    [][]interface{}

	// Error is reported by Err after iteration.
	Error error

	Closed bool
	cursor int
}

var _ pgx.Rows = &Rows{}

func (r *Rows) Close() {
	r.Closed = true
}

func (r *Rows) Err() error {
	return r.Error
}

func (r *Rows) CommandTag() pgconn.CommandTag {
	return nil
}

func (r *Rows) FieldDescriptions() []pgproto3.FieldDescription {
	fds := make([]pgproto3.FieldDescription, len(r.Columns))
	for i, name := range r.Columns {
		fds[i] = pgproto3.FieldDescription{Name: []byte(name)}
	}
	return fds
}

func (r *Rows) Next() bool {
	if r.cursor < len(r.Page) {
		r.cursor += 1
		return true
	}
	return false
}

func (r *Rows) Scan(dest ...interface{}) error {
	panic("rows mock: Scan is not supported; use Values")
}

func (r *Rows) Values() ([]interface{}, error) {
	return r.Page[r.cursor-1], nil
}

func (r *Rows) RawValues() [][]byte {
	return nil
}

// Row scans a single result via Impl.
type Row struct {
	Impl func(dest ...interface{}) error
}

var _ pgx.Row = &Row{}

func (r *Row) Scan(dest ...interface{}) error {
	if r.Impl != nil {
		return r.Impl(dest...)
	}
	panic("row mock: Scan is not set")
}
