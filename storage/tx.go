package storage

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// queryer is the subset of pgx command methods the repositories need.
type queryer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// tx is the subset of pgx.Tx the unit of work needs. Extracting it keeps the
// unit of work testable without a running server; pgx.Tx satisfies it as is.
type tx interface {
	queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
