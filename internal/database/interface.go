package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXDB is an interface that both pgxpool.Pool and pgx.Tx implement.
// This allows repositories to work with either a connection pool or a
// transaction, which the services rely on for the row-locked
// read-check-write sequences and tests rely on for rollback isolation.
type PGXDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner can start a database transaction. Implemented by pgxpool.Pool
// and, via savepoints, by pgx.Tx.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB combines querying with transaction start. The services take this so
// they can run multi-statement sequences atomically against either a pool
// or an enclosing test transaction.
type DB interface {
	PGXDB
	TxBeginner
}

// Ensure types implement the interfaces at compile time.
var (
	_ PGXDB = (*pgxpool.Pool)(nil)
	_ PGXDB = (pgx.Tx)(nil)
	_ DB    = (*pgxpool.Pool)(nil)
	_ DB    = (pgx.Tx)(nil)
)
