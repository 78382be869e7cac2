package db

import (
	"context"
	"fmt"

	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool abstracts the pgx connection pool to make testing easier.
type Pool interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

// Connect initialises a PostgreSQL connection pool using the provided database URL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return pool, nil
}

// RunInTx executes fn inside a transaction, retrying on serialization
// failures. Multi-step mutations (view counts plus history, asset swaps)
// go through here so a crash never leaves half of the write applied.
func RunInTx(ctx context.Context, pool Pool, fn func(pgx.Tx) error) error {
	if err := crdbpgx.ExecuteTx(ctx, pool, pgx.TxOptions{}, fn); err != nil {
		return fmt.Errorf("run transaction: %w", err)
	}
	return nil
}
