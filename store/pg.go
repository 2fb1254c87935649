package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/rebalance/date"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pg stores prices in a PostgreSQL table, shared by every user of the database.
type Pg struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool to databaseURL and creates the prices table if needed.
func Connect(ctx context.Context, databaseURL string) (*Pg, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS prices (
			symbol TEXT             NOT NULL,
			day    DATE             NOT NULL,
			price  DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, day)
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating prices table: %w", err)
	}
	return &Pg{pool: pool}, nil
}

// Close releases the connections.
func (s *Pg) Close() { s.pool.Close() }

func (s *Pg) Get(ctx context.Context, symbol string, on date.Date) (float64, bool, error) {
	var v float64
	err := s.pool.QueryRow(ctx,
		`SELECT price FROM prices WHERE symbol = $1 AND day = $2`,
		symbol, on.Time()).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("getting price of %s on %v: %w", symbol, on, err)
	}
	return v, true, nil
}

func (s *Pg) Put(ctx context.Context, symbol string, on date.Date, value float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prices (symbol, day, price)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (symbol, day) DO UPDATE SET price = $3`,
		symbol, on.Time(), value)
	if err != nil {
		return fmt.Errorf("saving price of %s on %v: %w", symbol, on, err)
	}
	return nil
}
