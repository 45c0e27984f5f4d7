package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the storage interfaces over a pgx connection pool
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing connection pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
