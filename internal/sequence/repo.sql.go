package sequence

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLStore persists counters in the configuracion table, where valor is TEXT
// for historical reasons and cast on the way in and out.
type SQLStore struct {
	pool *pgxpool.Pool
}

// NewSQLStore constructs SQLStore.
func NewSQLStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{pool: pool}
}

func (s *SQLStore) Get(ctx context.Context, key string) (int64, error) {
	var raw string
	err := s.pool.QueryRow(ctx, `SELECT valor FROM configuracion WHERE clave=$1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUnknownCounter
		}
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// Increment is a single UPDATE so the read-modify-write cannot race with a
// concurrent increment.
func (s *SQLStore) Increment(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx,
		`UPDATE configuracion SET valor = ((valor)::bigint + 1)::text WHERE clave=$1 RETURNING (valor)::bigint`,
		key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUnknownCounter
		}
		return 0, err
	}
	return value, nil
}

func (s *SQLStore) Reset(ctx context.Context, key string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE configuracion SET valor='0' WHERE clave=$1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownCounter
	}
	return nil
}
