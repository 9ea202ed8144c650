package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sermac/ledger/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetLotForUpdate(ctx context.Context, code string) (Lot, error)
	UpsertLot(ctx context.Context, lot Lot) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetByCode reads one lot outside any transaction.
func (r *Repository) GetByCode(ctx context.Context, code string) (Lot, error) {
	return scanLot(r.pool.QueryRow(ctx, selectLot+` WHERE codigo=$1`, code))
}

// List returns every lot ordered by code.
func (r *Repository) List(ctx context.Context) ([]Lot, error) {
	rows, err := r.pool.Query(ctx, selectLot+` ORDER BY codigo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

const selectLot = `SELECT codigo, producto, unidades, kilos, COALESCE(fecha_mas_antigua,''), COALESCE(fecha_mas_nueva,'') FROM inventario`

func scanLot(row pgx.Row) (Lot, error) {
	var lot Lot
	err := row.Scan(&lot.Code, &lot.ProductName, &lot.Units, &lot.Kg, &lot.OldestDate, &lot.NewestDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lot{}, ErrNotFound
		}
		return Lot{}, err
	}
	return lot, nil
}

// GetLotForUpdate locks the lot row for the rest of the transaction so a
// concurrent movement on the same product cannot interleave.
func (r *txRepository) GetLotForUpdate(ctx context.Context, code string) (Lot, error) {
	return scanLot(r.tx.QueryRow(ctx, selectLot+` WHERE codigo=$1 FOR UPDATE`, code))
}

func (r *txRepository) UpsertLot(ctx context.Context, lot Lot) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventario (codigo, producto, unidades, kilos, fecha_mas_antigua, fecha_mas_nueva)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (codigo) DO UPDATE SET producto=EXCLUDED.producto, unidades=EXCLUDED.unidades, kilos=EXCLUDED.kilos,
fecha_mas_antigua=EXCLUDED.fecha_mas_antigua, fecha_mas_nueva=EXCLUDED.fecha_mas_nueva`,
		lot.Code, lot.ProductName, lot.Units, lot.Kg, nullStr(lot.OldestDate), nullStr(lot.NewestDate))
	return err
}

func nullStr(value string) any {
	if value == "" {
		return nil
	}
	return value
}
