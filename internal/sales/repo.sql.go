package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sermac/ledger/internal/platform/db"
)

// LotRow is the inventory state the coordinator sees under lock.
type LotRow struct {
	Code        string
	ProductName string
	Units       int64
	Kg          float64
}

// ProductRow is the catalog state priced at commit time.
type ProductRow struct {
	Code  string
	Name  string
	Price *float64
}

// TxRepository exposes every store operation FinalizeSale runs. All of them
// execute against one shared transactional scope; none opens its own.
type TxRepository interface {
	GetProduct(ctx context.Context, code string) (ProductRow, error)
	GetLotForUpdate(ctx context.Context, code string) (LotRow, error)
	DecrementLot(ctx context.Context, code string, units int64, kg float64) error
	InsertSaleRecord(ctx context.Context, record SaleRecord) error
	CustomerExists(ctx context.Context, rut string) (bool, error)
	AddCustomerDebt(ctx context.Context, rut string, amount float64) error
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction. Row
// locks taken through GetLotForUpdate keep concurrent finalizations on the
// same product strictly serialized.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("sales repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// ListByGuideNumber reads back the rows of one finalized sale.
func (r *Repository) ListByGuideNumber(ctx context.Context, guideNumber int64) ([]SaleRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT numero_guia, codigo_producto, COALESCE(descripcion,''), bandejas, kilos_neto,
		        COALESCE(fecha_venta,''), pagado_con_credito, COALESCE(rut,'')
		 FROM ventas WHERE numero_guia=$1 ORDER BY codigo_producto`, guideNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SaleRecord
	for rows.Next() {
		var rec SaleRecord
		if err := rows.Scan(&rec.GuideNumber, &rec.ProductCode, &rec.Description, &rec.Units,
			&rec.NetKg, &rec.SaleDate, &rec.PaidOnCredit, &rec.CustomerRUT); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *txRepository) GetProduct(ctx context.Context, code string) (ProductRow, error) {
	var p ProductRow
	err := r.tx.QueryRow(ctx,
		`SELECT codigo, COALESCE(nombre,''), precio FROM productos WHERE codigo=$1`, code).
		Scan(&p.Code, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductRow{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
		}
		return ProductRow{}, err
	}
	return p, nil
}

func (r *txRepository) GetLotForUpdate(ctx context.Context, code string) (LotRow, error) {
	var lot LotRow
	err := r.tx.QueryRow(ctx,
		`SELECT codigo, producto, unidades, kilos FROM inventario WHERE codigo=$1 FOR UPDATE`, code).
		Scan(&lot.Code, &lot.ProductName, &lot.Units, &lot.Kg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LotRow{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
		}
		return LotRow{}, err
	}
	return lot, nil
}

func (r *txRepository) DecrementLot(ctx context.Context, code string, units int64, kg float64) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE inventario SET unidades = unidades - $1, kilos = kilos - $2 WHERE codigo=$3`,
		units, kg, code)
	return err
}

func (r *txRepository) InsertSaleRecord(ctx context.Context, record SaleRecord) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO ventas (numero_guia, codigo_producto, descripcion, bandejas, kilos_neto, fecha_venta, pagado_con_credito, rut)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		record.GuideNumber, record.ProductCode, record.Description, record.Units,
		record.NetKg, record.SaleDate, record.PaidOnCredit, nullStr(record.CustomerRUT))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return fmt.Errorf("%w: guide %d product %s", ErrDuplicateLine, record.GuideNumber, record.ProductCode)
			case "23503":
				switch pgErr.ConstraintName {
				case "ventas_rut_fkey":
					return fmt.Errorf("%w: %s", ErrCustomerNotFound, record.CustomerRUT)
				default:
					return fmt.Errorf("%w: %s", ErrProductNotFound, record.ProductCode)
				}
			}
		}
		return err
	}
	return nil
}

func (r *txRepository) CustomerExists(ctx context.Context, rut string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clientes WHERE rut=$1)`, rut).Scan(&exists)
	return exists, err
}

// AddCustomerDebt is a single-statement increment: concurrent credit sales
// against the same customer cannot lose updates.
func (r *txRepository) AddCustomerDebt(ctx context.Context, rut string, amount float64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE clientes SET deuda = COALESCE(deuda,0) + $1 WHERE rut=$2`, amount, rut)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, rut)
	}
	return nil
}

func nullStr(value string) any {
	if value == "" {
		return nil
	}
	return value
}
