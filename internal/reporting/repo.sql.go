package reporting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads report projections straight from the store. All queries
// are read-only and run outside any transactional scope.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectStatement = `
SELECT v.numero_guia,
       v.codigo_producto,
       COALESCE(v.descripcion, ''),
       COALESCE(v.bandejas, 0),
       COALESCE(v.kilos_neto, 0),
       COALESCE(v.fecha_venta, ''),
       p.precio
FROM ventas v
LEFT JOIN productos p ON p.codigo = v.codigo_producto
WHERE v.rut = $1 AND v.pagado_con_credito
ORDER BY v.fecha_venta, v.numero_guia, v.codigo_producto`

// CustomerStatement assembles the credit statement for one customer.
func (r *Repository) CustomerStatement(ctx context.Context, rut string) (CustomerStatement, error) {
	var statement CustomerStatement
	statement.RUT = rut

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(nombre, ''), COALESCE(deuda, 0) FROM clientes WHERE rut = $1`, rut).
		Scan(&statement.Name, &statement.Debt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CustomerStatement{}, fmt.Errorf("%w: customer %s", ErrNotFound, rut)
	}
	if err != nil {
		return CustomerStatement{}, fmt.Errorf("reporting: customer %s: %w", rut, err)
	}

	rows, err := r.pool.Query(ctx, selectStatement, rut)
	if err != nil {
		return CustomerStatement{}, fmt.Errorf("reporting: statement %s: %w", rut, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line SaleLineView
		if err := rows.Scan(&line.GuideNumber, &line.ProductCode, &line.Description,
			&line.Units, &line.NetKg, &line.SaleDate, &line.UnitPrice); err != nil {
			return CustomerStatement{}, fmt.Errorf("reporting: scan statement row: %w", err)
		}
		if line.UnitPrice != nil {
			total := line.NetKg * *line.UnitPrice
			line.Total = &total
		}
		statement.Lines = append(statement.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return CustomerStatement{}, fmt.Errorf("reporting: statement rows: %w", err)
	}
	return statement, nil
}

const selectLot = `
SELECT codigo, producto, unidades, kilos,
       COALESCE(fecha_mas_antigua, ''), COALESCE(fecha_mas_nueva, '')
FROM inventario`

// InventoryByCode projects one lot.
func (r *Repository) InventoryByCode(ctx context.Context, code string) (LotView, error) {
	var lot LotView
	err := r.pool.QueryRow(ctx, selectLot+` WHERE codigo = $1`, code).
		Scan(&lot.Code, &lot.ProductName, &lot.Units, &lot.Kg, &lot.OldestDate, &lot.NewestDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return LotView{}, fmt.Errorf("%w: lot %s", ErrNotFound, code)
	}
	if err != nil {
		return LotView{}, fmt.Errorf("reporting: lot %s: %w", code, err)
	}
	return lot, nil
}

// Inventory lists every lot ordered by product code.
func (r *Repository) Inventory(ctx context.Context) ([]LotView, error) {
	rows, err := r.pool.Query(ctx, selectLot+` ORDER BY codigo`)
	if err != nil {
		return nil, fmt.Errorf("reporting: list inventory: %w", err)
	}
	defer rows.Close()

	var lots []LotView
	for rows.Next() {
		var lot LotView
		if err := rows.Scan(&lot.Code, &lot.ProductName, &lot.Units, &lot.Kg,
			&lot.OldestDate, &lot.NewestDate); err != nil {
			return nil, fmt.Errorf("reporting: scan lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting: inventory rows: %w", err)
	}
	return lots, nil
}
