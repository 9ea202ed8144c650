package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates a missing catalog record.
	ErrNotFound = errors.New("catalog: record not found")
	// ErrAlreadyExists indicates a duplicate key on create.
	ErrAlreadyExists = errors.New("catalog: record already exists")
)

// Repository defines catalog persistence. All writes are single-row; no
// cross-entity invariant lives at this layer.
type Repository interface {
	GetCustomerByRUT(ctx context.Context, rut string) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	CreateCustomer(ctx context.Context, customer Customer) error
	AdjustCustomerDebt(ctx context.Context, rut string, amount float64) error

	GetProductByCode(ctx context.Context, code string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpsertProduct(ctx context.Context, product Product) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, supplier Supplier) (int64, error)
	ListSupplierNames(ctx context.Context) ([]string, error)
	ListSalesmen(ctx context.Context) ([]string, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed catalog Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetCustomerByRUT(ctx context.Context, rut string) (Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx,
		`SELECT rut, COALESCE(nombre,''), COALESCE(direccion,''), COALESCE(giro,''), COALESCE(deuda,0)
		 FROM clientes WHERE rut = $1`, rut).
		Scan(&c.RUT, &c.Name, &c.Address, &c.BusinessLine, &c.Debt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT rut, COALESCE(nombre,''), COALESCE(direccion,''), COALESCE(giro,''), COALESCE(deuda,0) FROM clientes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.RUT, &c.Name, &c.Address, &c.BusinessLine, &c.Debt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *repository) CreateCustomer(ctx context.Context, customer Customer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO clientes (rut, nombre, direccion, giro, deuda) VALUES ($1, $2, $3, $4, $5)`,
		customer.RUT, customer.Name, customer.Address, customer.BusinessLine, customer.Debt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// AdjustCustomerDebt applies a signed delta in one statement. Manual
// adjustments may drive debt negative; that is accepted.
func (r *repository) AdjustCustomerDebt(ctx context.Context, rut string, amount float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clientes SET deuda = COALESCE(deuda,0) + $1 WHERE rut = $2`, amount, rut)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GetProductByCode(ctx context.Context, code string) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx,
		`SELECT codigo, COALESCE(nombre,''), precio FROM productos WHERE codigo = $1`, code).
		Scan(&p.Code, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT codigo, COALESCE(nombre,''), precio FROM productos ORDER BY codigo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Code, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) UpsertProduct(ctx context.Context, product Product) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO productos (codigo, nombre, precio) VALUES ($1, $2, $3)
		 ON CONFLICT (codigo) DO UPDATE SET nombre = EXCLUDED.nombre, precio = EXCLUDED.precio`,
		product.Code, product.Name, product.Price)
	return err
}

func (r *repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, vendedor FROM proveedores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Salesman); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *repository) CreateSupplier(ctx context.Context, supplier Supplier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO proveedores (nombre, vendedor) VALUES ($1, $2) RETURNING id`,
		supplier.Name, supplier.Salesman).Scan(&id)
	return id, err
}

func (r *repository) ListSupplierNames(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, `SELECT DISTINCT nombre FROM proveedores ORDER BY nombre`)
}

func (r *repository) ListSalesmen(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, `SELECT DISTINCT vendedor FROM proveedores ORDER BY vendedor`)
}

func (r *repository) listDistinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
