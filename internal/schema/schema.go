// Package schema owns the ledger's DDL: idempotent additive bootstrap on
// every start, and the destructive full reset invoked from the admin surface.
package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Manager applies schema bootstrap and reset against the store.
type Manager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(pool *pgxpool.Pool, logger *slog.Logger) *Manager {
	return &Manager{pool: pool, logger: logger}
}

// createStatements hold the base table definitions. Every statement is safe
// to re-run: tables guard with IF NOT EXISTS and seeds with ON CONFLICT.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS clientes (
		rut TEXT PRIMARY KEY,
		nombre TEXT,
		direccion TEXT,
		giro TEXT,
		deuda DOUBLE PRECISION DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS productos (
		codigo TEXT PRIMARY KEY,
		nombre TEXT,
		precio DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS inventario (
		codigo TEXT PRIMARY KEY,
		producto TEXT NOT NULL,
		unidades BIGINT NOT NULL,
		kilos DOUBLE PRECISION NOT NULL,
		fecha_mas_antigua TEXT,
		fecha_mas_nueva TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS proveedores (
		id BIGSERIAL PRIMARY KEY,
		nombre TEXT NOT NULL,
		vendedor TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ventas (
		numero_guia BIGINT,
		codigo_producto TEXT,
		descripcion TEXT,
		bandejas BIGINT,
		kilos_neto DOUBLE PRECISION,
		fecha_venta TEXT,
		pagado_con_credito BOOLEAN DEFAULT FALSE,
		rut TEXT,
		PRIMARY KEY (numero_guia, codigo_producto),
		FOREIGN KEY (codigo_producto) REFERENCES productos (codigo),
		FOREIGN KEY (rut) REFERENCES clientes (rut)
	)`,
	`CREATE TABLE IF NOT EXISTS configuracion (
		clave TEXT PRIMARY KEY,
		valor TEXT NOT NULL
	)`,
}

// alterStatements add columns introduced after the base tables shipped.
// Additive only: no column is ever dropped or retyped here.
var alterStatements = []string{
	`ALTER TABLE clientes ADD COLUMN IF NOT EXISTS deuda DOUBLE PRECISION DEFAULT 0`,
	`ALTER TABLE productos ADD COLUMN IF NOT EXISTS precio DOUBLE PRECISION`,
	`ALTER TABLE ventas ADD COLUMN IF NOT EXISTS pagado_con_credito BOOLEAN DEFAULT FALSE`,
	`ALTER TABLE ventas ADD COLUMN IF NOT EXISTS rut TEXT`,
}

var seedStatements = []string{
	`INSERT INTO configuracion (clave, valor) VALUES ('UltimoNumeroGuia', '0') ON CONFLICT (clave) DO NOTHING`,
	`INSERT INTO configuracion (clave, valor) VALUES ('UltimoNumeroCompra', '0') ON CONFLICT (clave) DO NOTHING`,
}

// Ensure creates all required tables and columns. Safe to call on every
// process start and from concurrent processes. Any DDL error is fatal to
// the caller: a partial schema must never be tolerated silently.
func (m *Manager) Ensure(ctx context.Context) error {
	for _, groups := range [][]string{createStatements, alterStatements, seedStatements} {
		for _, stmt := range groups {
			if _, err := m.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("schema: ensure: %w", err)
			}
		}
	}
	return nil
}

// dropStatements tear down the whole ledger. Children before parents so the
// foreign keys on ventas do not block the drop.
var dropStatements = []string{
	`DROP TABLE IF EXISTS ventas`,
	`DROP TABLE IF EXISTS inventario`,
	`DROP TABLE IF EXISTS configuracion`,
	`DROP TABLE IF EXISTS proveedores`,
	`DROP TABLE IF EXISTS productos`,
	`DROP TABLE IF EXISTS clientes`,
}

// Reset drops every ledger table and recreates the schema from scratch.
// Destructive and irreversible; confirmation is the caller's responsibility.
func (m *Manager) Reset(ctx context.Context) error {
	if m.logger != nil {
		m.logger.Warn("resetting ledger schema, all data will be lost")
	}
	for _, stmt := range dropStatements {
		if _, err := m.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema: reset: %w", err)
		}
	}
	return m.Ensure(ctx)
}
