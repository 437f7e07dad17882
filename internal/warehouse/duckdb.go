// Package warehouse implements the analytical store on DuckDB: append-only
// bronze loads and full-replace silver/gold rebuilds.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver

	"lakeflow/internal/domain"
)

// Layer schema names.
const (
	SchemaBronze = "bronze"
	SchemaSilver = "silver"
	SchemaGold   = "gold"
)

// Open opens (or creates) a DuckDB database file. An empty path opens an
// in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb %q: %w", path, err)
	}
	return db, nil
}

var _ domain.Warehouse = (*DuckWarehouse)(nil)

// DuckWarehouse implements domain.Warehouse on a DuckDB handle.
type DuckWarehouse struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a DuckWarehouse.
func New(db *sql.DB, logger *slog.Logger) *DuckWarehouse {
	return &DuckWarehouse{db: db, logger: logger}
}

// EnsureSchemas creates the bronze, silver, and gold schemas if missing.
func (w *DuckWarehouse) EnsureSchemas(ctx context.Context) error {
	for _, schema := range []string{SchemaBronze, SchemaSilver, SchemaGold} {
		if _, err := w.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+QuoteIdent(schema)); err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	return nil
}

// Append creates the table from the batch's inferred schema on first write
// and appends all rows inside one transaction. An empty batch is a no-op.
func (w *DuckWarehouse) Append(ctx context.Context, table string, batch *domain.Batch) error {
	if batch.NumRows() == 0 {
		w.logger.Debug("empty batch, append skipped", "table", table)
		return nil
	}

	if _, err := w.db.ExecContext(ctx, createTableSQL(table, batch.Columns)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append to %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, batch.Columns))
	if err != nil {
		return fmt.Errorf("prepare append to %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range batch.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("append row %d to %s: %w", i, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append to %s: %w", table, err)
	}

	w.logger.Info("batch appended", "table", table, "rows", batch.NumRows())
	return nil
}

// ReplaceTable rebuilds a table's full contents from a query.
func (w *DuckWarehouse) ReplaceTable(ctx context.Context, table, query string) error {
	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS %s", QuoteQualified(table), query)
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("replace table %s: %w", table, err)
	}
	return nil
}

// createTableSQL builds the CREATE TABLE IF NOT EXISTS statement for a batch
// schema. Column types come from the batch's best-effort inference.
func createTableSQL(table string, cols []domain.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = QuoteIdent(c.Name) + " " + string(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		QuoteQualified(table), strings.Join(defs, ", "))
}

// insertSQL builds the parameterised INSERT statement for a batch schema.
// Columns are named explicitly so appends survive later added columns.
func insertSQL(table string, cols []domain.Column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = QuoteIdent(c.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteQualified(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

// QuoteIdent quotes a single SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes a possibly schema-qualified name like "bronze.sales".
func QuoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}
