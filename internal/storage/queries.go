package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type FuelPrice struct {
	Month     string
	Houston   sql.NullFloat64
	Texas     sql.NullFloat64
	National  sql.NullFloat64
	ImportID  string
	UpdatedAt time.Time
}

type ImportRun struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt time.Time
}

const listFuelPrices = `SELECT month, houston, texas, national, import_id, updated_at
FROM fuel_prices
ORDER BY month`

func (q *Queries) ListFuelPrices(ctx context.Context) ([]FuelPrice, error) {
	rows, err := q.db.QueryContext(ctx, listFuelPrices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FuelPrice
	for rows.Next() {
		var i FuelPrice
		if err := rows.Scan(&i.Month, &i.Houston, &i.Texas, &i.National, &i.ImportID, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteFuelPrices = `DELETE FROM fuel_prices`

func (q *Queries) DeleteFuelPrices(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteFuelPrices)
	return err
}

const insertFuelPrice = `INSERT INTO fuel_prices (month, houston, texas, national, import_id)
VALUES (?, ?, ?, ?, ?)`

type InsertFuelPriceParams struct {
	Month    string
	Houston  sql.NullFloat64
	Texas    sql.NullFloat64
	National sql.NullFloat64
	ImportID string
}

func (q *Queries) InsertFuelPrice(ctx context.Context, arg InsertFuelPriceParams) error {
	_, err := q.db.ExecContext(ctx, insertFuelPrice, arg.Month, arg.Houston, arg.Texas, arg.National, arg.ImportID)
	return err
}

const countFuelPrices = `SELECT COUNT(*) FROM fuel_prices`

func (q *Queries) CountFuelPrices(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countFuelPrices).Scan(&n)
	return n, err
}

const createImportRun = `INSERT INTO import_runs (id, source, row_count, imported_at)
VALUES (?, ?, ?, ?)`

type CreateImportRunParams struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt time.Time
}

func (q *Queries) CreateImportRun(ctx context.Context, arg CreateImportRunParams) error {
	_, err := q.db.ExecContext(ctx, createImportRun, arg.ID, arg.Source, arg.RowCount, arg.ImportedAt)
	return err
}

const getLatestImportRun = `SELECT id, source, row_count, imported_at
FROM import_runs
ORDER BY imported_at DESC, rowid DESC
LIMIT 1`

func (q *Queries) GetLatestImportRun(ctx context.Context) (ImportRun, error) {
	var i ImportRun
	err := q.db.QueryRowContext(ctx, getLatestImportRun).Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt)
	return i, err
}
