package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fuelboard/internal/core"
	"fuelboard/internal/log"
	"fuelboard/internal/source"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	schema  uint
	logger  *log.Logger
}

var (
	_ source.RowSource    = (*SQLiteRepository)(nil)
	_ source.RecordWriter = (*SQLiteRepository)(nil)
	_ source.Versioned    = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger := log.FromContext(context.Background()).WithComponent(log.ComponentStorage)
	schema, err := migrateSchema(dbPath, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), schema: schema, logger: logger}, nil
}

// SchemaVersion reports the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint { return r.schema }

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadRows implements source.RowSource. Stored rows are rendered back into
// the raw column layout so they go through the same validation as a file.
func (r *SQLiteRepository) ReadRows(ctx context.Context) (core.Table, error) {
	items, err := r.queries.ListFuelPrices(ctx)
	if err != nil {
		return core.Table{}, fmt.Errorf("list fuel prices: %w", err)
	}
	t := core.Table{
		Source: "sqlite",
		Header: append([]string(nil), core.RequiredColumns...),
		Rows:   make([][]string, 0, len(items)),
	}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{it.Month, formatNull(it.Houston), formatNull(it.Texas), formatNull(it.National)})
	}
	return t, nil
}

// ReplaceAll implements source.RecordWriter.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.PriceRecord) error {
	_, err := r.Import(ctx, "", records)
	return err
}

// Import swaps the stored record set for records in one transaction and
// logs an import run. It returns the run ID.
func (r *SQLiteRepository) Import(ctx context.Context, src string, records []core.PriceRecord) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteFuelPrices(ctx); err != nil {
		return "", fmt.Errorf("delete fuel prices: %w", err)
	}

	id := uuid.NewString()
	for _, rec := range records {
		err := q.InsertFuelPrice(ctx, InsertFuelPriceParams{
			Month:    rec.Date.String(),
			Houston:  toNull(rec.Houston),
			Texas:    toNull(rec.Texas),
			National: toNull(rec.National),
			ImportID: id,
		})
		if err != nil {
			return "", fmt.Errorf("insert %s: %w", rec.Date, err)
		}
	}

	if err := q.CreateImportRun(ctx, CreateImportRunParams{
		ID:         id,
		Source:     src,
		RowCount:   int64(len(records)),
		ImportedAt: time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("create import run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	r.logger.InfoContext(ctx, "Fuel prices imported to SQLite",
		"import_id", id,
		"source", src,
		"rows", len(records))
	return id, nil
}

// Version implements source.Versioned with the latest import run ID.
func (r *SQLiteRepository) Version(ctx context.Context) (string, error) {
	run, err := r.queries.GetLatestImportRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get latest import run: %w", err)
	}
	return run.ID, nil
}

// LatestImport returns the most recent import run, or nil when none exists.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (*ImportRun, error) {
	run, err := r.queries.GetLatestImportRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest import run: %w", err)
	}
	return &run, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountFuelPrices(ctx)
	if err != nil {
		return 0, fmt.Errorf("count fuel prices: %w", err)
	}
	return int(n), nil
}

func toNull(p core.Price) sql.NullFloat64 {
	return sql.NullFloat64{Float64: p.Value, Valid: p.Valid}
}

func formatNull(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
