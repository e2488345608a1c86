// Command fuelboard-import validates a price file and stores it in the SQLite
// database the sqlite backend reads, then notifies running dashboards.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fuelboard/internal/amqp"
	"fuelboard/internal/cli"
	"fuelboard/internal/core"
	"fuelboard/internal/observability"
	"fuelboard/internal/services"
	"fuelboard/internal/source/file"
	"fuelboard/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("fuelboard-import")
	cfg := cli.LoadAndValidateConfig(logger)

	path := flag.String("file", cfg.PricesFile, "CSV, TSV or XLSX file to import")
	sheet := flag.String("sheet", cfg.XLSXSheet, "worksheet name for XLSX files (default: first sheet)")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database path")
	dryRun := flag.Bool("dry-run", false, "validate only, do not store")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var importer services.Importer
	var repo *storage.SQLiteRepository
	if !*dryRun {
		repo = cli.InitSQLite(logger, *dbPath)
		defer repo.Close()
		importer = repo
	}

	var publisher services.ReloadPublisher
	if cfg.AMQPURL != "" && !*dryRun {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, running dashboards will not be notified", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	// Import runs are short-lived, so metrics stay in a private registry.
	metrics := observability.NewMetrics("fuelboard", prometheus.NewRegistry())
	svc := services.NewImportService(importer, publisher, metrics, cli.PipelineOptions(cfg))

	res, err := svc.Import(ctx, file.New(*path, *sheet), *dryRun)
	if err != nil {
		logger.Error("Import failed", "error", err, "kind", core.ErrorKind(err), "file", *path)
		os.Exit(1)
	}

	logger.Info("Import complete",
		"import_id", res.ImportID,
		"source", res.Source,
		"records", res.Records,
		"rows_read", res.RowsRead,
		"rows_dropped", res.Dropped,
		"invalid_cells", res.InvalidCells,
		"dry_run", *dryRun,
		"published", res.Published)
	if repo != nil {
		if n, err := repo.Count(ctx); err == nil {
			logger.Info("Stored dataset", "db_path", *dbPath, "records", n, "schema_version", repo.SchemaVersion())
		}
	}
	fmt.Printf("%d records from %s\n", res.Records, res.Source)
}
