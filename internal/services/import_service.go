package services

import (
	"context"
	"fmt"
	"log/slog"

	"fuelboard/internal/amqp"
	"fuelboard/internal/core"
	"fuelboard/internal/observability"
	"fuelboard/internal/pipeline"
	"fuelboard/internal/source"
)

// Importer stores a validated record set as one import run.
type Importer interface {
	Import(ctx context.Context, src string, records []core.PriceRecord) (string, error)
}

// ReloadPublisher notifies running dashboards that the dataset changed.
type ReloadPublisher interface {
	PublishReload(ctx context.Context, msg *amqp.DatasetReloadMessage) error
}

// ImportResult summarises one import.
type ImportResult struct {
	ImportID     string
	Source       string
	Records      int
	RowsRead     int
	Dropped      int
	InvalidCells int
	Published    bool
}

// ImportService validates a price table through the pipeline, stores it and
// publishes a reload message.
type ImportService struct {
	storage   Importer
	publisher ReloadPublisher
	metrics   *observability.Metrics
	opts      pipeline.Options
}

func NewImportService(storage Importer, publisher ReloadPublisher, metrics *observability.Metrics, opts pipeline.Options) *ImportService {
	return &ImportService{
		storage:   storage,
		publisher: publisher,
		metrics:   metrics,
		opts:      opts,
	}
}

// Import reads src, rejects it on any fatal pipeline error and replaces the
// stored dataset. With dryRun the table is validated only.
func (s *ImportService) Import(ctx context.Context, src source.RowSource, dryRun bool) (ImportResult, error) {
	res, err := s.importTable(ctx, src, dryRun)
	if s.metrics != nil && !dryRun {
		s.metrics.RecordImport(err)
	}
	return res, err
}

func (s *ImportService) importTable(ctx context.Context, src source.RowSource, dryRun bool) (ImportResult, error) {
	t, err := src.ReadRows(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read source: %w", err)
	}

	// Stored rows must survive the same validation the dashboard applies.
	d, err := pipeline.Run(ctx, t, s.opts)
	if err != nil {
		return ImportResult{}, fmt.Errorf("validate %s: %w", t.Source, err)
	}

	res := ImportResult{
		Source:       t.Source,
		Records:      d.Ascending.Len(),
		RowsRead:     d.RowsRead,
		Dropped:      d.Dropped,
		InvalidCells: d.InvalidCells,
	}
	if dryRun {
		return res, nil
	}

	res.ImportID, err = s.storage.Import(ctx, t.Source, d.Ascending.Records())
	if err != nil {
		return res, fmt.Errorf("store records: %w", err)
	}

	// The import is committed; a failed notification is logged only.
	if err := s.publishReload(ctx, res.ImportID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reload message",
			"import_id", res.ImportID, "error", err)
	} else {
		res.Published = s.publisher != nil
	}
	return res, nil
}

func (s *ImportService) publishReload(ctx context.Context, importID string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping reload message")
		return nil
	}
	return s.publisher.PublishReload(ctx, amqp.NewDatasetReloadMessage("import", importID))
}
