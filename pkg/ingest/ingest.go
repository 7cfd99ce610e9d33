// pkg/ingest/ingest.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/storage"
	"github.com/jafshop/medallion/pkg/table"
)

// ticketsFile is the bronze filename the remote JSONL feed lands in.
const ticketsFile = "support_tickets.csv"

// Summary is the structured result of a bronze ingestion run.
type Summary struct {
	Files         map[string]int    // filename -> rows ingested
	Errors        map[string]string // filename -> error marker
	TicketRows    int
	SyntheticUsed bool
	Duration      time.Duration
}

// Ingestor populates the Bronze layer from local CSV files and a
// remote object store holding newline-delimited JSON.
type Ingestor struct {
	cfg    *config.Config
	store  storage.ObjectStore // nil when no remote endpoint configured
	logger *zap.Logger
}

// NewIngestor creates an Ingestor. The store may be nil, in which case
// ticket ingestion relies on the synthetic fallback (when enabled).
func NewIngestor(cfg *config.Config, store storage.ObjectStore, logger *zap.Logger) (*Ingestor, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Ingestor{cfg: cfg, store: store, logger: logger}, nil
}

// Run ingests all sources into the Bronze layer. Per-file failures are
// recorded in the summary and do not abort the run; failures that leave
// the pipeline without any usable input do.
func (i *Ingestor) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		Files:  make(map[string]int),
		Errors: make(map[string]string),
	}

	if err := i.ingestCSVFiles(summary); err != nil {
		return summary, err
	}

	rows, synthetic, err := i.ingestTickets(ctx)
	if err != nil {
		return summary, err
	}
	summary.TicketRows = rows
	summary.Files[ticketsFile] = rows
	summary.SyntheticUsed = summary.SyntheticUsed || synthetic

	summary.Duration = time.Since(start)
	i.logger.Info("Bronze ingestion complete",
		zap.Int("files", len(summary.Files)),
		zap.Int("ticketRows", summary.TicketRows),
		zap.Bool("synthetic", summary.SyntheticUsed),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// ingestCSVFiles round-trips every source CSV into the bronze folder.
func (i *Ingestor) ingestCSVFiles(summary *Summary) error {
	files, err := storage.ListCSVFiles(i.cfg.CSVFolder)
	if err != nil || len(files) == 0 {
		if !i.cfg.AllowSyntheticFallback {
			if err != nil {
				return fmt.Errorf("source CSV folder unavailable and synthetic fallback disabled: %w", err)
			}
			return fmt.Errorf("no CSV files in %s and synthetic fallback disabled", i.cfg.CSVFolder)
		}
		i.logger.Warn("Source CSV folder unavailable, generating synthetic demo data",
			zap.String("folder", i.cfg.CSVFolder))
		if err := i.writeSampleCSVs(); err != nil {
			return err
		}
		summary.SyntheticUsed = true
		if files, err = storage.ListCSVFiles(i.cfg.CSVFolder); err != nil {
			return fmt.Errorf("list synthetic CSV files: %w", err)
		}
	}

	for _, name := range files {
		t, err := storage.ReadTable(filepath.Join(i.cfg.CSVFolder, name))
		if err != nil {
			i.logger.Error("Failed to ingest CSV file", zap.String("file", name), zap.Error(err))
			summary.Errors[name] = err.Error()
			continue
		}
		if err := storage.WriteTable(t, filepath.Join(i.cfg.BronzeFolder, name)); err != nil {
			// cannot write to bronze at all: pipeline-level failure
			return fmt.Errorf("write bronze file %s: %w", name, err)
		}
		summary.Files[name] = t.RowCount()
		i.logger.Info("Ingested CSV file", zap.String("file", name), zap.Int("rows", t.RowCount()))
	}

	return nil
}

func (i *Ingestor) writeSampleCSVs() error {
	samples := map[string]table.Table{
		"orders.csv":      SampleOrders(),
		"customers.csv":   SampleCustomers(),
		"products.csv":    SampleProducts(),
		"order_items.csv": SampleOrderItems(),
	}
	for name, t := range samples {
		if err := storage.WriteTable(t, filepath.Join(i.cfg.CSVFolder, name)); err != nil {
			return fmt.Errorf("write sample %s: %w", name, err)
		}
	}
	return nil
}

// ingestTickets fetches the remote JSONL feed with bounded retries,
// falling back to synthetic demo tickets only when explicitly enabled.
func (i *Ingestor) ingestTickets(ctx context.Context) (rows int, synthetic bool, err error) {
	var t table.Table

	switch {
	case i.store == nil:
		if !i.cfg.AllowSyntheticFallback {
			return 0, false, errors.New("no remote object store configured and synthetic fallback disabled")
		}
		i.logger.Warn("Remote credentials not provided, using synthetic demo tickets")
		t, synthetic = SampleTickets(), true

	default:
		t, err = i.fetchTicketsWithRetry(ctx)
		if err != nil {
			if !i.cfg.AllowSyntheticFallback {
				return 0, false, fmt.Errorf("remote ticket ingestion failed: %w", err)
			}
			i.logger.Warn("Remote ticket ingestion failed, using synthetic demo tickets", zap.Error(err))
			t, synthetic = SampleTickets(), true
		} else if t.Empty() && i.cfg.AllowSyntheticFallback {
			i.logger.Warn("Remote store returned no ticket records, using synthetic demo tickets")
			t, synthetic = SampleTickets(), true
		}
	}

	path := filepath.Join(i.cfg.BronzeFolder, ticketsFile)
	if err := storage.WriteTable(t, path); err != nil {
		return 0, synthetic, fmt.Errorf("write bronze tickets: %w", err)
	}
	return t.RowCount(), synthetic, nil
}

func (i *Ingestor) fetchTicketsWithRetry(ctx context.Context) (table.Table, error) {
	var lastErr error
	for attempt := 0; attempt <= i.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			i.logger.Warn("Retrying remote ticket fetch",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-time.After(i.cfg.RetryDelay):
			case <-ctx.Done():
				return table.Table{}, ctx.Err()
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, i.cfg.FetchTimeout)
		t, err := FetchJSONLTable(fetchCtx, i.store, i.logger)
		cancel()
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return table.Table{}, lastErr
}

// FetchJSONLTable lists the store's objects, filters by the .jsonl
// suffix, decodes each line of each object as one JSON record and
// concatenates everything into a single table.
func FetchJSONLTable(ctx context.Context, store storage.ObjectStore, logger *zap.Logger) (table.Table, error) {
	names, err := store.ListObjects(ctx)
	if err != nil {
		return table.Table{}, fmt.Errorf("list objects: %w", err)
	}

	combined := table.New()
	for _, name := range names {
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		logger.Info("Fetching remote object", zap.String("object", name))

		data, err := store.FetchObject(ctx, name)
		if err != nil {
			return table.Table{}, fmt.Errorf("fetch object %s: %w", name, err)
		}

		decoded := storage.DecodeJSONL(data, logger)
		for _, col := range decoded.Columns {
			combined.AddColumn(col)
		}
		combined.Rows = append(combined.Rows, decoded.Rows...)
	}

	logger.Info("Fetched remote JSONL records", zap.Int("records", combined.RowCount()))
	return combined, nil
}

// EnsureFolder creates a layer folder if it does not exist.
func EnsureFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", path, err)
	}
	return nil
}
