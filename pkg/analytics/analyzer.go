// pkg/analytics/analyzer.go
package analytics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/cleaner"
	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/storage"
	"github.com/jafshop/medallion/pkg/table"
)

// Gold layer output files.
const (
	FileAverageOrderValue = "average_order_value.csv"
	FileOverallMetrics    = "overall_metrics.csv"
	FileTicketsPerOrder   = "tickets_per_order.csv"
	FileRestaurantSummary = "restaurant_summary.csv"
	FileTicketAnalytics   = "ticket_analytics.csv"
)

// ordersCandidates lists the silver filenames the cleaned orders table
// may live under, in priority order.
var ordersCandidates = []string{"orders_clean.csv", "raw_orders_clean.csv"}

const ticketsCleanFile = "support_tickets_clean.csv"

// Summary is the structured result of a gold analytics run.
type Summary struct {
	Outputs  map[string]int    // gold filename -> rows written
	Errors   map[string]string // gold filename -> error marker
	Duration time.Duration
}

// Analyzer runs the Gold stage over the cleaned silver tables.
type Analyzer struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) (*Analyzer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Analyzer{cfg: cfg, logger: logger}, nil
}

// Run computes every gold metric table. A failure of one metric is
// recorded as its error marker and does not stop the others; missing
// silver inputs abort the stage.
func (a *Analyzer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		Outputs: make(map[string]int),
		Errors:  make(map[string]string),
	}

	orders, err := a.readOrders()
	if err != nil {
		return summary, err
	}
	tickets, err := storage.ReadTable(filepath.Join(a.cfg.SilverFolder, ticketsCleanFile))
	if err != nil {
		return summary, fmt.Errorf("cleaned tickets unavailable: %w", err)
	}

	a.logger.Info("Loaded silver tables",
		zap.Int("orders", orders.RowCount()),
		zap.Int("tickets", tickets.RowCount()))

	byCustomer, overall, err := AverageOrderValue(orders)
	if err != nil {
		a.record(summary, FileAverageOrderValue, table.Table{}, err)
		a.record(summary, FileOverallMetrics, table.Table{}, err)
	} else {
		a.record(summary, FileAverageOrderValue, byCustomer, nil)
		a.record(summary, FileOverallMetrics, overall, nil)
	}

	perOrder, err := TicketsPerOrder(orders, tickets)
	a.record(summary, FileTicketsPerOrder, perOrder, err)

	restaurant, err := RestaurantSummary(orders, tickets)
	a.record(summary, FileRestaurantSummary, restaurant, err)

	ticketStats, err := TicketAnalytics(tickets)
	a.record(summary, FileTicketAnalytics, ticketStats, err)

	summary.Duration = time.Since(start)
	a.logger.Info("Gold analytics complete",
		zap.Int("outputs", len(summary.Outputs)),
		zap.Int("failures", len(summary.Errors)),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// record persists one metric table or stores its error marker.
func (a *Analyzer) record(summary *Summary, filename string, t table.Table, err error) {
	if err != nil {
		a.logger.Error("Metric computation failed",
			zap.String("output", filename),
			zap.Bool("dataQuality", cleaner.IsDataQuality(err)),
			zap.Error(err))
		summary.Errors[filename] = err.Error()
		return
	}

	path := filepath.Join(a.cfg.GoldFolder, filename)
	if err := storage.WriteTable(t, path); err != nil {
		a.logger.Error("Failed to write gold table", zap.String("output", filename), zap.Error(err))
		summary.Errors[filename] = err.Error()
		return
	}
	summary.Outputs[filename] = t.RowCount()
}

// readOrders tries the known silver filenames for the cleaned orders
// table.
func (a *Analyzer) readOrders() (table.Table, error) {
	for _, name := range ordersCandidates {
		path := filepath.Join(a.cfg.SilverFolder, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return storage.ReadTable(path)
	}
	return table.Table{}, fmt.Errorf("cleaned orders not found in %s (tried %v)",
		a.cfg.SilverFolder, ordersCandidates)
}
