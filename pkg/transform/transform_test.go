package transform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/cleaner"
	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		BronzeFolder: filepath.Join(dir, "bronze"),
		SilverFolder: filepath.Join(dir, "silver"),
	}
}

func writeBronze(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.BronzeFolder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.BronzeFolder, name), []byte(content), 0o644))
}

func TestTransformerRun(t *testing.T) {
	t.Parallel()

	t.Run("cleans every bronze file into silver", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		writeBronze(t, cfg, "orders.csv",
			"orderid,customerid,order_total\n1,C1,10\n1,C1,10\n2,C2,30\n")
		writeBronze(t, cfg, "support_tickets.csv",
			"ticket_id,order_id,issue\nT1,1,Delivery Issue\n")

		tr, err := NewTransformer(cfg, zap.NewNop())
		require.NoError(t, err)

		summary, err := tr.Run(context.Background())
		require.NoError(t, err)
		require.Empty(t, summary.Failed())

		orders := summary.Entities["orders"]
		require.Equal(t, 3, orders.RowsIn)
		require.Equal(t, 2, orders.RowsOut)
		require.Equal(t, 1, orders.DuplicatesRemoved)
		require.Equal(t, "orders_clean.csv", orders.OutputFile)

		cleaned, err := storage.ReadTable(filepath.Join(cfg.SilverFolder, "orders_clean.csv"))
		require.NoError(t, err)
		require.Equal(t, []string{"order_id", "customer_id", "total_value"}, cleaned.Columns)

		tickets, err := storage.ReadTable(filepath.Join(cfg.SilverFolder, "support_tickets_clean.csv"))
		require.NoError(t, err)
		require.True(t, tickets.HasColumn("issue_type"), "issue alias renamed")
	})

	t.Run("unknown entities go through the generic cleaner", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		writeBronze(t, cfg, "suppliers.csv", "supplier_id,price\n1,9.99\n1,9.99\n")

		tr, err := NewTransformer(cfg, zap.NewNop())
		require.NoError(t, err)

		summary, err := tr.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, summary.Entities["suppliers"].DuplicatesRemoved)
		require.FileExists(t, filepath.Join(cfg.SilverFolder, "suppliers_clean.csv"))
	})

	t.Run("data-quality failure marks the entity but not the stage", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		writeBronze(t, cfg, "orders.csv", "orderid\n1\n")
		writeBronze(t, cfg, "support_tickets.csv", "issue\nOther\n")

		tr, err := NewTransformer(cfg, zap.NewNop())
		require.NoError(t, err)

		summary, err := tr.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"support_tickets"}, summary.Failed())
		require.True(t, summary.Entities["support_tickets"].DataQuality)
		require.Empty(t, summary.Entities["orders"].Error)
	})

	t.Run("empty bronze folder aborts the stage", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		require.NoError(t, os.MkdirAll(cfg.BronzeFolder, 0o755))

		tr, err := NewTransformer(cfg, zap.NewNop())
		require.NoError(t, err)

		_, err = tr.Run(context.Background())
		require.Error(t, err)
	})
}

func TestWithPolicy(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	writeBronze(t, cfg, "vendors.csv", "vendorid,rating\nV1,4\nV1,4\n")

	tr, err := NewTransformer(cfg, zap.NewNop())
	require.NoError(t, err)
	tr.WithPolicy("vendors", cleaner.CleaningPolicy{
		Entity:   "vendors",
		Rename:   map[string]string{"vendorid": "vendor_id"},
		IDColumn: "vendor_id",
	})

	summary, err := tr.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Entities["vendors"].DuplicatesRemoved)

	cleaned, err := storage.ReadTable(filepath.Join(cfg.SilverFolder, "vendors_clean.csv"))
	require.NoError(t, err)
	require.True(t, cleaned.HasColumn("vendor_id"))
}
