package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/storage"
)

// fakeStore is an in-memory ObjectStore for tests.
type fakeStore struct {
	objects   map[string][]byte
	listErr   error
	fetchErr  error
	listCalls int
}

var _ storage.ObjectStore = (*fakeStore)(nil)

func (s *fakeStore) ListObjects(ctx context.Context) ([]string, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var names []string
	for name := range s.objects {
		names = append(names, name)
	}
	return names, nil
}

func (s *fakeStore) FetchObject(ctx context.Context, name string) ([]byte, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	data, ok := s.objects[name]
	if !ok {
		return nil, errors.New("object not found: " + name)
	}
	return data, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		CSVFolder:    filepath.Join(dir, "source_csv"),
		BronzeFolder: filepath.Join(dir, "bronze"),
		SilverFolder: filepath.Join(dir, "silver"),
		GoldFolder:   filepath.Join(dir, "gold"),
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		FetchTimeout:  time.Second,
	}
}

func TestFetchJSONLTable(t *testing.T) {
	t.Parallel()

	store := &fakeStore{objects: map[string][]byte{
		"tickets.jsonl": []byte(`{"ticket_id": 1, "issue_type": "Other"}
{"ticket_id": 2, "issue_type": "Delivery Issue"}
`),
		"readme.txt": []byte("not data"),
	}}

	out, err := FetchJSONLTable(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, out.RowCount())
	require.True(t, out.HasColumn("ticket_id"))
	require.True(t, out.HasColumn("issue_type"))
}

func TestIngestorRun(t *testing.T) {
	t.Parallel()

	t.Run("copies source CSVs and remote tickets to bronze", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		require.NoError(t, EnsureFolder(cfg.CSVFolder))
		require.NoError(t, os.WriteFile(
			filepath.Join(cfg.CSVFolder, "orders.csv"),
			[]byte("order_id,total_value\n1,10\n2,30\n"), 0o644))

		store := &fakeStore{objects: map[string][]byte{
			"tickets.jsonl": []byte(`{"ticket_id": "T1", "order_id": "1", "issue_type": "Other"}` + "\n"),
		}}

		ing, err := NewIngestor(cfg, store, zap.NewNop())
		require.NoError(t, err)

		summary, err := ing.Run(context.Background())
		require.NoError(t, err)
		require.False(t, summary.SyntheticUsed)
		require.Equal(t, 2, summary.Files["orders.csv"])
		require.Equal(t, 1, summary.TicketRows)

		require.FileExists(t, filepath.Join(cfg.BronzeFolder, "orders.csv"))
		require.FileExists(t, filepath.Join(cfg.BronzeFolder, "support_tickets.csv"))
	})

	t.Run("missing sources fail when fallback is disabled", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		ing, err := NewIngestor(cfg, nil, zap.NewNop())
		require.NoError(t, err)

		_, err = ing.Run(context.Background())
		require.Error(t, err)
		require.ErrorContains(t, err, "synthetic fallback disabled")
	})

	t.Run("synthetic fallback populates bronze when enabled", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.AllowSyntheticFallback = true

		ing, err := NewIngestor(cfg, nil, zap.NewNop())
		require.NoError(t, err)

		summary, err := ing.Run(context.Background())
		require.NoError(t, err)
		require.True(t, summary.SyntheticUsed)
		require.NotZero(t, summary.TicketRows)

		for _, name := range []string{"orders.csv", "customers.csv", "products.csv", "order_items.csv", "support_tickets.csv"} {
			require.FileExists(t, filepath.Join(cfg.BronzeFolder, name))
		}
	})

	t.Run("remote failure without fallback surfaces after retries", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		require.NoError(t, EnsureFolder(cfg.CSVFolder))
		require.NoError(t, os.WriteFile(
			filepath.Join(cfg.CSVFolder, "orders.csv"),
			[]byte("order_id\n1\n"), 0o644))

		store := &fakeStore{listErr: errors.New("container unreachable")}
		ing, err := NewIngestor(cfg, store, zap.NewNop())
		require.NoError(t, err)

		_, err = ing.Run(context.Background())
		require.Error(t, err)
		require.ErrorContains(t, err, "container unreachable")
		require.Equal(t, cfg.RetryAttempts+1, store.listCalls)
	})

	t.Run("remote failure with fallback uses synthetic tickets", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.AllowSyntheticFallback = true
		require.NoError(t, EnsureFolder(cfg.CSVFolder))
		require.NoError(t, os.WriteFile(
			filepath.Join(cfg.CSVFolder, "orders.csv"),
			[]byte("order_id\n1\n"), 0o644))

		store := &fakeStore{listErr: errors.New("container unreachable")}
		ing, err := NewIngestor(cfg, store, zap.NewNop())
		require.NoError(t, err)

		summary, err := ing.Run(context.Background())
		require.NoError(t, err)
		require.True(t, summary.SyntheticUsed)
		require.NotZero(t, summary.TicketRows)
	})
}

func TestSampleTables(t *testing.T) {
	t.Parallel()

	orders := SampleOrders()
	require.NotZero(t, orders.RowCount())
	require.True(t, orders.HasColumn("order_id"))
	require.True(t, orders.HasColumn("total_value"))

	tickets := SampleTickets()
	require.NotZero(t, tickets.RowCount())
	require.True(t, tickets.HasColumn("ticket_id"))
	require.True(t, tickets.HasColumn("order_id"))
	require.True(t, tickets.HasColumn("issue_type"))
}
