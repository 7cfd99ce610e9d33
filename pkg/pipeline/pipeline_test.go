package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/analytics"
	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		CSVFolder:     filepath.Join(dir, "source_csv"),
		BronzeFolder:  filepath.Join(dir, "bronze"),
		SilverFolder:  filepath.Join(dir, "silver"),
		GoldFolder:    filepath.Join(dir, "gold"),
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		FetchTimeout:  time.Second,
	}
}

// fakeStore serves a fixed set of remote objects.
type fakeStore struct {
	objects map[string][]byte
}

var _ storage.ObjectStore = (*fakeStore)(nil)

func (s *fakeStore) ListObjects(ctx context.Context) ([]string, error) {
	var names []string
	for name := range s.objects {
		names = append(names, name)
	}
	return names, nil
}

func (s *fakeStore) FetchObject(ctx context.Context, name string) ([]byte, error) {
	return s.objects[name], nil
}

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	t.Run("full run produces every gold output", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.AllowSyntheticFallback = true

		p, err := New(cfg, zap.NewNop())
		require.NoError(t, err)

		summary, err := p.Run(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, summary.RunID)
		require.NotNil(t, summary.Ingest)
		require.NotNil(t, summary.Transform)
		require.NotNil(t, summary.Analytics)
		require.True(t, summary.Ingest.SyntheticUsed)
		require.False(t, summary.EndTime.IsZero())

		for _, name := range []string{
			analytics.FileAverageOrderValue,
			analytics.FileOverallMetrics,
			analytics.FileTicketsPerOrder,
			analytics.FileRestaurantSummary,
			analytics.FileTicketAnalytics,
		} {
			require.FileExists(t, filepath.Join(cfg.GoldFolder, name))
		}
	})

	t.Run("remote tickets flow through to gold", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.AllowSyntheticFallback = true

		store := &fakeStore{objects: map[string][]byte{
			"tickets.jsonl": []byte(`{"ticketid": "T1", "orderid": "ORD0001", "issue": "Delivery Issue"}` + "\n"),
		}}

		p, err := New(cfg, zap.NewNop())
		require.NoError(t, err)
		p.WithStore(store)

		summary, err := p.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, summary.Ingest.TicketRows)

		stats, err := storage.ReadTable(filepath.Join(cfg.GoldFolder, analytics.FileTicketAnalytics))
		require.NoError(t, err)
		require.Equal(t, 1, stats.RowCount())
		require.Equal(t, "Delivery Issue", stats.Rows[0]["issue_type"])
		require.Equal(t, "100", stats.Rows[0]["percentage"])
	})

	t.Run("ingest failure aborts with a classified error", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)

		p, err := New(cfg, zap.NewNop())
		require.NoError(t, err)

		_, err = p.Run(context.Background())
		require.Error(t, err)
		require.ErrorContains(t, err, "bronze stage (Config)")
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(nil, zap.NewNop())
	require.Error(t, err)
	_, err = New(testConfig(t), nil)
	require.Error(t, err)

	cfg := testConfig(t)
	cfg.RemoteEndpoint = "https://example.blob.core.windows.net/tickets?sv=token"
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorKindTransient},
		{"deadline", context.DeadlineExceeded, ErrorKindTransient},
		{"fallback disabled", errString("no CSV files and synthetic fallback disabled"), ErrorKindConfig},
		{"connection", errString("connection refused"), ErrorKindTransient},
		{"disk", errString("no space left on device"), ErrorKindFatal},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
