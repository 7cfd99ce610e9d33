package cleaner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/table"
)

func TestNewCleaner(t *testing.T) {
	t.Parallel()

	_, err := NewCleaner(nil)
	require.Error(t, err)

	c, err := NewCleaner(zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestCleanOrders(t *testing.T) {
	t.Parallel()

	c, err := NewCleaner(zap.NewNop())
	require.NoError(t, err)

	in := table.New("orderid", "customerid", "order_total", "order_date")
	in.Append(table.Record{"orderid": "1", "customerid": "C1", "order_total": "10", "order_date": "2024-01-05"})
	in.Append(table.Record{"orderid": "1", "customerid": "C1", "order_total": "10", "order_date": "2024-01-05"})
	in.Append(table.Record{"orderid": "2", "customerid": "C2", "order_total": "abc", "order_date": "2024-01-06"})

	out, result, err := c.Clean(in, OrdersPolicy())
	require.NoError(t, err)

	require.Equal(t, []string{"order_id", "customer_id", "total_value", "order_date"}, out.Columns)
	require.Equal(t, 3, result.RowsIn)
	require.Equal(t, 2, result.RowsOut)
	require.Equal(t, 1, result.DuplicatesRemoved)
	require.Equal(t, 1, result.CoercionFailures)

	require.Equal(t, float64(10), out.Rows[0]["total_value"])
	require.Equal(t, float64(0), out.Rows[1]["total_value"], "unparseable amount defaults to zero")
	require.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), out.Rows[0]["order_date"])

	require.Equal(t, "1", in.Rows[0]["orderid"], "input table must not be mutated")
}

func TestCleanValidation(t *testing.T) {
	t.Parallel()

	c, err := NewCleaner(zap.NewNop())
	require.NoError(t, err)

	t.Run("empty table fails", func(t *testing.T) {
		t.Parallel()

		_, _, err := c.Clean(table.New("order_id"), OrdersPolicy())
		require.Error(t, err)
		require.True(t, IsDataQuality(err))
	})

	t.Run("missing required column fails", func(t *testing.T) {
		t.Parallel()

		in := table.New("order_id", "issue_type")
		in.Append(table.Record{"order_id": "1", "issue_type": "Other"})

		_, _, err := c.Clean(in, TicketsPolicy())
		require.Error(t, err)
		require.True(t, IsDataQuality(err))
		require.ErrorContains(t, err, "ticket_id")
	})

	t.Run("role satisfied by alias passes", func(t *testing.T) {
		t.Parallel()

		in := table.New("id", "total_value")
		in.Append(table.Record{"id": "1", "total_value": "5"})

		_, _, err := c.Clean(in, OrdersPolicy())
		require.NoError(t, err)
	})

	t.Run("unresolvable required role fails", func(t *testing.T) {
		t.Parallel()

		in := table.New("customer_id", "total_value")
		in.Append(table.Record{"customer_id": "C1", "total_value": "5"})

		_, _, err := c.Clean(in, OrdersPolicy())
		require.Error(t, err)
		require.True(t, IsDataQuality(err))
		require.ErrorContains(t, err, "order_identifier")
	})
}

func TestCleanOrderItemsDerivesLineTotal(t *testing.T) {
	t.Parallel()

	c, err := NewCleaner(zap.NewNop())
	require.NoError(t, err)

	in := table.New("order_item_id", "quantity", "unit_price")
	in.Append(table.Record{"order_item_id": "1", "quantity": "3", "unit_price": "2.5"})

	out, _, err := c.Clean(in, OrderItemsPolicy())
	require.NoError(t, err)
	require.True(t, out.HasColumn("line_total"))
	require.Equal(t, 7.5, out.Rows[0]["line_total"])
}

func TestCleanGeneric(t *testing.T) {
	t.Parallel()

	c, err := NewCleaner(zap.NewNop())
	require.NoError(t, err)

	t.Run("dedupes on inferred id column and coerces known numerics", func(t *testing.T) {
		t.Parallel()

		in := table.New("supplier_id", "price", "note")
		in.Append(table.Record{"supplier_id": "1", "price": "9.99", "note": "a"})
		in.Append(table.Record{"supplier_id": "1", "price": "9.99", "note": "b"})
		in.Append(table.Record{"supplier_id": "2", "price": "bad", "note": nil})

		out, result, err := c.CleanGeneric(in, "suppliers")
		require.NoError(t, err)
		require.Equal(t, 2, out.RowCount())
		require.Equal(t, 1, result.DuplicatesRemoved)
		require.Equal(t, 9.99, out.Rows[0]["price"])
		require.Equal(t, float64(0), out.Rows[1]["price"])
		require.Equal(t, UnknownSentinel, out.Rows[1]["note"])
	})

	t.Run("empty result fails validation", func(t *testing.T) {
		t.Parallel()

		_, _, err := c.CleanGeneric(table.New("a"), "empty")
		require.Error(t, err)
		require.True(t, IsDataQuality(err))
	})
}
