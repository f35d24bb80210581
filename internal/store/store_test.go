package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/sales"
	"salespulse/internal/shared/testutil"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sales.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWriteSnapshot_CountMatchesDataset(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	records := testutil.SampleRecords(t)

	require.NoError(t, s.WriteSnapshot(ctx, records))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)
}

func TestWriteSnapshot_Replaces(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	records := testutil.SampleRecords(t)

	require.NoError(t, s.WriteSnapshot(ctx, records))
	require.NoError(t, s.WriteSnapshot(ctx, records[:3]))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.WriteSnapshot(ctx, nil))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSales_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	records := testutil.SampleRecords(t)
	require.NoError(t, s.WriteSnapshot(ctx, records))

	got, err := s.Sales(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i, sale := range got {
		want := records[i].Sale
		assert.Equal(t, want.OrderID, sale.OrderID)
		assert.Equal(t, want.Quantity, sale.Quantity)
		assert.Equal(t, want.UnitPrice.String(), sale.UnitPrice.String())
		assert.True(t, want.OrderedAt.Equal(sale.OrderedAt))
		assert.Equal(t, want.ShipAddress, sale.ShipAddress)
	}
}

func TestRevenueByState_ExactDecimals(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.WriteSnapshot(ctx, testutil.SampleRecords(t)))

	totals, err := s.RevenueByState(ctx)
	require.NoError(t, err)
	assert.Len(t, totals, 4)

	assert.Equal(t, "2573.90", totals["California"].StringFixed(2))

	var total sales.Money
	for _, m := range totals {
		total = total.Add(m)
	}
	assert.Equal(t, "3215.85", total.StringFixed(2))
}

func TestClosedStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "sales.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.WriteSnapshot(ctx, nil), ErrClosed)
	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Close(), ErrClosed)
}

func TestWriteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	records := testutil.SampleRecords(t)

	require.NoError(t, WriteFile(ctx, path, records))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)
}
