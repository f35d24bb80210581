package exporter

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salespulse/internal/analytics"
	"salespulse/internal/files"
	"salespulse/internal/ingest"
	"salespulse/internal/sales"
	"salespulse/internal/shared/testutil"
)

var generatedAt = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func sampleReport(t *testing.T) Report {
	t.Helper()
	records := testutil.SampleRecords(t)
	dash := analytics.BuildDashboard(records, analytics.DefaultConfig())
	r := NewReport("Ventas 2019", records, dash, generatedAt)
	r.Filter = "todos"
	return r
}

func TestNewReport(t *testing.T) {
	r := sampleReport(t)

	assert.Equal(t, 8, r.Rows)
	assert.Equal(t, "2019-01-01 / 2019-03-20", r.Period())
	assert.Equal(t, generatedAt, r.GeneratedAt)

	empty := NewReport("Vacío", nil, analytics.BuildDashboard(nil, analytics.DefaultConfig()), generatedAt)
	assert.Equal(t, 0, empty.Rows)
	assert.Equal(t, "-", empty.Period())
}

func TestReportTables(t *testing.T) {
	tables := sampleReport(t).Tables()
	require.Len(t, tables, 5)

	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
		for _, row := range tbl.Rows {
			assert.Len(t, row, len(tbl.Headers), "table %s", tbl.Name)
		}
	}
	assert.Equal(t, []string{SheetSummary, SheetMonths, SheetProducts, SheetCities, SheetEvents}, names)

	summary := tables[0]
	assert.Contains(t, summary.Rows, []string{"Ventas", "3215.85"})
	assert.Contains(t, summary.Rows, []string{"Ticket promedio", "459.41"})
	assert.Contains(t, summary.Rows, []string{"Pedidos", "7"})

	months := tables[1]
	require.Len(t, months.Rows, 3)
	assert.Equal(t, []string{"2019-01", "Enero", "729.88"}, months.Rows[0][:3])
	assert.Equal(t, "1711.99", months.Rows[1][2])
}

func TestDisplayMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "0.00"},
		{"11.95", "11.95"},
		{"3215.85", "3,215.85"},
		{"1234567.891", "1,234,567.89"},
		{"-1500.5", "-1,500.50"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayMoney(sales.MustMoney(tt.input)))
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2.00", formatMoney(sales.MustMoney("2")))
	assert.Equal(t, "42", formatInt(42))
	assert.Equal(t, "12.3", formatPct(12.345))
	assert.Equal(t, "-0.5", formatPct(-0.5))
	assert.Equal(t, "1,024", displayInt(1024))
}

func TestWriteRecords_BOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, testutil.SampleRecords(t)))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	lines := strings.Split(strings.TrimSpace(string(data[len(utf8BOM):])), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "ID de Pedido,Producto,Cantidad Pedida"))
	assert.Contains(t, lines[1], "1001")
	assert.Contains(t, lines[1], "23.90")
}

func TestWriteRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))
	assert.Equal(t, strings.Join(RecordHeaders, ",")+"\n", string(buf.Bytes()[len(utf8BOM):]))
}

func TestWriteRecords_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	// Sub-cent prices must survive the round trip
	records := append(testutil.SampleRecords(t),
		testutil.NewRecord(t, "4001", "AAA Batteries (4-pack)", "3", "3.845", "04/02/19 10:00", testutil.AddrDallas))

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))
	assert.Contains(t, buf.String(), ",3.845,")
	require.NoError(t, files.NewManager(dir).WriteFile(filepath.Join("out", "Dataset_de_ventas_Export.csv"), buf.Bytes()))

	logger, _ := testutil.NewTestLogger(t)
	ds, err := ingest.Load(context.Background(), ingest.Options{Dir: filepath.Join(dir, "out")}, logger)
	require.NoError(t, err)
	require.Equal(t, len(records), ds.Len())
	assert.Equal(t, 0, ds.Stats().Rejected)

	for i, got := range ds.Records() {
		want := records[i]
		assert.Equal(t, want.OrderID, got.OrderID)
		assert.Equal(t, want.Product, got.Product)
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.Zero(t, want.UnitPrice.Cmp(got.UnitPrice), "unit price of %s", want.OrderID)
		assert.Zero(t, want.Revenue.Cmp(got.Revenue), "revenue of %s", want.OrderID)
		assert.True(t, want.OrderedAt.Equal(got.OrderedAt))
		assert.Equal(t, want.City, got.City)
		assert.Equal(t, "Export", got.Batch)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport(t)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetMonths, SheetProducts, SheetCities, SheetEvents}, f.GetSheetList())

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Indicador", "Valor"}, rows[0])
	assert.Contains(t, rows, []string{"Ventas", "3215.85"})

	months, err := f.GetRows(SheetMonths)
	require.NoError(t, err)
	assert.Len(t, months, 4)

	products, err := f.GetRows(SheetProducts)
	require.NoError(t, err)
	require.Greater(t, len(products), 1)
	assert.Equal(t, "1", products[1][0])
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleReport(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Ventas 2019</title>")
	assert.Contains(t, out, "2019-01-01 / 2019-03-20")
	assert.Contains(t, out, "2024-05-01 10:30:00 UTC")
	assert.Contains(t, out, "$ 3,215.85")
	assert.Contains(t, out, "$ 459.41")
	assert.Contains(t, out, "Enero 2019-01")
	assert.Contains(t, out, "1,711.99")
	assert.Contains(t, out, "Filtro: todos")
}

func TestWriteHTML_Empty(t *testing.T) {
	r := NewReport("Vacío", nil, analytics.BuildDashboard(nil, analytics.DefaultConfig()), generatedAt)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))
	assert.Contains(t, buf.String(), "Sin datos")
	assert.Contains(t, buf.String(), "Sin eventos")
	assert.Contains(t, buf.String(), "$ 0.00")
}

func TestWriteHTML_EscapesTitle(t *testing.T) {
	r := NewReport("<script>x</script>", nil, analytics.Dashboard{}, generatedAt)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))
	assert.NotContains(t, buf.String(), "<script>x</script>")
}
