package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/store"
)

const salesHeader = "ID de Pedido,Producto,Cantidad Pedida,Precio Unitario,Fecha de Pedido,Dirección de Envio\n"

func writeSalesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dataset_de_ventas_Marzo.csv"), []byte(salesHeader+
		`"300","Macbook Pro Laptop","1","1700","03/05/19 14:00","5 C St, San Francisco, CA 94016"`+"\n"+
		`"301","AA Batteries (4-pack)","4","3.84","03/06/19 20:10","6 D St, Austin, TX 73301"`+"\n"), 0o644))
	return dir
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, o options) {
				assert.Equal(t, "html", o.Format)
				assert.Equal(t, "reporte_ventas.html", o.Out)
				assert.Equal(t, "data", o.Dir)
			},
		},
		{
			name: "filter flags",
			args: []string{"-format", "XLSX", "-state", "Texas", "-quarter", "2", "-tier", "Premium"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, "xlsx", o.Format)
				assert.Equal(t, "reporte_ventas.xlsx", o.Out)
				assert.Equal(t, "Texas", o.Filter.State)
				assert.Equal(t, 2, o.Filter.Quarter)
				assert.Equal(t, "Premium", o.Filter.PriceTier)
			},
		},
		{name: "unknown format", args: []string{"-format", "pdf"}, wantErr: true},
		{name: "unknown category order", args: []string{"-category-order", "random"}, wantErr: true},
		{name: "stray argument", args: []string{"extra"}, wantErr: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			o, err := parseFlags(tt.args, &stderr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestRun_CSVToStdout(t *testing.T) {
	dir := writeSalesDir(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-dir", dir, "-format", "csv", "-out", "-", "-state", "Texas"}, &stdout, &stderr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "AA Batteries (4-pack)")
	assert.Contains(t, lines[1], "15.36")
}

func TestRun_HTMLWithSnapshot(t *testing.T) {
	dir := writeSalesDir(t)
	out := filepath.Join(t.TempDir(), "report.html")
	db := filepath.Join(t.TempDir(), "sales.db")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-dir", dir, "-out", out, "-sqlite", db, "-title", "Marzo 2019"}, &stdout, &stderr)
	require.NoError(t, err)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Marzo 2019")
	assert.Contains(t, string(html), "1,715.36")
	assert.Contains(t, stderr.String(), "wrote "+out)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-dir", t.TempDir()}, &stdout, &stderr)
	assert.ErrorContains(t, err, "no input files")

	err = run(context.Background(), []string{"-dir", writeSalesDir(t), "-month", "Smarch"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "invalid filter")
}
