package http

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
)

func TestServeIndex(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("redirects without index", func(t *testing.T) {
		rec := get(t, ServeIndex(t.TempDir(), logger), "/")
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, ReportPath, rec.Header().Get("Location"))
	})

	t.Run("renders index", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<h1>{{.AppName}}</h1>`), 0o644))

		rec := get(t, ServeIndex(dir, logger), "/")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<h1>Sales Pulse</h1>", rec.Body.String())
	})

	t.Run("broken template", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`{{.Missing`), 0o644))

		rec := get(t, ServeIndex(dir, logger), "/")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "app.css"), []byte("body{}"), 0o644))

	rec := get(t, StaticFiles(dir, "/static/"), "/static/app.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}
