package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"salespulse/internal/config"
)

// ReportPath is where the root page redirects when no web UI is installed
const ReportPath = "/api/sales/report.html"

// indexData is passed to index.html
type indexData struct {
	AppName string
	Version string
}

// ServeIndex serves index.html from webDir, or redirects to the HTML report
// when the directory has none.
func ServeIndex(webDir string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexPath := filepath.Join(webDir, "index.html")
		if _, err := os.Stat(indexPath); err != nil {
			http.Redirect(w, r, ReportPath, http.StatusTemporaryRedirect)
			return
		}
		serveHTML(w, r, indexPath, logger)
	}
}

// StaticFiles serves webDir/static under prefix
func StaticFiles(webDir, prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(filepath.Join(webDir, "static"))))
}

// serveHTML renders an HTML template file
func serveHTML(w http.ResponseWriter, r *http.Request, filePath string, logger *slog.Logger) {
	tmpl, err := template.ParseFiles(filePath)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to parse page",
			slog.String("path", filePath),
			slog.String("error", err.Error()))
		http.Error(w, "Error loading page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, indexData{AppName: config.AppName, Version: config.AppVersion}); err != nil {
		logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("path", filePath),
			slog.String("error", err.Error()))
	}
}
