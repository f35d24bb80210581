package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/filter"
	"salespulse/internal/ingest"
	"salespulse/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorToProblem(t *testing.T) {
	h := NewErrorHandler(nil, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"wrapped cancel", fmt.Errorf("query: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"invalid filter", &filter.InvalidRequestError{Fields: []filter.FieldError{{Field: "month", Message: "must be between 1 and 12"}}}, http.StatusBadRequest, TypeInvalidFilter},
		{"api validation", ErrValidation("limit", "too large"), http.StatusBadRequest, TypeValidation},
		{"api not found", NotFoundError("report"), http.StatusNotFound, TypeNotFound},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"dataset unavailable", ErrDatasetUnavailable, http.StatusServiceUnavailable, TypeServiceDown},
		{"api export", ErrExport("xlsx", fmt.Errorf("disk full")), http.StatusInternalServerError, TypeExportFailed},
		{"no input files", fmt.Errorf("load: %w", ingest.ErrNoInputFiles), http.StatusServiceUnavailable, TypeDataNotFound},
		{"empty dataset", ingest.ErrEmptyDataset, http.StatusServiceUnavailable, TypeDataEmpty},
		{"app validation", NewAppValidationError("bad limit"), http.StatusBadRequest, TypeValidation},
		{"app not found", NewNotFoundError("record"), http.StatusNotFound, TypeNotFound},
		{"app export", NewExportError("html", fmt.Errorf("template")), http.StatusInternalServerError, TypeExportFailed},
		{"app ingest", NewIngestError("read failed", fmt.Errorf("eof")), http.StatusServiceUnavailable, TypeServiceDown},
		{"app storage", NewStorageError("insert failed", nil), http.StatusInternalServerError, TypeInternal},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, "/api/v1/dashboard", p.Instance)
		})
	}
}

func TestErrorToProblemHidesInternalDetail(t *testing.T) {
	h := NewErrorHandler(nil, false)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	p := h.ErrorToProblem(fmt.Errorf("password=secret"), req)
	assert.NotContains(t, p.Detail, "secret")

	p = h.ErrorToProblem(NewStorageError("insert failed", nil).WithContext("table", "sales"), req)
	assert.NotContains(t, p.Extensions, "context")
}

func TestHandleErrorInvalidFilter(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	err := &filter.InvalidRequestError{Fields: []filter.FieldError{
		{Field: "month", Message: "must be between 1 and 12"},
		{Field: "weekday", Message: "must be between 0 and 6"},
	}}
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?month=13", nil), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInvalidFilter, body["type"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])

	fields, ok := body["errors"].([]interface{})
	require.True(t, ok, "errors extension should be a list")
	require.Len(t, fields, 2)
	first := fields[0].(map[string]interface{})
	assert.Equal(t, "month", first["field"])

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "request failed")
	testutil.AssertNoErrors(t, logs)
}

func TestHandleErrorServerFailureLogsError(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export.xlsx", nil), fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Contains(t, body, "stack")
	assert.Contains(t, body, "trace_id")

	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
	assert.True(t, logs.HasAttr("status", int64(http.StatusInternalServerError)))
}

func TestHandleErrorNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/kpis", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeMethod, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestRecoverer(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	handler := h.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.NotContains(t, body, "panic")
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestRecovererAbortHandler(t *testing.T) {
	h := NewErrorHandler(nil, false)
	handler := h.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
