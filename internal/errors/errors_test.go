package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewExportError("xlsx", cause)

	assert.Equal(t, "[EXPORT] xlsx export failed: disk full", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "xlsx", err.Context["format"])

	var appErr *AppError
	require.True(t, stderrors.As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrTypeExport, appErr.Type)

	assert.Equal(t, "[NOT_FOUND] record not found", NewNotFoundError("record").Error())
}

func TestAppErrorWithContextOnNilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeCache, Message: "redis down"}
	err.WithContext("backend", "redis")
	assert.Equal(t, "redis", err.Context["backend"])
}

func TestProblemDetailsMarshalFlattensExtensions(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "", "/api").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.Equal(t, "/api", body["instance"])
	assert.NotContains(t, body, "detail")
}

func TestProblemDetailsExtensionsCannotOverrideCoreFields(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "").
		WithExtension("status", 200)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":404`)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrValidation("limit", "must be positive"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
			Details   struct {
				Errors []ValidationError `json:"errors"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.ErrorCode)
	require.Len(t, body.Error.Details.Errors, 1)
	assert.Equal(t, "limit", body.Error.Details.Errors[0].Field)
}

func TestErrPanic(t *testing.T) {
	err := ErrPanic("nil map")
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "nil map", err.Details.(PanicRecovery).Message)
}

func TestAPIErrorDerivationLeavesSentinelsAlone(t *testing.T) {
	err := ErrWebSocketUpgrade.WithStatus(http.StatusForbidden).WithDetails("origin not allowed")

	assert.Equal(t, http.StatusForbidden, err.StatusCode)
	assert.Equal(t, ErrWebSocketUpgrade.ErrorCode, err.ErrorCode)
	assert.Equal(t, "origin not allowed", err.Details)
	assert.Equal(t, http.StatusInternalServerError, ErrWebSocketUpgrade.StatusCode)
	assert.Nil(t, ErrWebSocketUpgrade.Details)
}

func TestErrExport(t *testing.T) {
	err := ErrExport("xlsx", fmt.Errorf("zip: short write"))

	assert.Equal(t, ErrExportFailed.ErrorCode, err.ErrorCode)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "Failed to export xlsx document", err.Message)
	assert.Equal(t, "zip: short write", err.Details)
	assert.Equal(t, "Document export failed", ErrExportFailed.Message)
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("report")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "report not found", err.Message)
	assert.Equal(t, "report", err.Details)
	assert.Equal(t, "Resource not found", ErrNotFound.Message)
}
