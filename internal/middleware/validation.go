package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "salespulse/internal/errors"
)

// Page is a validated limit/offset pair
type Page struct {
	Limit  int `json:"limit" validate:"gte=1"`
	Offset int `json:"offset" validate:"gte=0"`
}

// QueryParamValidator validates query parameters and reports failures as
// problem responses
type QueryParamValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		validator:    validator.New(),
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt validates an integer query parameter
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(param))
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		v.reject(w, r, param, fmt.Sprintf("%s must be a valid integer", param))
		return 0, false
	}

	if err := v.validator.Var(intValue, fmt.Sprintf("gte=%d,lte=%d", min, max)); err != nil {
		v.reject(w, r, param, fmt.Sprintf("%s must be between %d and %d", param, min, max))
		return 0, false
	}
	return intValue, true
}

// ValidatePage reads limit and offset. limit defaults to defaultLimit and is
// capped at maxLimit; offset defaults to zero.
func (v *QueryParamValidator) ValidatePage(w http.ResponseWriter, r *http.Request, defaultLimit, maxLimit int) (Page, bool) {
	limit, ok := v.ValidateInt(w, r, "limit", 1, maxLimit, defaultLimit)
	if !ok {
		return Page{}, false
	}
	offset, ok := v.ValidateInt(w, r, "offset", 0, int(^uint(0)>>1), 0)
	if !ok {
		return Page{}, false
	}
	page := Page{Limit: limit, Offset: offset}
	if err := v.validator.Struct(page); err != nil {
		v.reject(w, r, "limit", err.Error())
		return Page{}, false
	}
	return page, true
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, message string) {
	v.logger.DebugContext(r.Context(), "query parameter rejected",
		slog.String("param", param),
		slog.String("value", r.URL.Query().Get(param)),
	)
	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, message))
}
