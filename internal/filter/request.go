package filter

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"salespulse/internal/sales"
)

// Request is a set of dashboard filters. Zero values mean "no constraint".
type Request struct {
	State     string `json:"state,omitempty"`
	City      string `json:"city,omitempty"`
	Month     string `json:"month,omitempty" validate:"omitempty,month_name"`
	Weekday   string `json:"weekday,omitempty" validate:"omitempty,weekday_name"`
	Quarter   int    `json:"quarter,omitempty" validate:"min=0,max=4"`
	Category  string `json:"category,omitempty"`
	PriceTier string `json:"price_tier,omitempty" validate:"omitempty,price_tier"`
	Start     string `json:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End       string `json:"end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Sentinels that select everything
var allSentinels = map[string]bool{"": true, "all": true, "todos": true, "todas": true}

// IsAll reports whether v imposes no constraint
func IsAll(v string) bool {
	return allSentinels[strings.ToLower(strings.TrimSpace(v))]
}

func normalize(v string) string {
	if IsAll(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// Normalize trims values and replaces sentinels with "". Two requests that
// select the same records normalize to the same value.
func (r Request) Normalize() Request {
	return Request{
		State:     normalize(r.State),
		City:      normalize(r.City),
		Month:     normalize(r.Month),
		Weekday:   normalize(r.Weekday),
		Quarter:   r.Quarter,
		Category:  normalize(r.Category),
		PriceTier: normalize(r.PriceTier),
		Start:     normalize(r.Start),
		End:       normalize(r.End),
	}
}

// IsEmpty reports whether r constrains nothing
func (r Request) IsEmpty() bool {
	return r.Normalize() == Request{}
}

// FieldError describes one invalid filter value
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidRequestError is returned by Validate and ParseQuery
type InvalidRequestError struct {
	Fields []FieldError
}

func (e *InvalidRequestError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Message
	}
	return "invalid filter: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("month_name", func(fl validator.FieldLevel) bool {
			return sales.MonthNumber(fl.Field().String()) != 0
		})
		_ = v.RegisterValidation("weekday_name", func(fl validator.FieldLevel) bool {
			return sales.IsWeekdayName(fl.Field().String())
		})
		_ = v.RegisterValidation("price_tier", func(fl validator.FieldLevel) bool {
			return sales.IsTierLabel(fl.Field().String())
		})
		v.RegisterStructValidation(dateOrder, Request{})

		// Use JSON tag names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

func dateOrder(sl validator.StructLevel) {
	req := sl.Current().Interface().(Request)
	if req.Start == "" || req.End == "" {
		return
	}
	start, err1 := time.Parse(sales.DateLayout, req.Start)
	end, err2 := time.Parse(sales.DateLayout, req.End)
	if err1 == nil && err2 == nil && end.Before(start) {
		sl.ReportError(req.End, "end", "End", "date_order", "start")
	}
}

// Validate normalizes r and checks every value. The normalized request is
// returned when it is valid.
func Validate(r Request) (Request, error) {
	r = r.Normalize()
	err := validatorInstance().Struct(r)
	if err == nil {
		return r, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return r, err
	}
	out := &InvalidRequestError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: formatFieldError(fe)})
	}
	return r, out
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "month_name":
		return fmt.Sprintf("%s must be a month name such as %s", field, sales.MonthNames[0])
	case "weekday_name":
		return fmt.Sprintf("%s must be a weekday name such as %s", field, sales.WeekdayNames[0])
	case "price_tier":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(sales.TierLabels(), ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s must be between 0 and 4", field)
	case "date_order":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ParseQuery builds a validated Request from URL query parameters.
func ParseQuery(q url.Values) (Request, error) {
	req := Request{
		State:     q.Get("state"),
		City:      q.Get("city"),
		Month:     q.Get("month"),
		Weekday:   q.Get("weekday"),
		Category:  q.Get("category"),
		PriceTier: q.Get("price_tier"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
	}
	if v := q.Get("quarter"); !IsAll(v) {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(v), "Q")))
		if err != nil {
			return req, &InvalidRequestError{Fields: []FieldError{{
				Field:   "quarter",
				Message: "quarter must be a number between 1 and 4",
			}}}
		}
		req.Quarter = n
	}
	return Validate(req)
}

// Query encodes r as URL query parameters, omitting unconstrained values.
func (r Request) Query() url.Values {
	r = r.Normalize()
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("state", r.State)
	set("city", r.City)
	set("month", r.Month)
	set("weekday", r.Weekday)
	if r.Quarter != 0 {
		q.Set("quarter", strconv.Itoa(r.Quarter))
	}
	set("category", r.Category)
	set("price_tier", r.PriceTier)
	set("start", r.Start)
	set("end", r.End)
	return q
}
