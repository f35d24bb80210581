package sales

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ErrInvalidMoney is returned when a monetary amount cannot be parsed
var ErrInvalidMoney = errors.New("invalid monetary amount")

// decimalCtx is shared by every Money operation. 34 digits matches decimal128
// and is far above anything a sales total reaches.
var decimalCtx = apd.BaseContext.WithPrecision(34)

// Money is an exact decimal amount. The zero value is 0.
// Values are never mutated in place; every operation returns a new Money.
type Money struct {
	value apd.Decimal
}

// ParseMoney parses a decimal string such as "11.95" without float rounding.
// NaN and infinities are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty value", ErrInvalidMoney)
	}
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return Money{}, fmt.Errorf("%w: %q: %v", ErrInvalidMoney, s, err)
	}
	if d.Form != apd.Finite {
		return Money{}, fmt.Errorf("%w: %q is not finite", ErrInvalidMoney, s)
	}
	return Money{value: d}, nil
}

// MustMoney is ParseMoney for literals known to be valid. It panics otherwise.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromInt returns the whole amount i
func MoneyFromInt(i int64) Money {
	var d apd.Decimal
	d.SetInt64(i)
	return Money{value: d}
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	var result apd.Decimal
	_, _ = decimalCtx.Add(&result, &m.value, &other.value)
	return Money{value: result}
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	var result apd.Decimal
	_, _ = decimalCtx.Sub(&result, &m.value, &other.value)
	return Money{value: result}
}

// MulInt returns m * n
func (m Money) MulInt(n int64) Money {
	var factor, result apd.Decimal
	factor.SetInt64(n)
	_, _ = decimalCtx.Mul(&result, &m.value, &factor)
	return Money{value: result}
}

// QuotientPlaces is the number of decimals DivInt keeps
const QuotientPlaces = 4

// DivInt returns m / n rounded half-up to QuotientPlaces decimals, or zero
// when n is zero.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return Money{}
	}
	var divisor, result apd.Decimal
	divisor.SetInt64(n)
	_, _ = decimalCtx.Quo(&result, &m.value, &divisor)
	return Money{value: result}.Round(QuotientPlaces)
}

// Ratio returns m / other as a float, or 0 when other is zero.
// It is meant for percentages and shares, not for amounts.
func (m Money) Ratio(other Money) float64 {
	if other.IsZero() {
		return 0
	}
	var result apd.Decimal
	_, _ = decimalCtx.Quo(&result, &m.value, &other.value)
	f, err := result.Float64()
	if err != nil {
		return 0
	}
	return f
}

// Cmp compares m and other and returns -1, 0 or +1.
func (m Money) Cmp(other Money) int {
	return m.value.Cmp(&other.value)
}

// Sign returns -1, 0 or +1 depending on the sign of m.
func (m Money) Sign() int {
	return m.value.Sign()
}

// IsZero reports whether m equals zero
func (m Money) IsZero() bool {
	return m.value.IsZero()
}

// Float64 returns the nearest float64. Use it only for display and charts.
func (m Money) Float64() float64 {
	f, err := m.value.Float64()
	if err != nil {
		return 0
	}
	return f
}

// Round returns m rounded half-up to the given number of decimal places.
func (m Money) Round(places int32) Money {
	var result apd.Decimal
	ctx := *decimalCtx
	ctx.Rounding = apd.RoundHalfUp
	_, _ = ctx.Quantize(&result, &m.value, -places)
	return Money{value: result}
}

// String returns the exact decimal representation without exponent.
func (m Money) String() string {
	return m.value.Text('f')
}

// StringFixed returns m rounded to places decimals, e.g. "30.00".
func (m Money) StringFixed(places int32) string {
	return m.Round(places).String()
}

// MarshalJSON renders the exact amount as a JSON number. Amounts with fewer
// than two decimals are padded to cents, so 1700 becomes 1700.00 and 3.845
// stays 3.845.
func (m Money) MarshalJSON() ([]byte, error) {
	if m.value.Exponent > -2 {
		return []byte(m.StringFixed(2)), nil
	}
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores Money as its exact decimal text.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads Money back from a TEXT, REAL or INTEGER column.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Money{}
		return nil
	case string:
		return m.UnmarshalJSON([]byte(v))
	case []byte:
		return m.UnmarshalJSON(v)
	case int64:
		*m = MoneyFromInt(v)
		return nil
	case float64:
		return m.UnmarshalJSON([]byte(fmt.Sprintf("%v", v)))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidMoney, src)
	}
}

// Sum adds up the given amounts
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
