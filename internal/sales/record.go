package sales

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the order timestamp format of the input files
// (month/day/two-digit-year hour:minute). Single-digit month, day and hour
// are accepted too.
const TimestampLayout = "1/2/06 15:04"

// Coercion errors. Rows failing with any of these are excluded from the
// dataset and only counted.
var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid unit price")
	ErrInvalidTimestamp = errors.New("invalid order timestamp")
)

// RawRecord is one CSV row with the text exactly as read
type RawRecord struct {
	OrderID     string
	Product     string
	Quantity    string
	UnitPrice   string
	OrderedAt   string
	ShipAddress string
	Batch       string
}

// Sale is a validated line item. Quantity and UnitPrice are always positive.
type Sale struct {
	OrderID     string    `json:"order_id"`
	Product     string    `json:"product"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   Money     `json:"unit_price"`
	OrderedAt   time.Time `json:"ordered_at"`
	ShipAddress string    `json:"ship_address"`
	Batch       string    `json:"batch"`
}

// Coerce parses the numeric and timestamp fields of raw. All three fields
// are parsed before the positivity checks, so a bad timestamp drops the row
// even when quantity and price are fine.
func Coerce(raw RawRecord) (Sale, error) {
	qty, qtyErr := parseQuantity(raw.Quantity)
	price, priceErr := ParseMoney(raw.UnitPrice)
	orderedAt, tsErr := time.Parse(TimestampLayout, strings.TrimSpace(raw.OrderedAt))

	switch {
	case qtyErr != nil:
		return Sale{}, qtyErr
	case priceErr != nil:
		return Sale{}, fmt.Errorf("%w: %v", ErrInvalidPrice, priceErr)
	case tsErr != nil:
		return Sale{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw.OrderedAt)
	case qty <= 0:
		return Sale{}, fmt.Errorf("%w: %d is not positive", ErrInvalidQuantity, qty)
	case price.Sign() <= 0:
		return Sale{}, fmt.Errorf("%w: %s is not positive", ErrInvalidPrice, price)
	}

	return Sale{
		OrderID:     strings.TrimSpace(raw.OrderID),
		Product:     strings.TrimSpace(raw.Product),
		Quantity:    qty,
		UnitPrice:   price,
		OrderedAt:   orderedAt,
		ShipAddress: strings.TrimSpace(raw.ShipAddress),
		Batch:       raw.Batch,
	}, nil
}

// MaxQuantity is the largest quantity a row may carry, whichever way it is written
const MaxQuantity = math.MaxInt32

// parseQuantity accepts "2" as well as "2.0"; fractional values are rejected.
func parseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > MaxQuantity || n < -MaxQuantity {
			return 0, fmt.Errorf("%w: %q exceeds %d", ErrInvalidQuantity, s, MaxQuantity)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidQuantity, s)
	}
	if math.Abs(f) > MaxQuantity {
		return 0, fmt.Errorf("%w: %q exceeds %d", ErrInvalidQuantity, s, MaxQuantity)
	}
	return int64(f), nil
}
