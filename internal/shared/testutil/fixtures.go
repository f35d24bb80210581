package testutil

import (
	"testing"

	"salespulse/internal/sales"
)

// NewRecord coerces and derives one record; it fails t on invalid input.
// at uses the input file layout, e.g. "08/15/19 14:30".
func NewRecord(t testing.TB, orderID, product string, qty, price, at, address string) sales.Record {
	t.Helper()
	sale, err := sales.Coerce(sales.RawRecord{
		OrderID:     orderID,
		Product:     product,
		Quantity:    qty,
		UnitPrice:   price,
		OrderedAt:   at,
		ShipAddress: address,
		Batch:       "test",
	})
	if err != nil {
		t.Fatalf("fixture record %s: %v", orderID, err)
	}
	return sales.Derive(sale)
}

// Fixture addresses
const (
	AddrSF     = "136 Church St, San Francisco, CA 94016"
	AddrLA     = "9 Lake St, Los Angeles, CA 90001"
	AddrBoston = "1 Elm St, Boston, MA 02215"
	AddrDallas = "917 1st St, Dallas, TX 75001"
	AddrShort  = "12 Nowhere Rd, Springfield"
)

// SampleRecords returns a small three-month dataset:
//
//	Jan: 2 orders, revenue 23.90 + 700 + 5.98 = 729.88
//	Feb: 2 orders, revenue 1700 + 11.99 = 1711.99
//	Mar: 3 orders, revenue 150 + 23.98 + 600 = 773.98
//
// Order 1001 has two line items, order 3002 has an address without state.
func SampleRecords(t testing.TB) []sales.Record {
	t.Helper()
	return []sales.Record{
		NewRecord(t, "1001", "USB-C Charging Cable", "2", "11.95", "01/01/19 09:15", AddrSF),
		NewRecord(t, "1001", "iPhone", "1", "700", "01/01/19 09:15", AddrSF),
		NewRecord(t, "1002", "AA Batteries (4-pack)", "2", "2.99", "01/07/19 21:40", AddrBoston),
		NewRecord(t, "2001", "Macbook Pro Laptop", "1", "1700", "02/14/19 13:05", AddrLA),
		NewRecord(t, "2002", "Wired Headphones", "1", "11.99", "02/16/19 13:30", AddrDallas),
		NewRecord(t, "3001", "27in FHD Monitor", "1", "150", "03/17/19 20:10", AddrSF),
		NewRecord(t, "3002", "Wired Headphones", "2", "11.99", "03/18/19 20:45", AddrShort),
		NewRecord(t, "3003", "LG Dryer", "1", "600", "03/20/19 08:00", AddrBoston),
	}
}
