package ingest

import (
	"fmt"
	"strings"
)

// ColumnMap names the CSV header of each input field
type ColumnMap struct {
	OrderID     string `yaml:"order_id"`
	Product     string `yaml:"product"`
	Quantity    string `yaml:"quantity"`
	UnitPrice   string `yaml:"unit_price"`
	OrderedAt   string `yaml:"ordered_at"`
	ShipAddress string `yaml:"ship_address"`
}

// SpanishColumns are the headers of the localized monthly exports
var SpanishColumns = ColumnMap{
	OrderID:     "ID de Pedido",
	Product:     "Producto",
	Quantity:    "Cantidad Pedida",
	UnitPrice:   "Precio Unitario",
	OrderedAt:   "Fecha de Pedido",
	ShipAddress: "Dirección de Envio",
}

// EnglishColumns are the headers of the untranslated exports
var EnglishColumns = ColumnMap{
	OrderID:     "Order ID",
	Product:     "Product",
	Quantity:    "Quantity Ordered",
	UnitPrice:   "Price Each",
	OrderedAt:   "Order Date",
	ShipAddress: "Purchase Address",
}

// DefaultColumnSets are tried in order against each file header
var DefaultColumnSets = []ColumnMap{SpanishColumns, EnglishColumns}

// columnIndex is a ColumnMap resolved against one header row
type columnIndex struct {
	orderID, product, quantity, unitPrice, orderedAt, shipAddress int
	width                                                          int
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

// resolve finds every column of m in header, or reports the missing ones.
func (m ColumnMap) resolve(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	idx := columnIndex{
		orderID:     lookup(m.OrderID),
		product:     lookup(m.Product),
		quantity:    lookup(m.Quantity),
		unitPrice:   lookup(m.UnitPrice),
		orderedAt:   lookup(m.OrderedAt),
		shipAddress: lookup(m.ShipAddress),
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	for _, i := range []int{idx.orderID, idx.product, idx.quantity, idx.unitPrice, idx.orderedAt, idx.shipAddress} {
		if i+1 > idx.width {
			idx.width = i + 1
		}
	}
	return idx, nil
}

// resolveAny tries each column set in order and returns the first that fits.
func resolveAny(sets []ColumnMap, header []string) (columnIndex, ColumnMap, error) {
	var firstErr error
	for _, set := range sets {
		idx, err := set.resolve(header)
		if err == nil {
			return idx, set, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return columnIndex{}, ColumnMap{}, firstErr
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
