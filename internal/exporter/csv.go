package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"salespulse/internal/sales"
)

// utf8BOM helps spreadsheet tools recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RecordHeaders are the column headers of a record listing. The first six
// match the Spanish input headers so an export can be loaded again.
var RecordHeaders = []string{
	"ID de Pedido",
	"Producto",
	"Cantidad Pedida",
	"Precio Unitario",
	"Fecha de Pedido",
	"Dirección de Envio",
	"Ventas",
	"Ciudad",
	"Estado",
	"Categoría",
	"Rango de Precio",
	"Evento",
	"Lote",
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write writes options to w
func Write(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRecords writes a record listing with BOM and headers to w.
func WriteRecords(w io.Writer, records []sales.Record) error {
	return Write(w, RecordOptions(records))
}

// RecordOptions converts records into CSV rows. Timestamps use the input
// layout so the output is loadable.
func RecordOptions(records []sales.Record) WriteOptions {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.OrderID,
			r.Product,
			formatInt(r.Quantity),
			r.UnitPrice.String(),
			r.OrderedAt.Format(sales.TimestampLayout),
			r.ShipAddress,
			r.Revenue.String(),
			r.City,
			r.StateName,
			r.Category,
			r.PriceTier,
			r.SpecialEvent,
			r.Batch,
		})
	}
	return WriteOptions{
		Headers:   RecordHeaders,
		Records:   rows,
		BOMPrefix: true,
	}
}
