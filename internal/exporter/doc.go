// Package exporter renders filtered sales subsets and their dashboards as
// downloadable documents.
//
// WriteRecords writes record listings with a UTF-8 BOM so spreadsheet tools
// pick up the accented headers. WriteXLSX produces a workbook with one sheet
// per report table, and WriteHTML produces a printable report.
//
// Example usage:
//
//	report := exporter.NewReport("Ventas 2019", records, dashboard, time.Now())
//	err := exporter.WriteHTML(w, report)
package exporter
