// Package files locates the monthly sales CSV files and writes report output.
//
// Discovery: finds input files in one directory matching one glob, in lexical
// (discovery) order, and derives the batch label of each file by stripping a
// fixed prefix and suffix from its name.
//
// Manager: small write-side helpers used by the report commands, such as
// ensuring output directories exist and writing files relative to a base path.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/srv/sales")
//	sources, err := discovery.FindSources("data", "Dataset_de_ventas_*.csv",
//	    "Dataset_de_ventas_", ".csv")
package files
