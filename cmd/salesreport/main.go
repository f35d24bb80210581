// Command salesreport loads the sales files, applies a filter and writes one
// report document without starting the server.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"salespulse/internal/analytics"
	"salespulse/internal/cache"
	"salespulse/internal/config"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/ingest"
	"salespulse/internal/services"
	"salespulse/internal/store"
	"salespulse/internal/validation"
)

// options are the parsed command line flags
type options struct {
	Dir           string
	Pattern       string
	Out           string
	Format        string
	Title         string
	SQLite        string
	CategoryOrder string
	LogLevel      string
	Filter        filter.Request
}

var errUsage = errors.New("usage error")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "salesreport:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.Dir, "dir", "data", "directory holding the monthly sales files")
	fs.StringVar(&o.Pattern, "pattern", ingest.DefaultPattern, "glob selecting the input files")
	fs.StringVar(&o.Out, "out", "", `output file; "-" writes to stdout (default reporte_ventas.<format>)`)
	fs.StringVar(&o.Format, "format", "html", "output format: html, xlsx or csv")
	fs.StringVar(&o.Title, "title", config.DefaultReportTitle, "report title")
	fs.StringVar(&o.SQLite, "sqlite", "", "also write a SQLite snapshot of the whole dataset to this path")
	fs.StringVar(&o.CategoryOrder, "category-order", config.CategoryOrderTVFirst, "category rule order: tv_first or appliance_first")
	fs.StringVar(&o.LogLevel, "log-level", config.LogLevelWarn, "log level")

	fs.StringVar(&o.Filter.State, "state", "", "state name")
	fs.StringVar(&o.Filter.City, "city", "", "city name")
	fs.StringVar(&o.Filter.Month, "month", "", "month name, e.g. Marzo")
	fs.StringVar(&o.Filter.Weekday, "weekday", "", "weekday name, e.g. Lunes")
	fs.IntVar(&o.Filter.Quarter, "quarter", 0, "quarter 1-4")
	fs.StringVar(&o.Filter.Category, "category", "", "product category")
	fs.StringVar(&o.Filter.PriceTier, "tier", "", "price tier")
	fs.StringVar(&o.Filter.Start, "start", "", "first date, YYYY-MM-DD")
	fs.StringVar(&o.Filter.End, "end", "", "last date, YYYY-MM-DD")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return o, errUsage
	}

	o.Format = strings.ToLower(o.Format)
	switch o.Format {
	case "html", "xlsx", "csv":
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", o.Format)
		return o, errUsage
	}
	switch o.CategoryOrder {
	case config.CategoryOrderTVFirst, config.CategoryOrderApplianceFirst:
	default:
		fmt.Fprintf(stderr, "unknown category order %q\n", o.CategoryOrder)
		return o, errUsage
	}
	if o.Out == "" {
		o.Out = "reporte_ventas." + o.Format
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	req, err := filter.Validate(o.Filter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	logger := infrastructure.NewLogger(config.LoggingConfig{Level: o.LogLevel}, stderr)

	fv := validation.NewFileValidator(logger)
	if err := fv.ValidateInputDirectory(o.Dir); err != nil {
		return err
	}
	if o.Out != "-" {
		if err := fv.ValidateOutputFile(o.Out); err != nil {
			return err
		}
	}
	if o.SQLite != "" {
		if err := fv.ValidateOutputFile(o.SQLite); err != nil {
			return err
		}
	}

	data := config.Default().Data
	data.Dir = o.Dir
	data.Pattern = o.Pattern
	data.CategoryOrder = o.CategoryOrder
	ds, err := ingest.Load(ctx, data.IngestOptions(), logger)
	if err != nil {
		return err
	}

	if o.SQLite != "" {
		if err := store.WriteFile(ctx, o.SQLite, ds.Records()); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.InfoContext(ctx, "SQLite snapshot written", slog.String("path", o.SQLite))
	}

	svc, err := services.NewDashboardService(ds, cache.Noop[analytics.Dashboard]{}, analytics.DefaultConfig(), nil, logger)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render(ctx, svc, req, o, &buf); err != nil {
		return err
	}

	if o.Out == "-" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := files.NewManager("").WriteFile(o.Out, buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stderr, "wrote %s (%d bytes)\n", o.Out, buf.Len())
	return nil
}

func render(ctx context.Context, svc *services.DashboardService, req filter.Request, o options, w io.Writer) error {
	if o.Format == "csv" {
		records, err := svc.Filtered(ctx, req)
		if err != nil {
			return err
		}
		return exporter.WriteRecords(w, records)
	}

	report, err := svc.Report(ctx, req, o.Title)
	if err != nil {
		return err
	}
	if o.Format == "xlsx" {
		return exporter.WriteXLSX(w, report)
	}
	return exporter.WriteHTML(w, report)
}
