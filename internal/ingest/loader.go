package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"salespulse/internal/files"
	"salespulse/internal/sales"
)

// Load errors. ErrNoInputFiles and ErrEmptyDataset are fatal at startup.
var (
	ErrNoInputFiles   = errors.New("no input files found")
	ErrEmptyDataset   = errors.New("input files contain no valid sales records")
	ErrMissingColumns = errors.New("required columns missing from header")
)

// Default input naming
const (
	DefaultPattern     = "Dataset_de_ventas_*.csv"
	DefaultLabelPrefix = "Dataset_de_ventas_"
	DefaultLabelSuffix = ".csv"
)

// Options configure Load
type Options struct {
	Dir         string
	Pattern     string
	LabelPrefix string
	LabelSuffix string
	// ColumnSets are tried in order against each file's header
	ColumnSets []ColumnMap
	Deriver    *sales.Deriver
	// Concurrency bounds the number of files parsed at once; 0 means GOMAXPROCS
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.Pattern == "" {
		o.Pattern = DefaultPattern
		if o.LabelPrefix == "" {
			o.LabelPrefix = DefaultLabelPrefix
		}
	}
	if o.LabelSuffix == "" {
		o.LabelSuffix = DefaultLabelSuffix
	}
	if len(o.ColumnSets) == 0 {
		o.ColumnSets = DefaultColumnSets
	}
	if o.Deriver == nil {
		o.Deriver = sales.DefaultDeriver()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}

type batch struct {
	records []sales.Record
	stats   Stats
}

// Load reads every file matching opts and returns the concatenated Dataset.
func Load(ctx context.Context, opts Options, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	start := time.Now()

	sources, err := files.NewDiscovery("").FindSources(opts.Dir, opts.Pattern, opts.LabelPrefix, opts.LabelSuffix)
	if err != nil {
		if errors.Is(err, files.ErrNoMatches) {
			return nil, fmt.Errorf("%w: %v", ErrNoInputFiles, err)
		}
		return nil, fmt.Errorf("discover input files: %w", err)
	}

	logger.InfoContext(ctx, "loading sales files",
		slog.String("dir", opts.Dir),
		slog.String("pattern", opts.Pattern),
		slog.Int("file_count", len(sources)))

	batches := make([]batch, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			b, err := readSource(gctx, src, opts)
			if err != nil {
				return fmt.Errorf("read %s: %w", src.Name, err)
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{sources: sources, loadedAt: time.Now().UTC()}
	total := 0
	for _, b := range batches {
		total += len(b.records)
	}
	ds.records = make([]sales.Record, 0, total)
	for _, b := range batches {
		ds.records = append(ds.records, b.records...)
		ds.stats.add(b.stats)
	}
	ds.stats.Files = len(sources)
	ds.stats.Bytes = files.TotalSize(fileInfos(sources))

	if len(ds.records) == 0 {
		return nil, fmt.Errorf("%w: %d files, %d rows read", ErrEmptyDataset, len(sources), ds.stats.RawRows)
	}
	ds.computeSpan()

	minDate, maxDate := ds.Span()
	logger.InfoContext(ctx, "sales dataset loaded",
		slog.Int("records", ds.stats.Retained),
		slog.Int("raw_rows", ds.stats.RawRows),
		slog.Int("header_rows", ds.stats.HeaderRows),
		slog.Int("rejected", ds.stats.Rejected),
		slog.String("first_date", minDate.Format(sales.DateLayout)),
		slog.String("last_date", maxDate.Format(sales.DateLayout)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

func readSource(ctx context.Context, src files.Source, opts Options) (batch, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return batch{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return parse(ctx, f, src.Label, opts)
}

// parse reads one CSV stream. The first row must be a header that one of
// opts.ColumnSets resolves against.
func parse(ctx context.Context, r io.Reader, label string, opts Options) (batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return batch{}, nil
	}
	if err != nil {
		return batch{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx, cols, err := resolveAny(opts.ColumnSets, header)
	if err != nil {
		return batch{}, err
	}
	headerLiterals := map[string]bool{cols.OrderID: true}
	for _, set := range opts.ColumnSets {
		headerLiterals[set.OrderID] = true
	}

	var b batch
	for line := 0; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return batch{}, err
			}
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return batch{}, fmt.Errorf("failed to read CSV row: %w", err)
		}
		b.stats.RawRows++

		orderID := strings.TrimSpace(field(row, idx.orderID))
		switch {
		case headerLiterals[orderID]:
			b.stats.HeaderRows++
			continue
		case orderID == "":
			b.stats.BlankRows++
			continue
		}

		sale, err := sales.Coerce(sales.RawRecord{
			OrderID:     orderID,
			Product:     field(row, idx.product),
			Quantity:    field(row, idx.quantity),
			UnitPrice:   field(row, idx.unitPrice),
			OrderedAt:   field(row, idx.orderedAt),
			ShipAddress: field(row, idx.shipAddress),
			Batch:       label,
		})
		if err != nil {
			b.stats.Rejected++
			if b.stats.Reasons == nil {
				b.stats.Reasons = make(map[string]int)
			}
			b.stats.Reasons[rejectReason(err)]++
			continue
		}
		b.records = append(b.records, opts.Deriver.Derive(sale))
		b.stats.Retained++
	}
	return b, nil
}

func fileInfos(sources []files.Source) []files.FileInfo {
	out := make([]files.FileInfo, len(sources))
	for i, s := range sources {
		out[i] = s.FileInfo
	}
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, sales.ErrInvalidQuantity):
		return "quantity"
	case errors.Is(err, sales.ErrInvalidPrice):
		return "unit_price"
	case errors.Is(err, sales.ErrInvalidTimestamp):
		return "timestamp"
	default:
		return "other"
	}
}
