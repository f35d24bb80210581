// Package store writes read-only SQLite snapshots of a loaded sales dataset.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"salespulse/internal/sales"
)

// ErrClosed is returned by operations on a closed Store
var ErrClosed = errors.New("store is closed")

const table = "sales"

var columns = []string{
	"order_id", "product", "quantity", "unit_price", "ordered_at", "ship_address", "batch",
	"revenue", "city", "state_code", "state_name", "category", "price_tier", "special_event",
	"year_month", "weekday_name", "hour",
}

// Money columns are TEXT so amounts round-trip without float error.
const schema = `CREATE TABLE "sales" (
	"id" INTEGER PRIMARY KEY,
	"order_id" TEXT NOT NULL,
	"product" TEXT NOT NULL,
	"quantity" INTEGER NOT NULL,
	"unit_price" TEXT NOT NULL,
	"ordered_at" TEXT NOT NULL,
	"ship_address" TEXT NOT NULL,
	"batch" TEXT NOT NULL,
	"revenue" TEXT NOT NULL,
	"city" TEXT NOT NULL,
	"state_code" TEXT NOT NULL,
	"state_name" TEXT NOT NULL,
	"category" TEXT NOT NULL,
	"price_tier" TEXT NOT NULL,
	"special_event" TEXT NOT NULL,
	"year_month" TEXT NOT NULL,
	"weekday_name" TEXT NOT NULL,
	"hour" INTEGER NOT NULL
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sales_order_id ON sales(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_state_city ON sales(state_name, city)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_category ON sales(category)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_year_month ON sales(year_month)`,
}

// Store is a SQLite database holding one sales snapshot
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WriteSnapshot replaces the sales table with records in one transaction.
func (s *Store) WriteSnapshot(ctx context.Context, records []sales.Record) error {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS "sales"`); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO "sales" (`+strings.Join(columns, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.OrderID, r.Product, r.Quantity, r.UnitPrice, r.OrderedAt.Format(time.RFC3339), r.ShipAddress, r.Batch,
			r.Revenue, r.City, r.StateCode, r.StateName, r.Category, r.PriceTier, r.SpecialEvent,
			r.YearMonth, r.WeekdayName, r.Hour,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	for _, idx := range indexes {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return tx.Commit()
}

// WriteFile writes a snapshot of records to a new or existing database at path
func WriteFile(ctx context.Context, path string, records []sales.Record) (err error) {
	st, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}()
	return st.WriteSnapshot(ctx, records)
}

// Count returns the number of rows in the snapshot
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "sales"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Sales reads the snapshot back as coerced sales, in insertion order.
func (s *Store) Sales(ctx context.Context) ([]sales.Sale, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, product, quantity, unit_price, ordered_at, ship_address, batch FROM "sales" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []sales.Sale{}
	for rows.Next() {
		var (
			sale      sales.Sale
			orderedAt string
		)
		if err := rows.Scan(&sale.OrderID, &sale.Product, &sale.Quantity, &sale.UnitPrice,
			&orderedAt, &sale.ShipAddress, &sale.Batch); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		sale.OrderedAt, err = time.Parse(time.RFC3339, orderedAt)
		if err != nil {
			return nil, fmt.Errorf("parse ordered_at %q: %w", orderedAt, err)
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

// RevenueByState sums revenue per state name from the snapshot, exactly.
func (s *Store) RevenueByState(ctx context.Context) (map[string]sales.Money, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT state_name, revenue FROM "sales"`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	totals := make(map[string]sales.Money)
	for rows.Next() {
		var (
			state   string
			revenue sales.Money
		)
		if err := rows.Scan(&state, &revenue); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		totals[state] = totals[state].Add(revenue)
	}
	return totals, rows.Err()
}
