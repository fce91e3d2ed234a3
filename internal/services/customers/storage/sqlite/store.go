// Package sqlite provides a SQLite-backed customers storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/tableside/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/tableside/internal/services/customers/storage"
	"github.com/louisbranch/tableside/internal/services/customers/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists customer records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite customers store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutCustomer upserts one customer record.
func (s *Store) PutCustomer(ctx context.Context, customer storage.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(customer.ID)
	name := strings.TrimSpace(customer.Name)
	if id == "" {
		return fmt.Errorf("customer id is required")
	}
	if name == "" {
		return fmt.Errorf("customer name is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO customers (id, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   updated_at = excluded.updated_at`,
		id,
		name,
		toMillis(customer.CreatedAt),
		toMillis(customer.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put customer: %w", err)
	}
	return nil
}

// GetCustomer returns one customer record by id.
func (s *Store) GetCustomer(ctx context.Context, id string) (storage.Customer, error) {
	if err := ctx.Err(); err != nil {
		return storage.Customer{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Customer{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Customer{}, fmt.Errorf("customer id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, created_at, updated_at FROM customers WHERE id = ?`,
		id,
	)
	var customer storage.Customer
	var createdAt int64
	var updatedAt int64
	err := row.Scan(&customer.ID, &customer.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Customer{}, storage.ErrNotFound
		}
		return storage.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	customer.CreatedAt = fromMillis(createdAt)
	customer.UpdatedAt = fromMillis(updatedAt)
	return customer, nil
}

// ListCustomers returns all customer records ordered by creation time.
func (s *Store) ListCustomers(ctx context.Context) ([]storage.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, created_at, updated_at FROM customers ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]storage.Customer, 0)
	for rows.Next() {
		var (
			customer  storage.Customer
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&customer.ID, &customer.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("list customers: %w", err)
		}
		customer.CreatedAt = fromMillis(createdAt)
		customer.UpdatedAt = fromMillis(updatedAt)
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// DeleteCustomer removes one customer record by id.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("customer id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.CustomerStore = (*Store)(nil)
