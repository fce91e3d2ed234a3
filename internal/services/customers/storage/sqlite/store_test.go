package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/tableside/internal/services/customers/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "customers.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	want := storage.Customer{
		ID:        "c-1",
		Name:      "Ada",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := store.PutCustomer(ctx, want); err != nil {
		t.Fatalf("put customer: %v", err)
	}

	got, err := store.GetCustomer(ctx, "c-1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got != want {
		t.Fatalf("customer = %+v, want %+v", got, want)
	}
}

func TestPutCustomerUpdatesExistingRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	original := storage.Customer{ID: "c-1", Name: "Ada", CreatedAt: createdAt, UpdatedAt: createdAt}
	if err := store.PutCustomer(ctx, original); err != nil {
		t.Fatalf("put customer: %v", err)
	}

	renamed := original
	renamed.Name = "Ada L."
	renamed.UpdatedAt = createdAt.Add(time.Hour)
	if err := store.PutCustomer(ctx, renamed); err != nil {
		t.Fatalf("rename customer: %v", err)
	}

	got, err := store.GetCustomer(ctx, "c-1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Name != "Ada L." {
		t.Fatalf("name = %q, want %q", got.Name, "Ada L.")
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("created at = %v, want original %v", got.CreatedAt, createdAt)
	}
	if !got.UpdatedAt.Equal(renamed.UpdatedAt) {
		t.Fatalf("updated at = %v, want %v", got.UpdatedAt, renamed.UpdatedAt)
	}
}

func TestGetMissingCustomerReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetCustomer(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListCustomersOrdersByCreationTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	second := storage.Customer{ID: "c-2", Name: "Grace", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
	first := storage.Customer{ID: "c-1", Name: "Ada", CreatedAt: base, UpdatedAt: base}
	for _, customer := range []storage.Customer{second, first} {
		if err := store.PutCustomer(ctx, customer); err != nil {
			t.Fatalf("put customer %s: %v", customer.ID, err)
		}
	}

	customers, err := store.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("len = %d, want 2", len(customers))
	}
	if customers[0].ID != "c-1" || customers[1].ID != "c-2" {
		t.Fatalf("order = [%s %s], want [c-1 c-2]", customers[0].ID, customers[1].ID)
	}
}

func TestListCustomersEmptyStoreReturnsEmptySlice(t *testing.T) {
	store := openTestStore(t)

	customers, err := store.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if customers == nil || len(customers) != 0 {
		t.Fatalf("customers = %v, want empty non-nil slice", customers)
	}
}

func TestDeleteCustomer(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	customer := storage.Customer{ID: "c-1", Name: "Ada", CreatedAt: now, UpdatedAt: now}
	if err := store.PutCustomer(ctx, customer); err != nil {
		t.Fatalf("put customer: %v", err)
	}

	if err := store.DeleteCustomer(ctx, "c-1"); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	if _, err := store.GetCustomer(ctx, "c-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingCustomerReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.DeleteCustomer(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
