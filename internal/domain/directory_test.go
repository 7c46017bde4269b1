package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDirectoryRoundTrip(t *testing.T) {
	store := newMemStore()
	account := NewAccount("Priya Sharma", decimal.NewFromInt(100))
	if err := store.Create(context.Background(), account); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	directory := NewDirectory(store)
	if err := directory.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	want := fmt.Sprintf("Priya Sharma - %s", account.AccountNumber)
	if got := directory.LabelFor(account.ID); got != want {
		t.Errorf("LabelFor(%d) = %q, want %q", account.ID, got, want)
	}
}

func TestDirectoryFallback(t *testing.T) {
	directory := NewDirectory(newMemStore())
	if got := directory.LabelFor(123); got != "User 123" {
		t.Errorf("LabelFor(123) = %q, want %q", got, "User 123")
	}
}

func TestDirectoryRefreshPicksUpChanges(t *testing.T) {
	store := newMemStore()
	store.addAccount(1, "Old Name", "0", time.Now())
	directory := NewDirectory(store)
	if err := directory.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	before := directory.LabelFor(1)

	store.mu.Lock()
	a := store.accounts[1]
	a.Name = "New Name"
	store.accounts[1] = a
	store.mu.Unlock()

	// Stale until refreshed.
	if got := directory.LabelFor(1); got != before {
		t.Fatalf("label changed without refresh: %q", got)
	}
	if err := directory.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := directory.LabelFor(1); got == before {
		t.Errorf("label not updated after refresh: %q", got)
	}
}
