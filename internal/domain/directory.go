package domain

import (
	"context"
	"fmt"
	"sync"
)

// Directory caches account id -> "name - account_number" display labels.
// Refresh must be called whenever name or number data could have changed
// relative to the cache (account creation, transfer).
type Directory struct {
	mu       sync.RWMutex
	labels   map[int64]string
	accounts AccountStore
}

// NewDirectory creates an empty directory backed by the account store.
func NewDirectory(accounts AccountStore) *Directory {
	return &Directory{
		labels:   make(map[int64]string),
		accounts: accounts,
	}
}

// Refresh reloads the full id -> label mapping from the store.
func (d *Directory) Refresh(ctx context.Context) error {
	all, err := d.accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh directory: %w", err)
	}

	labels := make(map[int64]string, len(all))
	for _, a := range all {
		labels[a.ID] = fmt.Sprintf("%s - %s", a.Name, a.AccountNumber)
	}

	d.mu.Lock()
	d.labels = labels
	d.mu.Unlock()
	return nil
}

// LabelFor returns the cached label, or a placeholder if the id has not been
// observed by a refresh yet.
func (d *Directory) LabelFor(id int64) string {
	d.mu.RLock()
	label, ok := d.labels[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Sprintf("User %d", id)
	}
	return label
}
