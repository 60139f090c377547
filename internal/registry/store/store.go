// Package store persists the base locator: the prefix from which
// per-token locators are derived.
package store

import (
	"context"
)

// Store is the locator persistence interface. BaseLocator returns
// sentinel.ErrNotFound (wrapped) until the locator is first set.
type Store interface {
	// BaseLocator returns the configured locator prefix.
	BaseLocator(ctx context.Context) (string, error)

	// SetBaseLocator overwrites the locator prefix. Empty is a valid
	// value and clears the prefix without unsetting it.
	SetBaseLocator(ctx context.Context, base string) error
}
