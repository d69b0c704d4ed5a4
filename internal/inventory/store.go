package inventory

import "context"

// Store persists records keyed by SKU with secondary lookups by SKU and title.
//
// Implementations wrap transport failures in ErrStoreUnavailable and report
// an empty point lookup as ErrNotFound.
type Store interface {
	GetBySKU(ctx context.Context, sku string) (Record, error)
	// FindByTitle returns an empty slice, not an error, when nothing matches.
	FindByTitle(ctx context.Context, title string) ([]Record, error)
	Put(ctx context.Context, rec Record) error
	// Delete removes the entry at key and echoes a record holding only the key.
	Delete(ctx context.Context, key string) (Record, error)
	Ping(ctx context.Context) error
}
