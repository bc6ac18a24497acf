package catalog

import "context"

// Store owns the authoritative product collection. Every read returns a
// copy, so callers never alias the stored records.
type Store interface {
	Ping(ctx context.Context) error

	// List returns all products in insertion order.
	List(ctx context.Context) ([]Product, error)

	// Get returns ErrProductNotFound if no product has the id.
	Get(ctx context.Context, id string) (Product, error)

	// Insert assigns the next numeric id and appends.
	Insert(ctx context.Context, d Draft) (Product, error)

	// Update merges p over the stored record in place.
	// Returns ErrProductNotFound if no product has the id.
	Update(ctx context.Context, id string, p Patch) (Product, error)

	// Delete returns ErrProductNotFound if no product has the id.
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) int
}
