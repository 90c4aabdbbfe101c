package sequence

import "context"

// CounterRepository defines persistence operations for sequence counters.
// Increment must be atomic: two concurrent calls for the same counter ID
// must observe distinct values with no gaps or duplicates.
type CounterRepository interface {
	// EnsureExists creates the counter row at zero if it does not exist.
	// Safe to call concurrently.
	EnsureExists(ctx context.Context, id string) error

	// Increment atomically advances the counter by one and returns the
	// new value.
	Increment(ctx context.Context, id string) (int64, error)

	// CurrentValue returns the counter's value without advancing it.
	// Returns zero for a counter that has never been incremented.
	CurrentValue(ctx context.Context, id string) (int64, error)

	// Reset forces the counter to a specific value. Administrative use
	// only: resetting a live counter reissues document numbers.
	Reset(ctx context.Context, id string, value int64) error
}
