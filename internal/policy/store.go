package policy

import "context"

// Store is the persistence surface for policy records. Stores are pure I/O;
// the registry owns all state-machine rules and serializes transitions, so
// stores never see concurrent writes for the same record.
type Store interface {
	// Insert persists a new policy record.
	Insert(ctx context.Context, p *Policy) error

	// Get returns the record for a version, or nil when absent.
	Get(ctx context.Context, version int) (*Policy, error)

	// Update replaces the stored record for p.Version.
	Update(ctx context.Context, p *Policy) error

	// MaxVersion returns the highest registered version, 0 when empty.
	MaxVersion(ctx context.Context) (int, error)

	// ActiveVersion returns the currently Active version, 0 when none.
	ActiveVersion(ctx context.Context) (int, error)

	// List returns every record ordered by version ascending.
	List(ctx context.Context) ([]*Policy, error)
}
