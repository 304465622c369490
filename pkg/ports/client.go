package ports

import (
	"context"

	"github.com/aretw0/txscope/pkg/domain"
)

// Client opens sessions against a transactional data store. Implementations
// are process-wide shared resources; every call returns a fresh session owned
// exclusively by the caller.
type Client interface {
	// StartSession opens a new session configured by opts. It fails with a
	// *domain.StorageError when the store is unreachable.
	StartSession(ctx context.Context, opts domain.SessionOptions) (Session, error)
}

// Session is a live session handle. The transaction lifecycle is
// Begin -> (Commit | Abort) -> End; End must be called exactly once.
// Sessions are not safe for concurrent use by multiple goroutines.
type Session interface {
	// ID identifies the session for logging.
	ID() string

	// Begin starts a transaction on the session.
	Begin(ctx context.Context, opts domain.TxOptions) error

	// Commit applies all writes staged since Begin.
	Commit(ctx context.Context) error

	// Abort discards all writes staged since Begin.
	Abort(ctx context.Context) error

	// End releases the session. The session is unusable afterwards.
	End(ctx context.Context) error

	// Get reads a key, observing writes staged in this transaction.
	// Returns domain.ErrKeyNotFound when the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stages a write. Fails with domain.ErrReadOnlySession on sessions
	// opened without a write concern.
	Set(ctx context.Context, key, value string) error

	// Delete stages a removal.
	Delete(ctx context.Context, key string) error
}
