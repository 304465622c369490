package domain

import "time"

// ReadConcern is the consistency level requested for reads.
type ReadConcern string

const (
	ReadConcernLocal    ReadConcern = "local"
	ReadConcernMajority ReadConcern = "majority"
)

// ReadPreference selects which replica reads are routed to.
type ReadPreference string

const (
	ReadPreferencePrimary ReadPreference = "primary"
	ReadPreferenceNearest ReadPreference = "nearest"
)

// WriteConcern describes the acknowledgment and durability requested for
// writes. A nil WriteConcern on SessionOptions marks the session read-only.
type WriteConcern struct {
	W       string        // acknowledgment level, e.g. "majority"
	Journal bool          // require the write to be journaled
	Timeout time.Duration // how long to wait for acknowledgment
}

// SessionOptions describes how a session should be opened and what
// transaction guarantees it requests. Adapters honor what their store can
// express and ignore the rest.
type SessionOptions struct {
	ReadConcern    ReadConcern
	ReadPreference ReadPreference
	WriteConcern   *WriteConcern
	RetryWrites    bool
	MaxOpTime      time.Duration // bound on a single operation
	MaxSessionTime time.Duration // bound on the whole session
}

// TxOptions is the transaction-specific subset of SessionOptions, passed to
// Session.Begin.
type TxOptions struct {
	ReadConcern    ReadConcern
	ReadPreference ReadPreference
	WriteConcern   *WriteConcern
	MaxCommitTime  time.Duration
}

// TxOptions derives the transaction options from the session configuration.
func (o SessionOptions) TxOptions() TxOptions {
	return TxOptions{
		ReadConcern:    o.ReadConcern,
		ReadPreference: o.ReadPreference,
		WriteConcern:   o.WriteConcern,
		MaxCommitTime:  o.MaxOpTime,
	}
}

// ReadOnly reports whether the options describe a read-only session.
func (o SessionOptions) ReadOnly() bool {
	return o.WriteConcern == nil
}

// DefaultSessionOptions is the read-write preset, tuned for durability and
// consistency: majority read and write concern, primary reads, retried and
// journaled writes, bounded wait times.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		ReadConcern:    ReadConcernMajority,
		ReadPreference: ReadPreferencePrimary,
		WriteConcern: &WriteConcern{
			W:       "majority",
			Journal: true,
			Timeout: 5 * time.Second,
		},
		RetryWrites:    true,
		MaxOpTime:      10 * time.Second,
		MaxSessionTime: time.Minute,
	}
}

// ReadOnlySessionOptions is the read-only preset, tuned for lower latency at
// the cost of possibly stale reads: majority read concern, nearest reads, no
// write concern.
func ReadOnlySessionOptions() SessionOptions {
	return SessionOptions{
		ReadConcern:    ReadConcernMajority,
		ReadPreference: ReadPreferenceNearest,
		MaxOpTime:      10 * time.Second,
		MaxSessionTime: time.Minute,
	}
}
