package domain

import "errors"

// ErrTxAcquire is returned when the backing data store is unavailable and no
// sessions could be opened for the request.
var ErrTxAcquire = errors.New("failed to acquire transaction lock")

// ErrNotApplied is returned when session lookup happens on a request the
// coordinator never ran for. This is a wiring mistake, not a runtime condition.
var ErrNotApplied = errors.New("transaction coordinator not applied to this request")

// ErrDuplicateTemplate is returned when two session templates share a name.
var ErrDuplicateTemplate = errors.New("duplicate session template name")

// ErrKeyNotFound is returned when a key does not exist in the store.
var ErrKeyNotFound = errors.New("key not found")

// ErrNoTransaction is returned when a session operation requires an active
// transaction and none was begun.
var ErrNoTransaction = errors.New("no active transaction")

// ErrSessionEnded is returned when a session is used after End.
var ErrSessionEnded = errors.New("session already ended")

// ErrReadOnlySession is returned when a write is attempted on a session
// opened without a write concern.
var ErrReadOnlySession = errors.New("session is read-only")
