/*
Package domain contains the core value types and error taxonomy for txscope.

It defines the session configuration presets (read-write and read-only), the
transaction option subset derived from them, and the small set of application
error kinds that the coordinator surfaces to callers. This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - SessionOptions: How a session should be opened and what guarantees it requests.
  - TxOptions: The transaction-specific subset of SessionOptions.
  - AppError: A classified application error (internal, bad request, misuse).
  - StorageError / RemoteError / ValidationError: Origin markers used by the
    error translator to classify handler failures.
*/
package domain
