/*
Package ports defines the driven ports (interfaces) for the txscope coordinator.

These interfaces decouple the coordination logic from the backing data store,
allowing the coordinator to work with any transactional backend.

# Key Interfaces

  - Client: Opens sessions against the backing store.
  - Session: A live session handle with transaction lifecycle and KV operations.

RunClientContract verifies that a Client implementation adheres to the
expected transactional semantics.
*/
package ports
