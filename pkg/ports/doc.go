/*
Package ports defines the driven ports (interfaces) of the minimal shell.

These interfaces decouple commands from concrete backends, so the same
command works against the memory, file, Redis or SQLite adapters.

# Key Interfaces

  - Store: namespaced key-value persistence for JSON documents.
  - Locker: cross-process locking for read-modify-write cycles on a Store.
*/
package ports
