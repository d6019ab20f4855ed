// Package store provides a pluggable, thread-safe key-value storage abstraction.
// It defines the DB interface, the error taxonomy every backend shares, and two
// implementations: a sharded in-memory MemoryStore and a bbolt-backed DiskStore.
//
// Implementations MUST be safe for concurrent use by multiple goroutines.
// Put and Delete are atomic with respect to any other operation on the same key;
// operations on different keys carry no ordering guarantee relative to each other.
package store
