// Package storage defines the repository interfaces and serialization
// helpers used by the persistence layer. Concrete backends live in
// subpackages; see storage/badger for the BadgerDB implementation.
package storage
