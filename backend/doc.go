// Package backend provides the storage implementations behind the runtime's
// filesystem layer: a per-thread ephemeral backend whose content is
// reclaimed with its thread, a durable in-memory store shared across
// threads, and the composite router that dispatches each operation to
// exactly one backend by longest-prefix match.
//
// A durable implementation backed by BadgerDB lives in the badger
// subpackage; the design is medium-agnostic and additional durable
// backends only need to satisfy core.Backend.
package backend
