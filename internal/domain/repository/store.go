package repository

import "context"

// Collection names used by the identity core. The backing store is
// addressed by (collection, key); each collection is an independent
// keyspace.
const (
	CollectionAccounts = "accounts"
	CollectionEmails   = "emails"
	CollectionPayloads = "payloads"
	CollectionGrants   = "grants"
)

// Document is a schemaless, JSON-compatible record.
type Document map[string]any

// Store is the contract over an eventually-consistent, replicated
// key-value/document store.
//
// Writes have field-level merge semantics: Set merges the given fields
// into the stored document rather than replacing it, and concurrent
// writers to the same key converge via the store's own merge policy.
// There is no compare-and-set and no cross-key transaction, so a Get may
// observe stale data relative to a just-completed Set elsewhere. Callers
// must treat that as a hazard, not rely on read-your-writes.
type Store interface {
	// Get returns the document at (collection, key). A miss is reported
	// as ok == false with a nil error; it is the signal used by
	// create-on-demand logic, not a failure.
	Get(ctx context.Context, collection, key string) (doc Document, ok bool, err error)

	// Set merges the document's fields into (collection, key). A non-nil
	// error is the store's write acknowledgment failure.
	Set(ctx context.Context, collection, key string, doc Document) error

	// Del removes the document at (collection, key). Deleting a missing
	// key is not an error.
	Del(ctx context.Context, collection, key string) error

	// Ping probes connectivity. Invoked by the startup lifecycle hook.
	Ping(ctx context.Context) error
}
