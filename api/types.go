package api

import "context"

// Authenticator is implemented by types able to issue tokens at login and
// extract user IDs from Authorization headers.
type Authenticator interface {
	IssueToken(userID, username string) (string, error)
	UserIDFromAuthHeader(header string) (string, error)
}

// Deduper prevents reprocessing of create requests that carry an
// Idempotency-Key header.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when the guarded
	// operation fails so the client may retry.
	Remove(ctx context.Context, userID, key string) error
}
