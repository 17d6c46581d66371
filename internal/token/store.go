package token

import "context"

// RefreshStore persists one-time refresh token records. A record exists if and
// only if its token has not been redeemed yet.
type RefreshStore interface {
	Create(ctx context.Context, tokenID, userID string) error

	// Consume atomically removes the record matching tokenID and userID and
	// reports whether it existed. Of any number of concurrent consumers of the
	// same token id, at most one observes true.
	Consume(ctx context.Context, tokenID, userID string) (bool, error)

	// Delete removes a record unconditionally, e.g. on logout.
	Delete(ctx context.Context, tokenID string) error
}
