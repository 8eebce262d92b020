package heirloom

import "context"

// ContentStore is the off-ledger store for encrypted payloads. Identifiers
// are content-derived, so storing the same bytes twice is safe.
type ContentStore interface {
	// Upload stores data and returns its content identifier. A failure is
	// reported as an UploadError after a single attempt.
	Upload(ctx context.Context, name string, data []byte) (string, error)

	// Fetch retrieves the bytes for a content identifier.
	Fetch(ctx context.Context, contentHash string) ([]byte, error)

	// ResolveURL returns a fetchable locator for a content identifier.
	ResolveURL(contentHash string) string
}
