package outbound

import "context"

// MediaStoragePort abstracts durable storage for generated media.
type MediaStoragePort interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes every object under the given prefix.
	Delete(ctx context.Context, prefix string) error
}
