package bucketfront

import (
	"context"
	"time"
)

// Storage defines the operations the gateway needs from an object store.
// Implementations can use S3, MinIO, R2, or any store that issues
// time-limited access URLs.
//
// All methods accept a context for cancellation and timeout control.
type Storage interface {
	// Exists reports whether an object is present under key.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: The object key to probe
	//
	// Returns:
	//   - bool: true if the object exists
	//   - error: Transport or authorization failures. A missing object is
	//     (false, nil), never an error.
	Exists(ctx context.Context, key ObjectKey) (bool, error)

	// Sign produces a URL that grants method access to key for expires.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - method: The HTTP method the URL will be used with (GET or HEAD)
	//   - key: The object key to grant access to
	//   - expires: Validity window of the URL
	//
	// Returns:
	//   - SignedURL: The signed URL
	//   - error: Any credential or signing error
	//
	// Signing is typically local computation, but implementations may need
	// to refresh credentials over the network.
	Sign(ctx context.Context, method string, key ObjectKey, expires time.Duration) (SignedURL, error)
}
