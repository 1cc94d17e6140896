package lfs

import "errors"

// Error taxonomy (§7). Each category is a sentinel; concrete failures wrap
// it with fmt.Errorf("%w: detail", ErrX) and are checked with errors.Is,
// the same idiom the teacher uses for ErrCorruptData, ErrParseError, and
// friends.
var (
	// ErrInvalidPointer means pointer bytes failed structural validation.
	ErrInvalidPointer = errors.New("invalid lfs pointer")

	// ErrInvalidConfig means the endpoint could not be resolved, or a
	// resolved config violates an invariant (e.g. a non-HTTPS endpoint).
	ErrInvalidConfig = errors.New("invalid lfs config")

	// ErrInsecureCredential means a token or basic credential would have
	// been attached to a non-HTTPS request.
	ErrInsecureCredential = errors.New("refusing to send credentials over a non-https endpoint")

	// ErrTransport covers network failure, a non-2xx HTTP status, or a
	// malformed JSON body.
	ErrTransport = errors.New("lfs transport error")

	// ErrBatchProtocol means a well-formed JSON batch response lacked a
	// required action, or otherwise violated the batch schema.
	ErrBatchProtocol = errors.New("lfs batch protocol error")

	// ErrIntegrity means a computed SHA-256 disagreed with the expected
	// OID.
	ErrIntegrity = errors.New("lfs object integrity check failed")

	// ErrSizeMismatch means a transferred byte count disagreed with the
	// declared size.
	ErrSizeMismatch = errors.New("lfs object size mismatch")

	// ErrCacheIO covers filesystem errors while accessing the object
	// cache.
	ErrCacheIO = errors.New("lfs cache io error")

	// ErrNotTracked is informational: clean was asked to run on a path
	// that is not under LFS. The filter recovers this locally by
	// returning the input unchanged; it is exported so callers composing
	// their own orchestration can recognize the same condition.
	ErrNotTracked = errors.New("path is not tracked by lfs")
)
