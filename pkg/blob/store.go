// Package blob defines the content-addressed object store behind the file
// server. Object keys are produced by the metadata layer (metadata.ObjectKeyFor)
// and embed the tenant, path, and version, so every write lands on a fresh
// key and readers never observe a partially overwritten object.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound indicates the requested object does not exist.
//
// Handlers map this to 404 on direct reads; seeing it for an object key a
// ready metadata entry points at means the stores have drifted apart and is
// surfaced as an internal error instead.
var ErrObjectNotFound = errors.New("object not found")

// ByteRange is an inclusive byte range within an object, matching the
// semantics of an HTTP Range header after parsing and clamping.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// Store is the object storage gateway.
//
// Implementations must be safe for concurrent use. Writes are whole-object
// and last-write-wins; there is no append or partial update, the two-phase
// write protocol in the metadata layer makes fresh keys instead.
type Store interface {
	// Get returns a reader over the object's content and the content
	// length being returned. A non-nil rng requests the inclusive byte
	// range rng.Start..rng.End; the caller is responsible for clamping
	// the range to the object size first. The caller must close the
	// returned reader. ErrObjectNotFound if the key is absent.
	Get(ctx context.Context, key string, rng *ByteRange) (io.ReadCloser, int64, error)

	// Put stores data under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the object under key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Healthcheck verifies the store can serve requests.
	Healthcheck(ctx context.Context) error
}
