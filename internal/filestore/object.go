package filestore

import (
	"io"
	"strings"
	"time"

	"github.com/koustreak/dbframe/internal/errs"
)

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "exports/orders.csv").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type (e.g. "text/csv").
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	LastModified time.Time
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// Ref names one object as "bucket/key".
type Ref struct {
	Bucket string
	Key    string
}

func (r Ref) String() string { return r.Bucket + "/" + r.Key }

// ParseRef splits "bucket/key". A reference without a slash is a key in
// defaultBucket.
func ParseRef(s, defaultBucket string) (Ref, error) {
	bucket, key, ok := strings.Cut(s, "/")
	if !ok {
		bucket, key = defaultBucket, s
	}
	if bucket == "" || key == "" {
		return Ref{}, errs.Newf(errs.ErrKindInvalidInput, "object reference %q must be BUCKET/KEY", s)
	}
	return Ref{Bucket: bucket, Key: key}, nil
}
