// Package drive defines a uniform contract for file storage drivers. Code
// written against [Driver] can read, write, copy, move, delete and inspect
// files without knowing which backend holds them. The local disk
// implementation lives in [github.com/srerickson/drive/drivers/local].
package drive

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// LevelDebug is the logr verbosity used by drivers for per-operation
// messages.
const LevelDebug = 1

// Visibility is a backend-defined access level for a stored file.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// WriteOptions are per-call options for writing, copying and moving files. A
// nil *WriteOptions is the same as private visibility.
type WriteOptions struct {
	Visibility Visibility
}

// visibility returns the requested visibility, defaulting to private.
func (opts *WriteOptions) visibility() Visibility {
	if opts == nil || opts.Visibility == "" {
		return VisibilityPrivate
	}
	return opts.Visibility
}

// Mode returns the file mode for the options' visibility.
func (opts *WriteOptions) Mode() fs.FileMode {
	return VisibilityMode(opts.visibility())
}

// Stats is a snapshot of a file's size and modification time.
type Stats struct {
	Size     int64
	Modified time.Time
}

// Driver is the set of operations every storage driver exposes. Operations a
// backend can't perform must fail with a *MethodNotSupportedError rather than
// doing nothing. Locations are slash-separated paths relative to the driver's
// root.
type Driver interface {
	// Name of the driver, e.g. "local"
	Name() string

	// Exists reports whether an entry exists at location.
	Exists(ctx context.Context, location string) (bool, error)

	// Get returns the contents of the file at location.
	Get(ctx context.Context, location string) ([]byte, error)

	// GetStream opens the file at location for reading. The caller must close
	// the returned reader.
	GetStream(ctx context.Context, location string) (io.ReadCloser, error)

	// GetVisibility returns the visibility of the file at location.
	GetVisibility(ctx context.Context, location string) (Visibility, error)

	// GetStats returns the size and modification time of the file at
	// location.
	GetStats(ctx context.Context, location string) (*Stats, error)

	// GetSignedURL returns a time-limited URL for location.
	GetSignedURL(ctx context.Context, location string) (string, error)

	// GetURL returns a public URL for location.
	GetURL(ctx context.Context, location string) (string, error)

	// Put writes contents to location, creating or replacing the file. Missing
	// intermediate directories are created.
	Put(ctx context.Context, location string, contents []byte, opts *WriteOptions) error

	// PutStream writes everything read from r to location. Missing
	// intermediate directories are created. It returns once r is drained or
	// an error occurs.
	PutStream(ctx context.Context, location string, r io.Reader, opts *WriteOptions) error

	// SetVisibility updates the visibility of the file at location.
	SetVisibility(ctx context.Context, location string, vis Visibility) error

	// Delete removes location and anything under it. Deleting a location that
	// doesn't exist is not an error.
	Delete(ctx context.Context, location string) error

	// Copy copies src to dst, replacing dst if it exists. Missing
	// intermediate directories are created.
	Copy(ctx context.Context, src, dst string, opts *WriteOptions) error

	// Move moves src to dst, replacing dst if it exists. Missing intermediate
	// directories are created.
	Move(ctx context.Context, src, dst string, opts *WriteOptions) error
}

// Capabilities is implemented by drivers that don't support every method of
// the Driver interface.
type Capabilities interface {
	// Unsupported returns the names of methods that always fail with a
	// *MethodNotSupportedError.
	Unsupported() []string
}

// Supports reports whether d supports the named method (e.g. "GetURL"). Drivers
// that don't implement Capabilities are assumed to support everything.
func Supports(d Driver, method string) bool {
	caps, ok := d.(Capabilities)
	if !ok {
		return true
	}
	for _, m := range caps.Unsupported() {
		if m == method {
			return false
		}
	}
	return true
}

// PutString writes the string s to location in d.
func PutString(ctx context.Context, d Driver, location string, s string, opts *WriteOptions) error {
	return d.Put(ctx, location, []byte(s), opts)
}

// GetString returns the contents of location in d as a string.
func GetString(ctx context.Context, d Driver, location string) (string, error) {
	b, err := d.Get(ctx, location)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
