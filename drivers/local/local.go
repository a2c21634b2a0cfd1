// Package local implements drive.Driver for a directory on the local disk.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/srerickson/drive"
)

// Name is the name of the local driver.
const Name = drive.DriverLocal

var unsupported = []string{"GetVisibility", "GetSignedURL", "GetURL", "SetVisibility"}

// Driver is a drive.Driver for files under a root directory. It holds no
// mutable state and is safe for concurrent use.
type Driver struct {
	cfg     drive.Config
	adapter Adapter
	log     logr.Logger
}

var (
	_ drive.Driver       = (*Driver)(nil)
	_ drive.Capabilities = (*Driver)(nil)
)

// Option is used to configure a Driver in New.
type Option func(*Driver)

// WithAdapter sets the host filesystem used by the driver. The default is
// OSAdapter.
func WithAdapter(a Adapter) Option {
	return func(d *Driver) {
		d.adapter = a
	}
}

// WithLogger sets the driver's logger. Operations are logged at
// drive.LevelDebug.
func WithLogger(l logr.Logger) Option {
	return func(d *Driver) {
		d.log = l
	}
}

// New returns a Driver for cfg. The root directory in cfg is converted to an
// absolute path; it doesn't need to exist.
func New(cfg drive.Config, opts ...Option) (*Driver, error) {
	if cfg.Driver == "" {
		cfg.Driver = Name
	}
	if cfg.Driver != Name {
		return nil, fmt.Errorf("new local driver: invalid driver config: '%s'", cfg.Driver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new local driver: %w", err)
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("new local driver: %w", err)
	}
	cfg.Root = abs
	d := &Driver{
		cfg:     cfg,
		adapter: OSAdapter{},
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NewDriver is shorthand for New with a local driver config for root.
func NewDriver(root string, opts ...Option) (*Driver, error) {
	return New(drive.Config{Driver: Name, Root: root}, opts...)
}

// Name returns "local".
func (d *Driver) Name() string { return Name }

// Root returns the absolute path of the driver's root directory.
func (d *Driver) Root() string { return d.cfg.Root }

// Config returns the driver's configuration.
func (d *Driver) Config() drive.Config { return d.cfg }

// Unsupported implements drive.Capabilities.
func (d *Driver) Unsupported() []string {
	return append([]string(nil), unsupported...)
}

// Exists reports whether a file or directory exists at location.
func (d *Driver) Exists(ctx context.Context, location string) (bool, error) {
	d.log.V(drive.LevelDebug).Info("exists", "location", location)
	full, err := d.osPath(ctx, "exists", location)
	if err != nil {
		return false, err
	}
	if _, err := d.adapter.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, pathErr("exists", location, err)
	}
	return true, nil
}

// Get returns the contents of the file at location.
func (d *Driver) Get(ctx context.Context, location string) ([]byte, error) {
	d.log.V(drive.LevelDebug).Info("get", "location", location)
	f, err := d.open(ctx, "get", location)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, pathErr("get", location, err)
	}
	return b, nil
}

// GetStream opens the file at location for reading.
func (d *Driver) GetStream(ctx context.Context, location string) (io.ReadCloser, error) {
	d.log.V(drive.LevelDebug).Info("get stream", "location", location)
	return d.open(ctx, "getstream", location)
}

// GetVisibility is not supported.
func (d *Driver) GetVisibility(context.Context, string) (drive.Visibility, error) {
	return "", drive.NotSupported("GetVisibility", Name)
}

// GetStats returns the size and modification time of location.
func (d *Driver) GetStats(ctx context.Context, location string) (*drive.Stats, error) {
	d.log.V(drive.LevelDebug).Info("get stats", "location", location)
	full, err := d.osPath(ctx, "stat", location)
	if err != nil {
		return nil, err
	}
	info, err := d.adapter.Stat(full)
	if err != nil {
		return nil, pathErr("stat", location, err)
	}
	return &drive.Stats{
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

// GetSignedURL is not supported.
func (d *Driver) GetSignedURL(context.Context, string) (string, error) {
	return "", drive.NotSupported("GetSignedURL", Name)
}

// GetURL is not supported.
func (d *Driver) GetURL(context.Context, string) (string, error) {
	return "", drive.NotSupported("GetURL", Name)
}

// Put writes contents to location with permissions based on the visibility
// in opts: 0644 for public and 0600 otherwise.
func (d *Driver) Put(ctx context.Context, location string, contents []byte, opts *drive.WriteOptions) error {
	d.log.V(drive.LevelDebug).Info("put", "location", location, "size", len(contents))
	return d.write(ctx, "put", location, bytes.NewReader(contents), opts)
}

// PutStream writes everything read from r to location. Permissions are set
// as in Put. If reading from r fails, the error is returned and the partially
// written file is left in place.
func (d *Driver) PutStream(ctx context.Context, location string, r io.Reader, opts *drive.WriteOptions) error {
	d.log.V(drive.LevelDebug).Info("put stream", "location", location)
	return d.write(ctx, "putstream", location, r, opts)
}

// SetVisibility is not supported.
func (d *Driver) SetVisibility(context.Context, string, drive.Visibility) error {
	return drive.NotSupported("SetVisibility", Name)
}

// Delete removes location and everything under it. It returns nil if
// location doesn't exist. The root directory can't be deleted.
func (d *Driver) Delete(ctx context.Context, location string) error {
	d.log.V(drive.LevelDebug).Info("delete", "location", location)
	full, err := d.osPath(ctx, "delete", location)
	if err != nil {
		return err
	}
	if full == d.cfg.Root {
		return pathErr("delete", location, errors.New("cannot remove root directory"))
	}
	if err := d.adapter.RemoveAll(full); err != nil {
		return pathErr("delete", location, err)
	}
	return nil
}

// Copy copies the file or directory src to dst. An existing dst file is
// replaced and an existing dst directory is merged into. A file can't be
// copied over a directory or the reverse. If opts is not nil, dst's
// permissions are set from its visibility; otherwise src's permissions are
// kept.
func (d *Driver) Copy(ctx context.Context, src, dst string, opts *drive.WriteOptions) error {
	d.log.V(drive.LevelDebug).Info("copy", "src", src, "dst", dst)
	return d.transfer(ctx, "copy", src, dst, opts, d.adapter.Copy)
}

// Move moves the file or directory src to dst, replacing an existing dst of
// the same kind. Permissions are handled as in Copy.
func (d *Driver) Move(ctx context.Context, src, dst string, opts *drive.WriteOptions) error {
	d.log.V(drive.LevelDebug).Info("move", "src", src, "dst", dst)
	return d.transfer(ctx, "move", src, dst, opts, d.adapter.Move)
}

func (d *Driver) open(ctx context.Context, op, location string) (io.ReadCloser, error) {
	full, err := d.osPath(ctx, op, location)
	if err != nil {
		return nil, err
	}
	f, err := d.adapter.Open(full)
	if err != nil {
		return nil, pathErr(op, location, err)
	}
	return f, nil
}

func (d *Driver) write(ctx context.Context, op, location string, r io.Reader, opts *drive.WriteOptions) error {
	full, err := d.osPath(ctx, op, location)
	if err != nil {
		return err
	}
	if full == d.cfg.Root {
		return pathErr(op, location, errors.New("cannot write to root directory"))
	}
	mode := opts.Mode()
	if err := d.adapter.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return pathErr(op, location, err)
	}
	if _, err := d.adapter.WriteFile(full, r, mode); err != nil {
		return pathErr(op, location, err)
	}
	return nil
}

func (d *Driver) transfer(ctx context.Context, op, src, dst string, opts *drive.WriteOptions, fn func(src, dst string) error) error {
	fullSrc, err := d.osPath(ctx, op, src)
	if err != nil {
		return err
	}
	fullDst, err := d.osPath(ctx, op, dst)
	if err != nil {
		return err
	}
	if fullSrc == d.cfg.Root || fullDst == d.cfg.Root {
		return pathErr(op, src, errors.New("cannot copy or move the root directory"))
	}
	if _, err := d.adapter.Stat(fullSrc); err != nil {
		return pathErr(op, src, err)
	}
	if err := d.adapter.MkdirAll(filepath.Dir(fullDst), dirPerm); err != nil {
		return pathErr(op, dst, err)
	}
	if err := fn(fullSrc, fullDst); err != nil {
		return pathErr(op, src, err)
	}
	if opts == nil {
		return nil
	}
	info, err := d.adapter.Stat(fullDst)
	if err != nil {
		return pathErr(op, dst, err)
	}
	if info.Mode().IsRegular() {
		if err := d.adapter.Chmod(fullDst, opts.Mode()); err != nil {
			return pathErr(op, dst, err)
		}
	}
	return nil
}

// osPath returns the host path for location under the driver root. The
// location is cleaned and a leading "/" is dropped, so "/a//b" and "x/../a/b"
// both name "a/b". Locations that clean to something outside the root fail
// with fs.ErrInvalid. Empty and "." locations name the root itself.
func (d *Driver) osPath(ctx context.Context, op, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", pathErr(op, location, err)
	}
	clean := strings.TrimPrefix(path.Clean(location), "/")
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", pathErr(op, location, fs.ErrInvalid)
	}
	return filepath.Join(d.cfg.Root, filepath.FromSlash(clean)), nil
}

// pathErr wraps err in an *fs.PathError for location. If err is already an
// *fs.PathError, its host path is replaced with location.
func pathErr(op, location string, err error) error {
	return &fs.PathError{
		Op:   op,
		Path: location,
		Err:  unwrapHostPath(err),
	}
}

// unwrapHostPath strips the outer *fs.PathError or *os.LinkError, which
// carry host paths.
func unwrapHostPath(err error) error {
	switch e := err.(type) {
	case *fs.PathError:
		return e.Err
	case *os.LinkError:
		return e.Err
	}
	return err
}
