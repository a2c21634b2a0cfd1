package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

const dirPerm = 0755

// Adapter is the host filesystem used by the local Driver. All names are
// host paths already resolved against the driver's root.
type Adapter interface {
	Stat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	MkdirAll(name string, perm fs.FileMode) error
	// WriteFile creates or truncates name with permissions perm and copies r
	// into it. The permissions are set even if name already exists.
	WriteFile(name string, r io.Reader, perm fs.FileMode) (int64, error)
	Chmod(name string, perm fs.FileMode) error
	// RemoveAll removes name and any children. It returns nil if name
	// doesn't exist.
	RemoveAll(name string) error
	// Copy recursively copies src to dst. A directory is merged into an
	// existing dst directory; a file replaces an existing dst file. A file
	// can't replace a directory or the reverse.
	Copy(src, dst string) error
	// Move renames src to dst, replacing dst if it exists and is the same
	// kind (file or directory) as src.
	Move(src, dst string) error
}

// OSAdapter implements Adapter using the os package.
type OSAdapter struct{}

var _ Adapter = OSAdapter{}

func (OSAdapter) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (OSAdapter) Open(name string) (io.ReadCloser, error) { return os.Open(name) }

func (OSAdapter) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }

func (OSAdapter) Chmod(name string, perm fs.FileMode) error { return os.Chmod(name, perm) }

func (OSAdapter) RemoveAll(name string) error { return os.RemoveAll(name) }

func (OSAdapter) WriteFile(name string, r io.Reader, perm fs.FileMode) (int64, error) {
	dst, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return 0, err
	}
	// the umask may have masked perm on create, and an existing file keeps
	// its old mode
	if err := dst.Chmod(perm); err != nil {
		dst.Close()
		return 0, err
	}
	n, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		return n, err
	}
	return n, dst.Close()
}

func (a OSAdapter) Copy(src, dst string) error {
	info, err := checkTransfer("copy", src, dst)
	if err != nil {
		return err
	}
	if info.IsDir() {
		// merge into dst if it exists
		return a.copyDir(src, dst)
	}
	if !info.Mode().IsRegular() {
		return errors.New("source is not a regular file or directory")
	}
	return a.copyFile(src, dst, info.Mode().Perm())
}

func (a OSAdapter) copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, name)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			return a.copyFile(name, target, info.Mode().Perm())
		default:
			// skip irregular files (symlinks, sockets, ...)
			return nil
		}
	})
}

func (a OSAdapter) copyFile(src, dst string, perm fs.FileMode) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = a.WriteFile(dst, f, perm)
	return err
}

func (a OSAdapter) Move(src, dst string) error {
	if sameFile(src, dst) {
		return nil
	}
	if _, err := checkTransfer("move", src, dst); err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		// different devices: copy then remove
		if err := a.Copy(src, dst); err != nil {
			return err
		}
		return os.RemoveAll(src)
	}
	return err
}

// checkTransfer returns src's FileInfo if src can be copied or moved to dst.
// Nothing is modified, so a rejected transfer leaves both sides intact.
func checkTransfer(op, src, dst string) (fs.FileInfo, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if sameFile(src, dst) {
		return nil, fmt.Errorf("source and destination are the same: %s", src)
	}
	if isSubdir(dst, src) {
		return nil, fmt.Errorf("cannot %s %s to a parent directory of itself", op, src)
	}
	if info.IsDir() && isSubdir(src, dst) {
		return nil, fmt.Errorf("cannot %s %s to a subdirectory of itself", op, src)
	}
	dstInfo, err := os.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return info, nil
	case err != nil:
		return nil, err
	case info.IsDir() && !dstInfo.IsDir():
		return nil, fmt.Errorf("cannot overwrite non-directory %s with directory", dst)
	case !info.IsDir() && dstInfo.IsDir():
		return nil, fmt.Errorf("cannot overwrite directory %s with non-directory", dst)
	}
	return info, nil
}

func sameFile(a, b string) bool {
	aInfo, err := os.Stat(a)
	if err != nil {
		return false
	}
	bInfo, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(aInfo, bInfo)
}

// isSubdir reports whether child is inside dir.
func isSubdir(dir, child string) bool {
	rel, err := filepath.Rel(dir, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !filepath.IsAbs(rel) &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
