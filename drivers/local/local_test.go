package local_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/matryer/is"
	"github.com/srerickson/drive"
	"github.com/srerickson/drive/drivers/local"
	"github.com/srerickson/drive/drivetest"
	"golang.org/x/sync/errgroup"
)

func TestLocalDriver(t *testing.T) {
	is := is.New(t)
	d, err := local.NewDriver(t.TempDir())
	is.NoErr(err)
	drivetest.TestDriver(t, d)
}

func TestNew(t *testing.T) {
	t.Run("relative root", func(t *testing.T) {
		is := is.New(t)
		d, err := local.New(drive.Config{Driver: "local", Root: "."})
		is.NoErr(err)
		is.True(filepath.IsAbs(d.Root()))
		is.Equal(d.Name(), "local")
		is.Equal(d.Config().Root, d.Root())
	})
	t.Run("empty driver name", func(t *testing.T) {
		is := is.New(t)
		d, err := local.New(drive.Config{Root: t.TempDir()})
		is.NoErr(err)
		is.Equal(d.Config().Driver, "local")
	})
	t.Run("wrong driver", func(t *testing.T) {
		is := is.New(t)
		_, err := local.New(drive.Config{Driver: "s3", Root: t.TempDir()})
		is.True(err != nil)
	})
	t.Run("missing root", func(t *testing.T) {
		is := is.New(t)
		_, err := local.New(drive.Config{Driver: "local"})
		is.True(err != nil)
	})
}

func fileMode(t *testing.T, name string) string {
	t.Helper()
	info, err := os.Stat(name)
	if err != nil {
		t.Fatal(err)
	}
	return drive.ModeOctal(info.Mode())
}

func TestPutVisibility(t *testing.T) {
	ctx := context.Background()
	table := []struct {
		desc string
		opts *drive.WriteOptions
		mode string
	}{
		{desc: "default", opts: nil, mode: "0600"},
		{desc: "empty options", opts: &drive.WriteOptions{}, mode: "0600"},
		{desc: "private", opts: &drive.WriteOptions{Visibility: drive.VisibilityPrivate}, mode: "0600"},
		{desc: "public", opts: &drive.WriteOptions{Visibility: drive.VisibilityPublic}, mode: "0644"},
		{desc: "other", opts: &drive.WriteOptions{Visibility: "team"}, mode: "0600"},
	}
	for _, e := range table {
		t.Run("put: "+e.desc, func(t *testing.T) {
			is := is.New(t)
			root := t.TempDir()
			d, err := local.NewDriver(root)
			is.NoErr(err)
			is.NoErr(drive.PutString(ctx, d, "foo.txt", "hello world", e.opts))
			b, err := os.ReadFile(filepath.Join(root, "foo.txt"))
			is.NoErr(err)
			is.Equal(string(b), "hello world")
			is.Equal(fileMode(t, filepath.Join(root, "foo.txt")), e.mode)
		})
		t.Run("putstream: "+e.desc, func(t *testing.T) {
			is := is.New(t)
			root := t.TempDir()
			d, err := local.NewDriver(root)
			is.NoErr(err)
			is.NoErr(d.PutStream(ctx, "a/b/foo.txt", strings.NewReader("hello world"), e.opts))
			is.Equal(fileMode(t, filepath.Join(root, "a", "b", "foo.txt")), e.mode)
		})
	}
	t.Run("overwrite changes mode", func(t *testing.T) {
		is := is.New(t)
		root := t.TempDir()
		d, err := local.NewDriver(root)
		is.NoErr(err)
		name := filepath.Join(root, "foo.txt")
		is.NoErr(drive.PutString(ctx, d, "foo.txt", "public", &drive.WriteOptions{Visibility: drive.VisibilityPublic}))
		is.Equal(fileMode(t, name), "0644")
		is.NoErr(drive.PutString(ctx, d, "foo.txt", "private", nil))
		is.Equal(fileMode(t, name), "0600")
	})
}

func TestCopyMoveVisibility(t *testing.T) {
	ctx := context.Background()
	public := &drive.WriteOptions{Visibility: drive.VisibilityPublic}
	t.Run("copy keeps source mode", func(t *testing.T) {
		is := is.New(t)
		root := t.TempDir()
		d, err := local.NewDriver(root)
		is.NoErr(err)
		is.NoErr(drive.PutString(ctx, d, "src.txt", "content", public))
		is.NoErr(d.Copy(ctx, "src.txt", "dst.txt", nil))
		is.Equal(fileMode(t, filepath.Join(root, "dst.txt")), "0644")
	})
	t.Run("copy with options", func(t *testing.T) {
		is := is.New(t)
		root := t.TempDir()
		d, err := local.NewDriver(root)
		is.NoErr(err)
		is.NoErr(drive.PutString(ctx, d, "src.txt", "content", nil))
		is.NoErr(d.Copy(ctx, "src.txt", "dst.txt", public))
		is.Equal(fileMode(t, filepath.Join(root, "dst.txt")), "0644")
		is.Equal(fileMode(t, filepath.Join(root, "src.txt")), "0600")
	})
	t.Run("move with options", func(t *testing.T) {
		is := is.New(t)
		root := t.TempDir()
		d, err := local.NewDriver(root)
		is.NoErr(err)
		is.NoErr(drive.PutString(ctx, d, "src.txt", "content", public))
		is.NoErr(d.Move(ctx, "src.txt", "x/dst.txt", &drive.WriteOptions{}))
		is.Equal(fileMode(t, filepath.Join(root, "x", "dst.txt")), "0600")
	})
}

func TestLocations(t *testing.T) {
	ctx := context.Background()
	is := is.New(t)
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	d, err := local.NewDriver(root)
	is.NoErr(err)
	// file outside root
	is.NoErr(os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0600))
	for _, loc := range []string{"..", "../secret.txt", "a/../../secret.txt", "./../secret.txt", "a/b/../../../secret.txt"} {
		t.Run(fmt.Sprintf("invalid location %q", loc), func(t *testing.T) {
			is := is.New(t)
			_, err := d.Get(ctx, loc)
			is.True(errors.Is(err, fs.ErrInvalid))
			var pathErr *fs.PathError
			is.True(errors.As(err, &pathErr))
			is.Equal(pathErr.Path, loc) // error uses location, not host path
			err = d.Put(ctx, loc, []byte("x"), nil)
			is.True(errors.Is(err, fs.ErrInvalid))
			_, err = d.Exists(ctx, loc)
			is.True(errors.Is(err, fs.ErrInvalid))
			err = d.Delete(ctx, loc)
			is.True(errors.Is(err, fs.ErrInvalid))
		})
	}
	cleaned := []struct {
		loc  string
		host string
	}{
		{loc: "a//b.txt", host: "a/b.txt"},
		{loc: "./c.txt", host: "c.txt"},
		{loc: "x/../d.txt", host: "d.txt"},
		{loc: "/e.txt", host: "e.txt"},
		{loc: "/../f.txt", host: "f.txt"},
	}
	for _, e := range cleaned {
		t.Run(fmt.Sprintf("cleaned location %q", e.loc), func(t *testing.T) {
			is := is.New(t)
			is.NoErr(drive.PutString(ctx, d, e.loc, e.loc, nil))
			b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(e.host)))
			is.NoErr(err) // written under root
			is.Equal(string(b), e.loc)
			got, err := drive.GetString(ctx, d, e.loc)
			is.NoErr(err)
			is.Equal(got, e.loc)
			ok, err := d.Exists(ctx, e.host)
			is.NoErr(err)
			is.True(ok)
			is.NoErr(d.Delete(ctx, e.loc))
			ok, err = d.Exists(ctx, e.host)
			is.NoErr(err)
			is.True(!ok)
		})
	}
	t.Run("root can't be deleted", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(drive.PutString(ctx, d, "a.txt", "a", nil))
		for _, loc := range []string{".", "", "/", "a/.."} {
			is.True(d.Delete(ctx, loc) != nil) // root location
		}
		ok, err := d.Exists(ctx, "a.txt")
		is.NoErr(err)
		is.True(ok)
	})
	t.Run("root can't be moved", func(t *testing.T) {
		is := is.New(t)
		is.True(d.Move(ctx, ".", "b", nil) != nil)
		is.True(d.Copy(ctx, "a.txt", ".", nil) != nil)
		is.True(d.Put(ctx, ".", []byte("x"), nil) != nil)
		is.True(d.Put(ctx, "", []byte("x"), nil) != nil)
		is.True(d.Copy(ctx, "a.txt", "/", nil) != nil)
	})
	t.Run("file onto parent directory", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(drive.PutString(ctx, d, "m/b.txt", "b", nil))
		is.NoErr(drive.PutString(ctx, d, "m/keep.txt", "keep", nil))
		is.True(d.Copy(ctx, "m/b.txt", "m", nil) != nil)
		is.True(d.Move(ctx, "m/b.txt", "m", nil) != nil)
		for _, f := range []string{"m/b.txt", "m/keep.txt"} {
			ok, err := d.Exists(ctx, f)
			is.NoErr(err)
			is.True(ok) // nothing removed
		}
	})
	t.Run("file onto directory", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(drive.PutString(ctx, d, "x.txt", "x", nil))
		is.NoErr(drive.PutString(ctx, d, "dir/other.txt", "other", nil))
		is.True(d.Copy(ctx, "x.txt", "dir", nil) != nil)
		is.True(d.Move(ctx, "x.txt", "dir", nil) != nil)
		got, err := drive.GetString(ctx, d, "dir/other.txt")
		is.NoErr(err) // directory contents kept
		is.Equal(got, "other")
		ok, err := d.Exists(ctx, "x.txt")
		is.NoErr(err)
		is.True(ok)
	})
	t.Run("copy missing source", func(t *testing.T) {
		is := is.New(t)
		err := d.Copy(ctx, "missing.txt", "n/e/w.txt", nil)
		is.True(errors.Is(err, fs.ErrNotExist))
		_, err = os.Stat(filepath.Join(root, "n"))
		is.True(errors.Is(err, fs.ErrNotExist)) // no directories created
	})
	t.Run("missing file error path", func(t *testing.T) {
		is := is.New(t)
		_, err := d.Get(ctx, "missing/file.txt")
		is.True(errors.Is(err, fs.ErrNotExist))
		var pathErr *fs.PathError
		is.True(errors.As(err, &pathErr))
		is.Equal(pathErr.Path, "missing/file.txt")
	})
}

func TestConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	is := is.New(t)
	d, err := local.NewDriver(t.TempDir())
	is.NoErr(err)
	grp, grpCtx := errgroup.WithContext(ctx)
	for i := 0; i < 32; i++ {
		grp.Go(func() error {
			name := fmt.Sprintf("dir-%d/file-%d.txt", i%4, i)
			return drive.PutString(grpCtx, d, name, name, nil)
		})
	}
	is.NoErr(grp.Wait())
	for i := 0; i < 32; i++ {
		name := fmt.Sprintf("dir-%d/file-%d.txt", i%4, i)
		got, err := drive.GetString(ctx, d, name)
		is.NoErr(err)
		is.Equal(got, name)
	}
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	is := is.New(t)
	var msgs []string
	log := funcr.New(func(prefix, args string) {
		msgs = append(msgs, args)
	}, funcr.Options{Verbosity: drive.LevelDebug})
	d, err := local.NewDriver(t.TempDir(), local.WithLogger(log))
	is.NoErr(err)
	is.NoErr(drive.PutString(ctx, d, "a.txt", "a", nil))
	_, err = d.Exists(ctx, "a.txt")
	is.NoErr(err)
	is.Equal(len(msgs), 2)
	is.True(strings.Contains(msgs[0], `"put"`))
	is.True(strings.Contains(msgs[0], `"a.txt"`))
}

// brokenAdapter fails every write
type brokenAdapter struct {
	local.OSAdapter
	err error
}

func (a brokenAdapter) WriteFile(string, io.Reader, fs.FileMode) (int64, error) {
	return 0, a.err
}

func (a brokenAdapter) Stat(name string) (fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: name, Err: a.err}
}

func TestWithAdapter(t *testing.T) {
	ctx := context.Background()
	is := is.New(t)
	root := t.TempDir()
	adapterErr := fs.ErrPermission
	d, err := local.NewDriver(root, local.WithAdapter(brokenAdapter{err: adapterErr}))
	is.NoErr(err)
	err = drive.PutString(ctx, d, "a.txt", "a", nil)
	is.True(errors.Is(err, fs.ErrPermission)) // adapter error propagates
	_, err = d.Exists(ctx, "a.txt")
	is.True(errors.Is(err, fs.ErrPermission)) // not-exist is the only error hidden by Exists
	var pathErr *fs.PathError
	is.True(errors.As(err, &pathErr))
	is.Equal(pathErr.Path, "a.txt")
	_, err = d.GetStats(ctx, "a.txt")
	is.True(errors.Is(err, fs.ErrPermission))
}

func TestUnsupportedMessages(t *testing.T) {
	ctx := context.Background()
	is := is.New(t)
	d, err := local.NewDriver(t.TempDir())
	is.NoErr(err)
	_, err = d.GetURL(ctx, "a.txt")
	is.Equal(err.Error(), `method "GetURL" is not supported by the "local" driver`)
	err = d.SetVisibility(ctx, "a.txt", drive.VisibilityPublic)
	is.Equal(err.Error(), `method "SetVisibility" is not supported by the "local" driver`)
	var nsErr *drive.MethodNotSupportedError
	is.True(errors.As(err, &nsErr))
	is.Equal(nsErr.Code(), "E_METHOD_NOT_SUPPORTED")
	is.Equal(nsErr.Status(), 500)
	is.True(!drive.Supports(d, "GetURL"))
	is.True(drive.Supports(d, "Put"))
}
