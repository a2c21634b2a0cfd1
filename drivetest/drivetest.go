// Package drivetest is a test suite for drive.Driver implementations.
package drivetest

// Test suite for drive.Driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/srerickson/drive"
)

var (
	// parent directory for the test
	prefix    = fmt.Sprintf("drive-test-%d", time.Now().Unix())
	testFiles = []string{
		"a.txt",
		"a/b.txt",
		"a/b/c.txt",
		"a/b/c/d.txt",
	}
)

// TestDriver is the complete test suite for drive.Driver
func TestDriver(t *testing.T, d drive.Driver) {
	is := is.New(t)
	ctx := context.Background()

	// confirm buildTestDir works
	is.NoErr(buildTestDir(ctx, d))
	for _, f := range testFiles {
		ok, err := d.Exists(ctx, path.Join(prefix, f))
		is.NoErr(err)
		is.True(ok) // test file exists
	}

	// actual tests
	TestPut(t, d)
	TestPutStream(t, d)
	TestGetStats(t, d)
	TestDelete(t, d)
	TestCopy(t, d)
	TestMove(t, d)
	TestUnsupported(t, d)

	// cleanup
	is.NoErr(d.Delete(ctx, prefix))
}

func buildTestDir(ctx context.Context, d drive.Driver) error {
	if err := d.Delete(ctx, prefix); err != nil {
		return err
	}
	for _, f := range testFiles {
		f = path.Join(prefix, f)
		if err := drive.PutString(ctx, d, f, f, nil); err != nil {
			return fmt.Errorf("creating test files: %w", err)
		}
	}
	return nil
}

func TestPut(t *testing.T, d drive.Driver) {
	ctx := context.Background()
	type tableEntry struct {
		desc string
		name string
		err  bool
	}
	table := []tableEntry{
		{desc: "existing file", name: "a.txt"},
		{desc: "new file", name: "a2.txt"},
		{desc: "new file in new subdir", name: "x/y/z/f.txt"},
		{desc: "existing directory", name: "a/b/c", err: true},
		{desc: "parent", name: "..", err: true},
		{desc: "unclean path", name: "a/../a2.txt"},
		{desc: "escaping path", name: "../../a2.txt", err: true},
	}
	for _, e := range table {
		t.Run("put: "+e.desc, func(t *testing.T) {
			is := is.New(t)
			is.NoErr(buildTestDir(ctx, d))
			cont := []byte("new contents-" + e.name)
			f := prefix + "/" + e.name
			err := d.Put(ctx, f, cont, nil)
			if e.err {
				is.True(err != nil) // expected an error
				return
			}
			is.NoErr(err)
			got, err := d.Get(ctx, f)
			is.NoErr(err)
			is.Equal(got, cont) // round-trip
			ok, err := d.Exists(ctx, f)
			is.NoErr(err)
			is.True(ok)
		})
	}
	t.Run("put: empty contents", func(t *testing.T) {
		is := is.New(t)
		f := prefix + "/empty.txt"
		is.NoErr(d.Put(ctx, f, nil, nil))
		got, err := d.Get(ctx, f)
		is.NoErr(err)
		is.Equal(len(got), 0)
	})
	t.Run("put: canceled context", func(t *testing.T) {
		is := is.New(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		f := prefix + "/canceled.txt"
		err := d.Put(cctx, f, []byte("contents"), nil)
		is.True(errors.Is(err, context.Canceled))
		ok, err := d.Exists(ctx, f)
		is.NoErr(err)
		is.True(!ok) // file shouldn't be written
	})
}

type failReader struct {
	n   int
	err error
}

func (r *failReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		return 0, r.err
	}
	n := min(len(p), r.n)
	for i := range p[:n] {
		p[i] = 'x'
	}
	r.n -= n
	return n, nil
}

func TestPutStream(t *testing.T, d drive.Driver) {
	ctx := context.Background()
	t.Run("putstream: round-trip", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(buildTestDir(ctx, d))
		cont := bytes.Repeat([]byte("0123456789"), 10_000)
		f := prefix + "/stream/s.bin"
		is.NoErr(d.PutStream(ctx, f, bytes.NewReader(cont), nil))
		r, err := d.GetStream(ctx, f)
		is.NoErr(err)
		defer r.Close()
		got, err := io.ReadAll(r)
		is.NoErr(err)
		is.True(bytes.Equal(got, cont)) // stream round-trip
	})
	t.Run("putstream: source error", func(t *testing.T) {
		is := is.New(t)
		srcErr := errors.New("source failed")
		f := prefix + "/stream/fail.bin"
		err := d.PutStream(ctx, f, &failReader{n: 1024, err: srcErr}, nil)
		is.True(errors.Is(err, srcErr)) // source error is returned
	})
	t.Run("getstream: missing file", func(t *testing.T) {
		is := is.New(t)
		_, err := d.GetStream(ctx, prefix+"/stream/missing.bin")
		is.True(errors.Is(err, fs.ErrNotExist))
	})
}

func TestGetStats(t *testing.T, d drive.Driver) {
	ctx := context.Background()
	t.Run("getstats: size", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(buildTestDir(ctx, d))
		cont := "hello world"
		f := prefix + "/stats.txt"
		before := time.Now().Add(-time.Minute)
		is.NoErr(drive.PutString(ctx, d, f, cont, nil))
		stats, err := d.GetStats(ctx, f)
		is.NoErr(err)
		is.Equal(stats.Size, int64(len(cont)))
		is.True(stats.Modified.After(before))
	})
	t.Run("getstats: missing file", func(t *testing.T) {
		is := is.New(t)
		_, err := d.GetStats(ctx, prefix+"/missing.txt")
		is.True(errors.Is(err, fs.ErrNotExist))
	})
	t.Run("get: missing file", func(t *testing.T) {
		is := is.New(t)
		_, err := d.Get(ctx, prefix+"/missing.txt")
		is.True(errors.Is(err, fs.ErrNotExist))
	})
}

func TestDelete(t *testing.T, d drive.Driver) {
	ctx := context.Background()
	type tableEntry struct {
		name    string
		removed []string
		err     bool
	}
	table := []tableEntry{
		// file that exists - no error
		{name: "a.txt", removed: []string{"a.txt"}},
		// file that does not exist - no error
		{name: "a2.txt"},
		// directory that exists - no error
		{name: "a/b", removed: []string{"a/b/c.txt", "a/b/c/d.txt"}},
		{name: "a", removed: []string{"a/b.txt", "a/b/c.txt", "a/b/c/d.txt"}},
		// directory that doesn't exist - no error
		{name: "a2"},
		// unclean path to existing file - no error
		{name: "a/../a.txt", removed: []string{"a.txt"}},
		// errors:
		{name: "../../a.txt", err: true},
		{name: "..", err: true},
	}
	for _, e := range table {
		t.Run("delete: "+e.name, func(t *testing.T) {
			is := is.New(t)
			is.NoErr(buildTestDir(ctx, d))
			f := prefix + "/" + e.name
			err := d.Delete(ctx, f)
			if e.err {
				is.True(err != nil) // expecting an error
			} else {
				is.NoErr(err)
				ok, err := d.Exists(ctx, f)
				is.NoErr(err)
				is.True(!ok)
			}
			for _, tf := range testFiles {
				ok, err := d.Exists(ctx, prefix+"/"+tf)
				is.NoErr(err)
				is.Equal(ok, !contains(e.removed, tf))
			}
		})
	}
	t.Run("delete: twice", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(buildTestDir(ctx, d))
		f := prefix + "/a.txt"
		is.NoErr(d.Delete(ctx, f))
		is.NoErr(d.Delete(ctx, f)) // idempotent
	})
}

type transferFunc func(ctx context.Context, src, dst string, opts *drive.WriteOptions) error

// TestCopy checks Copy. Copying a directory onto an existing directory merges
// the two.
func TestCopy(t *testing.T, d drive.Driver) {
	testTransfer(t, d, "copy", d.Copy, true)
}

// TestMove checks Move. Moving a directory onto an existing directory
// replaces it.
func TestMove(t *testing.T, d drive.Driver) {
	testTransfer(t, d, "move", d.Move, false)
}

// testTransfer tests fn as Copy if isCopy is true, or Move.
func testTransfer(t *testing.T, d drive.Driver, desc string, fn transferFunc, isCopy bool) {
	ctx := context.Background()
	type tableEntry struct {
		desc string
		src  string
		dst  string
		err  bool
	}
	table := []tableEntry{
		{desc: "existing file to new file", src: "a.txt", dst: "a2.txt"},
		{desc: "existing file to existing file", src: "a.txt", dst: "a/b.txt"},
		{desc: "existing file to new subdir", src: "a/b.txt", dst: "n/e/w.txt"},
		{desc: "unclean source", src: "a/../a.txt", dst: "a3.txt"},
		{desc: "unclean destination", src: "a.txt", dst: "a/../a2.txt"},
		{desc: "missing file", src: "z.txt", dst: "a/b.txt", err: true},
		{desc: "escaping source", src: "../../a.txt", dst: "a3.txt", err: true},
		{desc: "escaping destination", src: "a.txt", dst: "../../a2.txt", err: true},
		{desc: "file onto directory", src: "a.txt", dst: "a/b", err: true},
		{desc: "file onto its parent directory", src: "a/b.txt", dst: "a", err: true},
		{desc: "directory onto file", src: "a/b", dst: "a.txt", err: true},
		{desc: "directory onto its parent", src: "a/b/c", dst: "a/b", err: true},
		{desc: "directory into itself", src: "a/b", dst: "a/b/c/new", err: true},
	}
	for _, e := range table {
		t.Run(desc+": "+e.desc, func(t *testing.T) {
			is := is.New(t)
			is.NoErr(buildTestDir(ctx, d))
			src := prefix + "/" + e.src
			dst := prefix + "/" + e.dst
			err := fn(ctx, src, dst, nil)
			if e.err {
				is.True(err != nil) // expecting an error
				for _, tf := range testFiles {
					f := prefix + "/" + tf
					got, err := drive.GetString(ctx, d, f)
					is.NoErr(err) // test files are intact
					is.Equal(got, f)
				}
				return
			}
			is.NoErr(err)
			got, err := drive.GetString(ctx, d, dst)
			is.NoErr(err)
			is.Equal(got, path.Join(prefix, e.src)) // destination has source's content
			ok, err := d.Exists(ctx, src)
			is.NoErr(err)
			is.Equal(ok, isCopy)
		})
	}
	t.Run(desc+": missing file leaves no directories", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(buildTestDir(ctx, d))
		err := fn(ctx, prefix+"/z.txt", prefix+"/n/e/w.txt", nil)
		is.True(errors.Is(err, fs.ErrNotExist))
		ok, err := d.Exists(ctx, prefix+"/n")
		is.NoErr(err)
		is.True(!ok) // destination parent wasn't created
	})
	t.Run(desc+": directory", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(buildTestDir(ctx, d))
		src := prefix + "/a/b"
		dst := prefix + "/b2"
		is.NoErr(drive.PutString(ctx, d, dst+"/old.txt", "old", nil))
		is.NoErr(drive.PutString(ctx, d, dst+"/c.txt", "old", nil))
		is.NoErr(fn(ctx, src, dst, nil))
		for _, f := range []string{"c.txt", "c/d.txt"} {
			got, err := drive.GetString(ctx, d, dst+"/"+f)
			is.NoErr(err)
			is.True(strings.HasSuffix(got, "a/b/"+f)) // same-named files are overwritten
		}
		ok, err := d.Exists(ctx, dst+"/old.txt")
		is.NoErr(err)
		is.Equal(ok, isCopy) // copy merges, move replaces
		ok, err = d.Exists(ctx, src)
		is.NoErr(err)
		is.Equal(ok, isCopy)
	})
}

// TestUnsupported checks that methods d reports as unsupported fail with a
// *drive.MethodNotSupportedError.
func TestUnsupported(t *testing.T, d drive.Driver) {
	ctx := context.Background()
	calls := map[string]func() error{
		"GetVisibility": func() error {
			_, err := d.GetVisibility(ctx, "a.txt")
			return err
		},
		"GetSignedURL": func() error {
			_, err := d.GetSignedURL(ctx, "a.txt")
			return err
		},
		"GetURL": func() error {
			_, err := d.GetURL(ctx, "a.txt")
			return err
		},
		"SetVisibility": func() error {
			return d.SetVisibility(ctx, "a.txt", drive.VisibilityPublic)
		},
	}
	for method, call := range calls {
		if drive.Supports(d, method) {
			continue
		}
		t.Run("unsupported: "+method, func(t *testing.T) {
			is := is.New(t)
			err := call()
			is.True(errors.Is(err, drive.ErrMethodNotSupported))
			var nsErr *drive.MethodNotSupportedError
			is.True(errors.As(err, &nsErr))
			is.Equal(nsErr.Method, method)
			is.Equal(nsErr.Driver, d.Name())
		})
	}
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
