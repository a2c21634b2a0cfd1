package drive_test

import (
	"io/fs"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/drive"
)

func TestModeOctal(t *testing.T) {
	table := map[fs.FileMode]string{
		0o600:                "0600",
		0o644:                "0644",
		0o755:                "0755",
		0o007:                "07",
		fs.ModeDir | 0o750:   "0750",
		0o4755:               "0755",
		fs.ModeSetuid | 0o700: "0700",
	}
	for mode, expect := range table {
		t.Run(expect, func(t *testing.T) {
			is := is.New(t)
			is.Equal(drive.ModeOctal(mode), expect)
		})
	}
}

func TestVisibilityMode(t *testing.T) {
	is := is.New(t)
	is.Equal(drive.VisibilityMode(drive.VisibilityPublic), fs.FileMode(0o644))
	is.Equal(drive.VisibilityMode(drive.VisibilityPrivate), fs.FileMode(0o600))
	is.Equal(drive.VisibilityMode(""), fs.FileMode(0o600))
	is.Equal(drive.VisibilityMode("Public"), fs.FileMode(0o600))

	var opts *drive.WriteOptions
	is.Equal(opts.Mode(), fs.FileMode(0o600)) // nil options are private
	opts = &drive.WriteOptions{Visibility: drive.VisibilityPublic}
	is.Equal(opts.Mode(), fs.FileMode(0o644))
}
