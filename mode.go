package drive

import (
	"io/fs"
	"strconv"
)

const (
	publicMode  fs.FileMode = 0o644
	privateMode fs.FileMode = 0o600
)

// VisibilityMode returns the file permissions used for vis: 0644 for public
// and 0600 for everything else.
func VisibilityMode(vis Visibility) fs.FileMode {
	if vis == VisibilityPublic {
		return publicMode
	}
	return privateMode
}

// ModeOctal renders the permission bits of mode as a zero-padded octal
// string, e.g. "0600".
func ModeOctal(mode fs.FileMode) string {
	return "0" + strconv.FormatUint(uint64(mode.Perm()), 8)
}
