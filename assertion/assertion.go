// Package assertion provides filesystem preconditions commonly used as
// environment checks: the submission directory exists, the deliverable is a
// regular file, helper programs are executable.
package assertion

import (
	"github.com/spf13/afero"

	"github.com/refutils/go-refutils/console"
)

// IsFile reports whether path is a regular file, telling the user when it
// is not.
func IsFile(fsys afero.Fs, path string) bool {
	fi, err := fsys.Stat(path)
	if err != nil || fi.IsDir() {
		console.Errf("missing file %s, did you submit everything?", path)
		return false
	}
	return true
}

// IsDir reports whether path is a directory.
func IsDir(fsys afero.Fs, path string) bool {
	fi, err := fsys.Stat(path)
	if err != nil || !fi.IsDir() {
		console.Errf("missing directory %s, did you submit everything?", path)
		return false
	}
	return true
}

// IsExec reports whether path is a regular file with an executable bit.
func IsExec(fsys afero.Fs, path string) bool {
	fi, err := fsys.Stat(path)
	if err != nil || fi.IsDir() {
		console.Errf("missing executable %s, did you submit everything?", path)
		return false
	}
	if fi.Mode()&0o111 == 0 {
		console.Errf("%s is not executable, did you chmod +x it?", path)
		return false
	}
	return true
}
