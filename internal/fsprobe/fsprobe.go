// Package fsprobe implements ifexpr.FilesystemProbe against the real
// filesystem via the os package.
package fsprobe

import "os"

// Probe is the real, blocking FilesystemProbe.
type Probe struct{}

// New returns a Probe.
func New() Probe { return Probe{} }

// FileExists implements ifexpr.FilesystemProbe.
func (Probe) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory implements ifexpr.FilesystemProbe.
func (Probe) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsSymlink implements ifexpr.FilesystemProbe.
func (Probe) IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// IsAbsolute implements ifexpr.FilesystemProbe. EXISTS/IS_DIRECTORY
// style predicates in the surface language are rooted at a single
// platform's path syntax, so this defers to the same rule used
// elsewhere rather than filepath.IsAbs to keep POSIX-style absolute
// path semantics on every host.
func (Probe) IsAbsolute(path string) bool {
	return len(path) > 0 && path[0] == '/'
}

// MTimeCompare implements ifexpr.FilesystemProbe. ok is false when
// either path cannot be stat'd, in which case IS_NEWER_THAN treats the
// comparison as undeterminable.
func (Probe) MTimeCompare(a, b string) (ok bool, aNewerOrEqual bool) {
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	if aerr != nil || berr != nil {
		return false, false
	}
	return true, !ai.ModTime().Before(bi.ModTime())
}
