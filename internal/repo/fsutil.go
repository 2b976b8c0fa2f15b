// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"io/fs"
	"os"
	"path/filepath"
)

// RemoveTree removes a directory tree, clearing read-only permissions when
// a first attempt fails. VCS backends mark parts of their metadata
// read-only, which plain os.RemoveAll refuses to delete on some platforms.
func RemoveTree(path string) error {
	if err := os.RemoveAll(path); err == nil {
		return nil
	}

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are handled by RemoveAll below
		}
		mode := fs.FileMode(0o600)
		if d.IsDir() {
			mode = 0o700
		}
		_ = os.Chmod(p, mode) //nolint:errcheck // best-effort
		return nil
	})
	if err != nil {
		return err
	}

	return os.RemoveAll(path)
}
