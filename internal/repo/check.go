// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"fmt"
	"path/filepath"
)

type (
	// MissingLibraryError reports a reference file whose working directory
	// does not exist.
	MissingLibraryError struct {
		RefFile string
		Path    string
	}

	// StaleReferenceError reports a reference file whose path is occupied
	// by a directory that is not a repository.
	StaleReferenceError struct {
		RefFile string
		Path    string
	}
)

func (e *MissingLibraryError) Error() string {
	return fmt.Sprintf("library reference %q points to non-existing library in %q", filepath.Base(e.RefFile), e.Path)
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("library reference %q points to %q, which is not a valid repository", filepath.Base(e.RefFile), e.Path)
}

// Check validates that the reference's working directory exists and is a
// real repository. Callers in read-only contexts demote the result to a
// warning; everywhere else it is fatal.
func (r *Repo) Check() error {
	if !isDir(r.Path) {
		return &MissingLibraryError{RefFile: r.RefFile(), Path: r.Path}
	}
	if !r.reg.IsRepoDir(r.Path) {
		return &StaleReferenceError{RefFile: r.RefFile(), Path: r.Path}
	}
	return nil
}
