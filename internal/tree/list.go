// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"fmt"
	"sort"

	"arbor-cli/internal/repo"
)

// List prints the dependency tree at path, one node per line with branch
// connectors. showURL annotates each node with its full URL-and-revision
// pair instead of the bare revision. ignoreErrors demotes broken references
// to warnings.
func (e *Engine) List(path string, showURL, ignoreErrors bool) error {
	return e.list(path, showURL, ignoreErrors, "", "")
}

func (e *Engine) list(path string, showURL, ignoreErrors bool, prefix, parentPath string) error {
	r, err := repo.FromDir(e.Reg, path)
	if err != nil {
		return err
	}

	label := r.Name
	if parentPath != "" {
		label = relTo(parentPath, r.Path)
	}

	info := r.Hash
	if showURL {
		info = r.FullURL()
	}
	if info == "" {
		info = "no revision"
	}

	fmt.Fprintf(e.Out, "%s%s (%s)\n", prefix, label, info)

	libs := append([]*repo.Repo(nil), r.Children...)
	sort.Slice(libs, func(i, j int) bool { return libs[i].Path < libs[j].Path })

	for i, lib := range libs {
		// Continue the parent's rail: a '|' connector keeps the rail,
		// a '`' connector ends it.
		nprefix := ""
		if len(prefix) >= 3 {
			nprefix = prefix[:len(prefix)-3]
			if prefix[len(prefix)-3] == '|' {
				nprefix += "|  "
			} else {
				nprefix += "   "
			}
		}
		if i < len(libs)-1 {
			nprefix += "|- "
		} else {
			nprefix += "`- "
		}

		if err := lib.Check(); err != nil {
			if ignoreErrors {
				e.Log.Warn(err.Error())
				continue
			}
			return e.staleReference(err)
		}
		if err := e.list(lib.Path, showURL, ignoreErrors, nprefix, r.Path); err != nil {
			return err
		}
	}

	return nil
}

// Status prints the raw backend status of every node whose working tree is
// dirty.
func (e *Engine) Status(path string, ignoreErrors bool) error {
	r, err := repo.FromDir(e.Reg, path)
	if err != nil {
		return err
	}

	dirty, err := r.Backend.Dirty(r.Path)
	if err != nil {
		return err
	}
	if dirty {
		out, err := r.Backend.Status(r.Path)
		if err != nil {
			return err
		}
		e.Log.Info("local changes", "repository", r.Name)
		fmt.Fprint(e.Out, out)
	}

	for _, lib := range r.Children {
		if err := lib.Check(); err != nil {
			if ignoreErrors {
				e.Log.Warn(err.Error())
				continue
			}
			return e.staleReference(err)
		}
		if err := e.Status(lib.Path, ignoreErrors); err != nil {
			return err
		}
	}

	return nil
}
