// SPDX-License-Identifier: MPL-2.0

// Package repo models one working directory bound to version control: its
// remote URL, pinned revision, backend, and the library references
// discovered beneath it. It also persists the one-line-per-library
// reference files and the program root's key=value configuration.
package repo
