// SPDX-License-Identifier: MPL-2.0

// Package scm abstracts the version-control backends (git and Mercurial)
// behind a single capability interface. Backends are stateless: every call
// names the working directory explicitly and shells out to the backend's
// executable, translating exit codes into the shared error contract.
package scm
