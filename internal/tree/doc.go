// SPDX-License-Identifier: MPL-2.0

// Package tree implements the recursive dependency-tree algorithms: sync,
// deploy, update and publish, plus the listing and status traversals.
//
// Every algorithm is a strictly sequential depth-first traversal. Each node
// is operated on through its backend with explicit directory arguments, so
// no traversal ever mutates the process working directory. Destructive
// removals are gated by the safety check in canUpdate.
package tree
