// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for arbor.
//
// This package implements the Cobra command hierarchy for the arbor CLI:
// creating and importing programs, the tree operations (deploy, update,
// sync, publish), inspection (ls, status), program configuration and the
// build hand-off.
package cmd
