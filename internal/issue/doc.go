// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing errors with corrective
// suggestions. Every fatal error surfaced by arbor carries an operation,
// the resource involved, and hints on how to recover.
package issue
