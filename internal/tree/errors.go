// SPDX-License-Identifier: MPL-2.0

package tree

import "fmt"

// GateReason identifies which safety-gate condition refused a destructive
// removal.
type GateReason int

const (
	// GateLocalOnly: the library has no remote URL to restore it from.
	GateLocalOnly GateReason = iota
	// GateDirty: the working tree has uncommitted changes.
	GateDirty
	// GateOutgoing: local history has commits not pushed to the remote.
	GateOutgoing
)

type (
	// GateViolation is returned when the safety gate refuses a destructive
	// removal of a library. Recoverable: --ignore demotes it to a warning,
	// --force bypasses the local-only and outgoing conditions.
	GateViolation struct {
		Reason GateReason
		Name   string
		Path   string
	}

	// DetachedHeadError is returned from a top-level update without an
	// explicit revision when the working tree is detached.
	DetachedHeadError struct {
		Path    string
		Backend string
	}
)

func (e *GateViolation) Error() string {
	switch e.Reason {
	case GateLocalOnly:
		return fmt.Sprintf("preserving local library %q in %q: it has no remote URL to restore it from", e.Name, e.Path)
	case GateDirty:
		return fmt.Sprintf("uncommitted changes in %q in %q", e.Name, e.Path)
	default:
		return fmt.Sprintf("unpublished changes in %q in %q", e.Name, e.Path)
	}
}

// Suggestions returns the corrective hints for this violation.
func (e *GateViolation) Suggestions() []string {
	switch e.Reason {
	case GateLocalOnly:
		return []string{
			"Publish this library to a remote URL to be able to restore it at any time",
			"Use --ignore to skip local libraries and update only the published ones",
			"Use --force to remove all local libraries (cannot be undone)",
		}
	case GateDirty:
		return []string{
			"Discard or stash the changes first, then retry the update",
			"Use --clean to discard all uncommitted changes (cannot be undone)",
		}
	default:
		return []string{
			"Publish the changes first using the publish command",
			"Use --force to discard local commits and restore the revision's library (cannot be undone)",
		}
	}
}

func (e *DetachedHeadError) Error() string {
	return fmt.Sprintf("%q is in a detached state and cannot receive updates from its remote", e.Path)
}
