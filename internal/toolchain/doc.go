// SPDX-License-Identifier: MPL-2.0

// Package toolchain hands control to the external build tool and runs
// user-configured hook scripts. arbor never builds anything itself; the
// build command collects program configuration, macro definitions and
// user arguments and invokes the configured tool in the program root.
package toolchain
