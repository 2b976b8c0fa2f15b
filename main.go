// SPDX-License-Identifier: MPL-2.0

// arbor is a source-level dependency manager for nested repositories.
package main

import (
	cmd "arbor-cli/cmd/arbor"
)

func main() {
	cmd.Execute()
}
