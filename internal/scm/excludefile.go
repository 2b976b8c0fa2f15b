// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"os"
	"slices"
	"strings"
)

// Exclude files are plain line-oriented lists owned by the backend itself,
// so edits are exact line appends/removals rather than rewrites.

func readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// appendLineOnce adds line to the file unless an identical line is already
// present.
func appendLineOnce(path, line string) error {
	lines := readLines(path)
	if slices.Contains(lines, line) {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line + "\n")
	return err
}

// removeLine deletes every occurrence of the exact line; missing files and
// absent lines are not errors.
func removeLine(path, line string) error {
	lines := readLines(path)
	if !slices.Contains(lines, line) {
		return nil
	}

	kept := lines[:0]
	for _, l := range lines {
		if l != line {
			kept = append(kept, l)
		}
	}
	return writeLines(path, kept)
}
