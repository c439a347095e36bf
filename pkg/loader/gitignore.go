// This file keeps per-user view state out of version control.
package loader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// StateIgnorePattern is the .gitignore entry added for the persisted view state.
const StateIgnorePattern = ".treeflat/tree-state.json"

// EnsureStateIgnored ensures the tree state file is listed in the project's
// .gitignore. The tree document and config in .treeflat/ stay tracked.
//
// The function is idempotent. It will:
//   - Create .gitignore if it doesn't exist
//   - Add the state pattern unless the file or the whole .treeflat directory
//     is already covered
//   - Preserve existing file content and formatting
func EnsureStateIgnored(projectDir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	gitignorePath := filepath.Join(projectDir, ".gitignore")

	alreadyPresent, err := isStateIgnored(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if alreadyPresent {
		return nil
	}

	return appendToGitignore(gitignorePath, StateIgnorePattern)
}

// isStateIgnored checks if the state file is already covered by .gitignore.
func isStateIgnored(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if matchesStatePattern(line) {
			return true, nil
		}
	}

	return false, scanner.Err()
}

// matchesStatePattern checks if a gitignore line covers the state file.
func matchesStatePattern(line string) bool {
	normalized := strings.TrimPrefix(line, "/")

	patterns := []string{
		".treeflat",
		".treeflat/",
		".treeflat/*",
		".treeflat/**",
		".treeflat/**/*",
		StateIgnorePattern,
		"tree-state.json",
	}

	for _, pattern := range patterns {
		if normalized == pattern {
			return true
		}
	}

	return false
}

// appendToGitignore appends a pattern to the .gitignore file, creating it if
// needed. A newline is added first when the file doesn't end with one.
func appendToGitignore(path string, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	var toWrite string
	if len(content) == 0 {
		toWrite = "# treeflat view state\n" + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n# treeflat view state\n" + pattern + "\n"
	}

	_, err = file.WriteString(toWrite)
	return err
}
