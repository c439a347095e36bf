package config

import (
	"os"
	"path/filepath"
)

// DetectRoot finds the current project by walking up from the current
// directory looking for .treeflat/.
func DetectRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return FindRoot(dir)
}

// FindRoot walks up from dir looking for a .treeflat/ directory.
func FindRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// LoadNearest loads the config for the project containing dir. Without a
// project the config is rooted at dir itself.
func LoadNearest(dir string) (*Config, error) {
	root, ok := FindRoot(dir)
	if !ok {
		root = dir
	}
	return Load(root)
}
