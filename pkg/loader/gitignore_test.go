package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMatchesStatePattern(t *testing.T) {
	tests := []struct {
		line    string
		matches bool
	}{
		{".treeflat", true},
		{".treeflat/", true},
		{".treeflat/**", true},
		{"/.treeflat/", true}, // Leading slash should be normalized
		{".treeflat/tree-state.json", true},
		{"tree-state.json", true},

		{"", false},
		{"#.treeflat", false},
		{".treeflat/tree.yaml", false},
		{".treeflat2", false},
		{"treeflat/", false},
		{"*.yaml", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := matchesStatePattern(tt.line)
			if got != tt.matches {
				t.Errorf("matchesStatePattern(%q) = %v, want %v", tt.line, got, tt.matches)
			}
		})
	}
}

func TestIsStateIgnored_FileNotExists(t *testing.T) {
	_, err := isStateIgnored(filepath.Join(t.TempDir(), ".gitignore"))
	if !os.IsNotExist(err) {
		t.Errorf("expected IsNotExist error, got %v", err)
	}
}

func TestAppendToGitignore(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{
			name: "new file",
			want: "# treeflat view state\n" + StateIgnorePattern + "\n",
		},
		{
			name:     "existing with trailing newline",
			existing: "node_modules/\n",
			want:     "node_modules/\n\n# treeflat view state\n" + StateIgnorePattern + "\n",
		},
		{
			name:     "existing without trailing newline",
			existing: "node_modules/",
			want:     "node_modules/\n\n# treeflat view state\n" + StateIgnorePattern + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".gitignore")
			if tt.existing != "" {
				if err := os.WriteFile(path, []byte(tt.existing), 0644); err != nil {
					t.Fatal(err)
				}
			}

			if err := appendToGitignore(path, StateIgnorePattern); err != nil {
				t.Fatalf("appendToGitignore() error = %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnsureStateIgnored(t *testing.T) {
	t.Run("creates gitignore if not exists", func(t *testing.T) {
		tmpDir := t.TempDir()

		if err := EnsureStateIgnored(tmpDir); err != nil {
			t.Fatalf("EnsureStateIgnored() error = %v", err)
		}

		content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
		if err != nil {
			t.Fatalf("failed to read .gitignore: %v", err)
		}
		if !strings.Contains(string(content), StateIgnorePattern) {
			t.Errorf("expected %s in .gitignore, got:\n%s", StateIgnorePattern, content)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		tmpDir := t.TempDir()

		for i := 0; i < 2; i++ {
			if err := EnsureStateIgnored(tmpDir); err != nil {
				t.Fatalf("EnsureStateIgnored() error = %v", err)
			}
		}

		content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
		if err != nil {
			t.Fatal(err)
		}
		if count := strings.Count(string(content), StateIgnorePattern); count != 1 {
			t.Errorf("expected exactly 1 occurrence, got %d:\n%s", count, content)
		}
	})

	t.Run("respects directory pattern", func(t *testing.T) {
		tmpDir := t.TempDir()
		gitignorePath := filepath.Join(tmpDir, ".gitignore")
		if err := os.WriteFile(gitignorePath, []byte(".treeflat/\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := EnsureStateIgnored(tmpDir); err != nil {
			t.Fatalf("EnsureStateIgnored() error = %v", err)
		}

		content, err := os.ReadFile(gitignorePath)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != ".treeflat/\n" {
			t.Errorf("should not append when directory already ignored, got:\n%s", content)
		}
	})
}
