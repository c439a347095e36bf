package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, DirName), 0o755); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	found, ok := FindRoot(sub)
	if !ok {
		t.Error("expected to find project root")
	}
	if found != root {
		t.Errorf("expected %q, got %q", root, found)
	}
}

func TestFindRoot_IgnoresPlainFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, DirName), []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, ok := FindRoot(root)
	if ok && found == root {
		t.Errorf("a .treeflat file should not mark a project root")
	}
}

func TestLoadNearest_FallsBackToDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadNearest(dir)
	if err != nil {
		t.Fatalf("LoadNearest() error = %v", err)
	}
	// May resolve to an enclosing project when tests run inside one.
	if cfg.Root() == "" {
		t.Error("expected a non-empty root")
	}
}
