package config

import (
	"os"
	"path/filepath"
	"testing"
)

func newValidRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadDefaultsAreValid(t *testing.T) {
	root := newValidRoot(t)
	cfg, err := Load([]string{"-root", root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 60001 || cfg.WorkerCount != 4 || cfg.IndexFile != "index.html" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRejectsOutOfRangePort(t *testing.T) {
	root := newValidRoot(t)
	_, err := Load([]string{"-root", root, "-port", "70000"})
	if err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
}

func TestLoadRejectsNegativeWorkerCount(t *testing.T) {
	root := newValidRoot(t)
	_, err := Load([]string{"-root", root, "-threads", "-1"})
	if err == nil {
		t.Fatal("expected an error for a negative worker count")
	}
}

func TestLoadRejectsMissingRootFolder(t *testing.T) {
	_, err := Load([]string{"-root", filepath.Join(t.TempDir(), "does-not-exist")})
	if err == nil {
		t.Fatal("expected an error for a missing root folder")
	}
}

func TestLoadRejectsIndexFileWithoutExtension(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load([]string{"-root", root, "-index", "index"})
	if err == nil {
		t.Fatal("expected an error for an extensionless index file")
	}
}

func TestLoadRejectsMissingIndexFile(t *testing.T) {
	root := t.TempDir()
	_, err := Load([]string{"-root", root, "-index", "missing.html"})
	if err == nil {
		t.Fatal("expected an error for a missing index file")
	}
}
