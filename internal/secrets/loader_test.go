package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api key", Value: "inline", File: file, Env: "TEST_SECRET"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected the file to win and be trimmed, got %q", got)
	}
}

func TestLoadValueBeforeEnv(t *testing.T) {
	t.Setenv("TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api key", Value: "inline", Env: "TEST_SECRET"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "inline" {
		t.Fatalf("expected the inline value to win, got %q", got)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api key", Env: "TEST_SECRET"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected the environment fallback, got %q", got)
	}
}

func TestLoadMissingEverywhere(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatal("expected an error when no source yields a value")
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("   \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(Source{Name: "api key", File: file}); err == nil {
		t.Fatal("expected an error for a whitespace-only file")
	}
}
