package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("LANERUSH_TEST_STR", "value")
	if got := GetEnv("LANERUSH_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("GetEnv = %q, want value", got)
	}
	if got := GetEnv("LANERUSH_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetEnv = %q, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("LANERUSH_TEST_INT", "42")
	t.Setenv("LANERUSH_TEST_BAD_INT", "forty")
	if got := GetEnvInt("LANERUSH_TEST_INT", 1); got != 42 {
		t.Fatalf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("LANERUSH_TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("GetEnvInt = %d, want fallback 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := map[string]bool{"1": true, "true": true, "yes": true, "0": false, "off": false}
	for value, want := range tests {
		t.Setenv("LANERUSH_TEST_BOOL", value)
		if got := GetEnvBool("LANERUSH_TEST_BOOL", !want); got != want {
			t.Errorf("GetEnvBool(%q) = %v, want %v", value, got, want)
		}
	}
	t.Setenv("LANERUSH_TEST_BOOL", "maybe")
	if got := GetEnvBool("LANERUSH_TEST_BOOL", true); !got {
		t.Error("GetEnvBool should fall back on unparsable values")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LANERUSH_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LANERUSH_TEST_DOTENV", "")
	os.Unsetenv("LANERUSH_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("LANERUSH_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("LANERUSH_TEST_DOTENV = %q, want loaded", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}
