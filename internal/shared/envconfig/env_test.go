package envconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RAILMILES_FROM_FILE=file\nRAILMILES_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("RAILMILES_PRESET", "env")
	t.Setenv("RAILMILES_FROM_FILE", "")
	os.Unsetenv("RAILMILES_FROM_FILE")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := Get("RAILMILES_FROM_FILE", ""); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := Get("RAILMILES_PRESET", ""); got != "env" {
		t.Fatalf("existing environment must win, got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("RAILMILES_FLAG", "false")
	if GetBool("RAILMILES_FLAG", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("RAILMILES_FLAG", "maybe")
	if !GetBool("RAILMILES_FLAG", true) {
		t.Fatalf("malformed value should fall back")
	}
	t.Setenv("RAILMILES_FLAG", "")
	if GetBool("RAILMILES_FLAG", false) {
		t.Fatalf("empty value should fall back")
	}
}

func TestValidate(t *testing.T) {
	type sample struct {
		Port string `validate:"required,numeric"`
	}
	if err := Validate(sample{Port: "8080"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(sample{Port: "eighty"}); err == nil {
		t.Fatalf("expected validation error")
	}
}
