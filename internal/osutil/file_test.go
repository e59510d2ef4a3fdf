package osutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeFilePath(t *testing.T) {
	// not parallel because it messes with env vars
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RUNNER_TEMP", "/runner/temp")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd() error = %v", err)
	}

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"~", home},
		{"~/github_env", filepath.Join(home, "github_env")},
		{"$RUNNER_TEMP/github_env", filepath.FromSlash("/runner/temp/github_env")},
		{"github_env", filepath.Join(wd, "github_env")},
		{"./a/../github_env", filepath.Join(wd, "github_env")},
	}

	for _, test := range tests {
		got, err := NormalizeFilePath(test.in)
		if err != nil {
			t.Errorf("NormalizeFilePath(%q) error = %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("NormalizeFilePath(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "exists")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("os.WriteFile(%q) error = %v", path, err)
	}

	if !FileExists(path) {
		t.Errorf("FileExists(%q) = false, want true", path)
	}
	if missing := filepath.Join(dir, "missing"); FileExists(missing) {
		t.Errorf("FileExists(%q) = true, want false", missing)
	}
}
