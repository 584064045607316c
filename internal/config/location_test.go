package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func setHome(t *testing.T, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", dir)
		return
	}
	t.Setenv("HOME", dir)
}

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	perRobot := filepath.Join(home, "field-a", "keeper.conf")

	tests := []struct {
		name string
		set  bool
		env  string
		want string
	}{
		{"per-robot file", true, perRobot, perRobot},
		{"empty falls back to home", true, "", filepath.Join(home, ".vss", "config")},
		{"unset falls back to home", false, "", filepath.Join(home, ".vss", "config")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setHome(t, home)
			t.Setenv(ConfigPathEnv, tt.env)
			if !tt.set {
				if err := os.Unsetenv(ConfigPathEnv); err != nil {
					t.Fatalf("unset %s: %v", ConfigPathEnv, err)
				}
			}
			got, err := GetConfigPath()
			if err != nil {
				t.Fatalf("GetConfigPath: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetConfigPathNeedsHomeOrOverride(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		t.Skip("home lookup does not use $HOME here")
	}
	t.Setenv("HOME", "")
	t.Setenv(ConfigPathEnv, "")

	_, err := GetConfigPath()
	if err == nil {
		t.Fatal("expected an error without HOME or VSS_CONFIG")
	}
	if !strings.Contains(err.Error(), ConfigPathEnv) {
		t.Fatalf("error should name %s: %v", ConfigPathEnv, err)
	}
}

// A robot pointed at a fresh per-field path gets its directory created,
// its keeper tuning written and read back through Load.
func TestEnsureConfigDirThenLoadPerRobotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field-a", "keeper", "config")
	t.Setenv(ConfigPathEnv, path)

	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir: %v", err)
	}
	if err := SetKeyInFile(path, "", "role", "keeper-tree"); err != nil {
		t.Fatalf("SetKeyInFile role: %v", err)
	}
	if err := SetKeyInFile(path, "keeper", "buffer-size", "30"); err != nil {
		t.Fatalf("SetKeyInFile buffer-size: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := cfg.GetGlobalOption("role"); v != "keeper-tree" {
		t.Fatalf("role = %q, want keeper-tree", v)
	}
	if v, _ := cfg.GetSectionOption("keeper", "buffer-size"); v != "30" {
		t.Fatalf("keeper buffer-size = %q, want 30", v)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings)
	}

	// Creating the directory again is harmless.
	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir again: %v", err)
	}
}

func TestEnsureConfigDirBlockedByFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "field-a")
	if err := os.WriteFile(blocker, []byte("role keeper\n"), 0600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	err := EnsureConfigDir(filepath.Join(blocker, "config"))
	if err == nil {
		t.Fatal("expected an error when a file sits where the directory goes")
	}
	if !strings.Contains(err.Error(), "config directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}
