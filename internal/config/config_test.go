package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigParsing(t *testing.T) {
	configContent := `# Global options
role attacker
tick.rate 30

[keeper]
speed 90
defence-threshold 40

[body.ararinha]
kp 2.5
kd 0.1`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if value, ok := config.GetGlobalOption("role"); !ok || value != "attacker" {
		t.Errorf("Expected role=attacker, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetGlobalOption("tick.rate"); !ok || value != "30" {
		t.Errorf("Expected tick.rate=30, got %s (exists: %v)", value, ok)
	}

	if value, ok := config.GetSectionOption("keeper", "speed"); !ok || value != "90" {
		t.Errorf("Expected keeper.speed=90, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetSectionOption("body.ararinha", "kp"); !ok || value != "2.5" {
		t.Errorf("Expected body.ararinha.kp=2.5, got %s (exists: %v)", value, ok)
	}

	// Section lookups never fall back to globals.
	if value, ok := config.GetSectionOption("keeper", "role"); ok {
		t.Errorf("Expected no fallback for keeper.role, got %s", value)
	}
	if value, ok := config.GetSectionOption("nonexistent", "option"); ok {
		t.Errorf("Expected nonexistent option to not exist, but got %s", value)
	}

	if len(config.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", config.Warnings)
	}
}

func TestEmptyConfig(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Failed to load empty config: %v", err)
	}

	if len(config.Global) != 0 {
		t.Errorf("Expected empty global options, got %d", len(config.Global))
	}
	if len(config.Sections) != 0 {
		t.Errorf("Expected no sections, got %d", len(config.Sections))
	}
}

func TestConfigWithComments(t *testing.T) {
	configContent := `# This is a comment
role keeper
# Another comment

   # indented comment
[attacker]
# section comment
speed 200`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if value, ok := config.GetGlobalOption("role"); !ok || value != "keeper" {
		t.Errorf("Expected role=keeper, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetSectionOption("attacker", "speed"); !ok || value != "200" {
		t.Errorf("Expected attacker.speed=200, got %s (exists: %v)", value, ok)
	}
}

func TestConfigValueKeepsSpaces(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("[tree]\nkeeper.override ball.seen && ball.x > 100  \n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if value, _ := config.GetSectionOption("tree", "keeper.override"); value != "ball.seen && ball.x > 100" {
		t.Errorf("Expected full expression, got %q", value)
	}
}

func TestConfigRejectsBadSections(t *testing.T) {
	for _, content := range []string{"[]\n", "[body]\nkp 1\n", "[body.]\nkp 1\n"} {
		if _, err := LoadFromReader(strings.NewReader(content)); err == nil {
			t.Errorf("Expected error for %q", content)
		}
	}
}

func TestConfigWarnings(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("colour blue\ntick.rate fast\n[nope]\nx 1\n[keeper]\nspeed quick\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	want := []string{
		`global option "tick.rate": expected int, got "fast"`,
		`option "speed" in [keeper]: expected float, got "quick"`,
		`unknown global option: "colour" (value: "blue")`,
		`unknown section: [nope]`,
	}
	got := config.Warnings
	if len(got) != len(want) {
		t.Fatalf("Expected %d warnings, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("warning %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSetGlobalAndSectionOptions(t *testing.T) {
	config := NewConfig()

	config.SetGlobalOption("role", "defender")
	config.SetSectionOption("defender", "speed", "150")

	if value, ok := config.GetGlobalOption("role"); !ok || value != "defender" {
		t.Errorf("Expected role=defender, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetSectionOption("defender", "speed"); !ok || value != "150" {
		t.Errorf("Expected defender.speed=150, got %s (exists: %v)", value, ok)
	}
}

func TestBodyNames(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("[body.zeta]\nkp 1\n[keeper]\n[body.alpha]\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	names := config.BodyNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("Expected [alpha zeta], got %v", names)
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	config, err := LoadFromPath(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}
	if len(config.Global) != 0 {
		t.Fatalf("expected empty config, got %v", config.Global)
	}
}

func TestLoadFromPathExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("role keeper\n[keeper]\nspeed 80\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}
	if value, ok := config.GetSectionOption("keeper", "speed"); !ok || value != "80" {
		t.Fatalf("expected keeper.speed=80, got %q (exists: %v)", value, ok)
	}
}

func TestLoadFromPathRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	if err := os.WriteFile(target, []byte("role keeper\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	link := filepath.Join(dir, "config")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := LoadFromPath(link); err == nil || !strings.Contains(err.Error(), "symlink") {
		t.Fatalf("expected symlink error, got %v", err)
	}
}

func TestLoadUsesConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("robot.index 2\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("VSS_CONFIG", path)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if v, _ := config.GetGlobalOption("robot.index"); v != "2" {
		t.Fatalf("expected robot.index=2, got %v", config.Global)
	}
}
