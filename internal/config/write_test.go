package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAndRead(t *testing.T, initial string, section, key, value string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if initial != "" {
		if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
			t.Fatalf("failed to write initial config: %v", err)
		}
	}
	if err := SetKeyInFile(path, section, key, value); err != nil {
		t.Fatalf("SetKeyInFile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	return string(data)
}

func TestSetKeyInFile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		initial string
		section string
		key     string
		value   string
		want    string
	}{
		{
			name: "new global key in empty file",
			key:  "role", value: "keeper",
			want: "role keeper",
		},
		{
			name:    "new global key appended",
			initial: "tick.rate 60\n",
			key:     "role", value: "attacker",
			want: "tick.rate 60\nrole attacker\n",
		},
		{
			name:    "update global key in place",
			initial: "# robot\nrole keeper\ntick.rate 60\n",
			key:     "role", value: "defender",
			want: "# robot\nrole defender\ntick.rate 60\n",
		},
		{
			name:    "global key inserted before first section",
			initial: "role keeper\n\n[keeper]\nspeed 90\n",
			key:     "tick.rate", value: "30",
			want: "role keeper\ntick.rate 30\n\n[keeper]\nspeed 90\n",
		},
		{
			name:    "global update ignores section keys",
			initial: "[keeper]\nspeed 90\n",
			key:     "speed", value: "1",
			want: "speed 1\n[keeper]\nspeed 90\n",
		},
		{
			name:    "update section key",
			initial: "[keeper]\nspeed 90\n[attacker]\nspeed 150\n",
			section: "attacker", key: "speed", value: "200",
			want: "[keeper]\nspeed 90\n[attacker]\nspeed 200\n",
		},
		{
			name:    "new key at end of its section",
			initial: "[keeper]\nspeed 90\n\n[attacker]\nspeed 150\n",
			section: "keeper", key: "buffer-size", value: "40",
			want: "[keeper]\nspeed 90\nbuffer-size 40\n\n[attacker]\nspeed 150\n",
		},
		{
			name:    "new key in last section",
			initial: "[keeper]\nspeed 90\n",
			section: "keeper", key: "spin-speed", value: "200",
			want: "[keeper]\nspeed 90\nspin-speed 200\n",
		},
		{
			name:    "missing section appended",
			initial: "role keeper\n",
			section: "body.ararinha", key: "kp", value: "2",
			want: "role keeper\n\n[body.ararinha]\nkp 2\n",
		},
		{
			name:    "value with spaces",
			section: "tree", key: "keeper.override", value: "ball.seen && ball.x > 100",
			want: "[tree]\nkeeper.override ball.seen && ball.x > 100\n",
		},
		{
			name:    "empty value",
			initial: "log.file /tmp/x\n",
			key:     "log.file",
			want:    "log.file\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := writeAndRead(t, tt.initial, tt.section, tt.key, tt.value)
			if got != tt.want {
				t.Fatalf("expected:\n%q\ngot:\n%q", tt.want, got)
			}
		})
	}
}

func TestSetKeyInFile_CreatesParentDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a", "b", "config")

	if err := SetKeyInFile(path, "", "role", "keeper"); err != nil {
		t.Fatalf("SetKeyInFile returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
}

func TestSetKeyInFile_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	for _, v := range []string{"30", "60", "120"} {
		if err := SetKeyInFile(path, "", "tick.rate", v); err != nil {
			t.Fatalf("SetKeyInFile returned error: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the config file, got %d entries", len(entries))
	}
}

func TestSetKeyInFile_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")

	steps := []struct{ section, key, value string }{
		{"", "role", "keeper-tree"},
		{"keeper", "buffer-size", "30"},
		{"body.ararinha", "kp", "2.5"},
		{"", "tick.rate", "30"},
		{"keeper", "buffer-size", "40"},
	}
	for _, s := range steps {
		if err := SetKeyInFile(path, s.section, s.key, s.value); err != nil {
			t.Fatalf("SetKeyInFile(%q, %q): %v", s.section, s.key, err)
		}
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings)
	}
	if v, _ := cfg.GetGlobalOption("role"); v != "keeper-tree" {
		t.Errorf("role = %q", v)
	}
	if v, _ := cfg.GetGlobalOption("tick.rate"); v != "30" {
		t.Errorf("tick.rate = %d", v)
	}
	if v, _ := cfg.GetSectionOption("keeper", "buffer-size"); v != "40" {
		t.Errorf("keeper.buffer-size = %q", v)
	}
	if v, _ := cfg.GetSectionOption("body.ararinha", "kp"); v != "2.5" {
		t.Errorf("body.ararinha.kp = %q", v)
	}
}
