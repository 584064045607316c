package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararabots/vsscore/internal/config"
)

func runConfig(t *testing.T, cfg *config.Config, path string, args ...string) (string, string, error) {
	t.Helper()
	r := NewRegistry()
	r.Register(NewConfigCommand(cfg, path))
	var stdout, stderr bytes.Buffer
	err := r.Dispatch(append([]string{"config"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestConfigCommand_Get(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("role", "attacker")
	cfg.SetSectionOption("keeper", "speed", "90")

	out, _, err := runConfig(t, cfg, "", "role")
	require.NoError(t, err)
	assert.Equal(t, "role: attacker\n", out)

	out, _, err = runConfig(t, cfg, "", "tick.rate")
	require.NoError(t, err)
	assert.Equal(t, "tick.rate: 60\n", out, "schema default")

	out, _, err = runConfig(t, cfg, "", "-section", "keeper", "speed")
	require.NoError(t, err)
	assert.Equal(t, "[keeper] speed: 90\n", out)

	out, _, err = runConfig(t, cfg, "", "-section", "body.x", "kp")
	require.NoError(t, err)
	assert.Equal(t, "[body.x] kp: 1\n", out)

	out, _, err = runConfig(t, cfg, "", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "not found")
}

func TestConfigCommand_SetPersists(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	cfg := config.NewConfig()

	out, stderr, err := runConfig(t, cfg, path, "role", "defender")
	require.NoError(t, err)
	assert.Equal(t, "Set configuration: role = defender\n", out)
	assert.Empty(t, stderr)

	_, _, err = runConfig(t, cfg, path, "-section", "defender", "speed", "140")
	require.NoError(t, err)

	_, stderr, err = runConfig(t, cfg, path, "-section", "defender", "sped", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "not a known option")

	loaded, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "defender", loaded.Global["role"])
	v, ok := loaded.GetSectionOption("defender", "speed")
	assert.True(t, ok)
	assert.Equal(t, "140", v)

	v, _ = cfg.GetSectionOption("defender", "speed")
	assert.Equal(t, "140", v, "in-memory config updated too")
}

func TestConfigCommand_All(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("role", "keeper")
	cfg.SetSectionOption("tree", "speed", "80")

	out, _, err := runConfig(t, cfg, "", "-all")
	require.NoError(t, err)
	assert.Equal(t, "Global configuration:\n  role: keeper\n\n[tree]\n  speed: 80\n", out)
}

func TestConfigCommand_ValidateAndSchema(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()

	out, _, err := runConfig(t, cfg, "", "validate")
	require.NoError(t, err)
	assert.Equal(t, "Configuration is valid.\n", out)

	cfg.SetGlobalOption("robot.body", "ghost")
	cfg.SetGlobalOption("colour", "red")
	out, _, err = runConfig(t, cfg, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 issue(s)")
	assert.Contains(t, out, "colour")
	assert.Contains(t, out, "unknown robot body")

	out, _, err = runConfig(t, cfg, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "VSS_TICK_RATE")
	assert.Contains(t, out, "[keeper] Options:")

	_, _, err = runConfig(t, cfg, "", "a", "b", "c")
	require.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")
	cmd := NewInitCommand(path)

	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Initialized vssdecide configuration at: "+path)
	assert.Empty(t, stderr.String())

	loaded, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Warnings)
	assert.Equal(t, []string{"ararinha"}, loaded.BodyNames())
	_, err = config.RoleOptions(loaded, config.DefaultSchema())
	require.NoError(t, err)

	// A second run leaves the file alone unless forced.
	require.NoError(t, os.WriteFile(path, []byte("role attacker\n"), 0644))
	stdout.Reset()
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "role attacker\n", string(data))

	cmd.force = true
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# vssdecide configuration file"))
}
