package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararabots/vsscore/internal/config"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewHelpCommand(r))
	r.Register(NewVersionCommand("1.2.3"))
	r.Register(NewZonesCommand(config.NewConfig()))
	return r
}

func TestRegistry_GetAndList(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	assert.Equal(t, []string{"help", "version", "zones"}, r.List())

	cmd, err := r.Get("version")
	require.NoError(t, err)
	assert.Equal(t, "version", cmd.Name())

	_, err = r.Get("nope")
	require.Error(t, err)
}

func TestRegistry_Dispatch(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	var stdout, stderr bytes.Buffer
	require.NoError(t, r.Dispatch([]string{"version"}, &stdout, &stderr))
	assert.Equal(t, "vssdecide version 1.2.3\n", stdout.String())

	stdout.Reset()
	require.NoError(t, r.Dispatch(nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Available commands:")
	assert.Contains(t, stdout.String(), "zones")

	stderr.Reset()
	require.Error(t, r.Dispatch([]string{"kick"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Unknown command: kick")

	stderr.Reset()
	require.Error(t, r.Dispatch([]string{"zones", "-bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: vssdecide zones")
}

func TestHelpCommand_Specific(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	var stdout, stderr bytes.Buffer
	require.NoError(t, r.Dispatch([]string{"help", "zones"}, &stdout, &stderr))
	out := stdout.String()
	assert.Contains(t, out, "Command: zones")
	assert.Contains(t, out, "Flags:")
	assert.Contains(t, out, "-step")

	require.Error(t, r.Dispatch([]string{"help", "missing"}, &stdout, &stderr))
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	require.Error(t, NewVersionCommand("1").Execute([]string{"x"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unexpected arguments")
}
