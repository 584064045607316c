package command

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/ararabots/vsscore/internal/config"
)

// HelpCommand displays help information for commands.
type HelpCommand struct {
	*BaseCommand
	registry *Registry
}

// NewHelpCommand creates a new help command.
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		BaseCommand: NewBaseCommand(
			"help",
			"Display help information for commands",
			"help [command]",
		),
		registry: registry,
	}
}

// Execute displays help information.
func (c *HelpCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, "vssdecide - decision core for a VSS robot soccer player")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Usage: vssdecide <command> [options] [args...]")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Available commands:")

		w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		for _, name := range c.registry.List() {
			if cmd, err := c.registry.Get(name); err == nil {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", name, cmd.Description())
			}
		}
		_ = w.Flush()

		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Use 'vssdecide help <command>' for more information about a specific command (includes flags).")
		return nil
	}

	cmdName := args[0]
	cmd, err := c.registry.Get(cmdName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", cmdName)
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Command: %s\n", cmd.Name())
	_, _ = fmt.Fprintf(stdout, "Description: %s\n", cmd.Description())
	_, _ = fmt.Fprintf(stdout, "Usage: vssdecide %s\n", cmd.Usage())

	// Flags are listed by running SetupFlags against a throwaway FlagSet.
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	buf := &bytes.Buffer{}
	fs.SetOutput(buf)
	cmd.SetupFlags(fs)
	fs.PrintDefaults()
	if buf.Len() > 0 {
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Flags:")
		_, _ = fmt.Fprint(stdout, buf.String())
	}

	return nil
}

// VersionCommand displays version information.
type VersionCommand struct {
	*BaseCommand
	version string
}

// NewVersionCommand creates a new version command.
func NewVersionCommand(version string) *VersionCommand {
	return &VersionCommand{
		BaseCommand: NewBaseCommand(
			"version",
			"Display version information",
			"version",
		),
		version: version,
	}
}

// Execute displays version information.
func (c *VersionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	_, _ = fmt.Fprintf(stdout, "vssdecide version %s\n", c.version)
	return nil
}

// ConfigCommand reads and writes configuration settings.
type ConfigCommand struct {
	*BaseCommand
	config     *config.Config
	configPath string
	section    string
	showAll    bool
}

// NewConfigCommand creates a new config command. An empty configPath
// resolves the default location when a value is set.
func NewConfigCommand(cfg *config.Config, configPath string) *ConfigCommand {
	return &ConfigCommand{
		BaseCommand: NewBaseCommand(
			"config",
			"Manage configuration settings",
			"config [options] [key] [value]",
		),
		config:     cfg,
		configPath: configPath,
	}
}

// SetupFlags configures the flags for the config command.
func (c *ConfigCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.section, "section", "", "Section to read or write (e.g. keeper, body.ararinha)")
	fs.BoolVar(&c.showAll, "all", false, "Show all configuration (global and sections)")
}

// Execute prints, sets, validates or lists configuration.
func (c *ConfigCommand) Execute(args []string, stdout, stderr io.Writer) error {
	schema := config.DefaultSchema()

	switch {
	case len(args) == 0 && c.showAll:
		c.printAll(stdout)
		return nil
	case len(args) == 0:
		_, _ = fmt.Fprint(stdout, configUsage)
		return nil
	case len(args) == 1 && c.section == "" && args[0] == "validate":
		return c.executeValidate(stdout, schema)
	case len(args) == 1 && c.section == "" && args[0] == "schema":
		_, _ = fmt.Fprint(stdout, schema.FormatHelp())
		return nil
	case len(args) == 1:
		c.get(stdout, schema, args[0])
		return nil
	case len(args) == 2:
		c.set(stdout, stderr, schema, args[0], args[1])
		return nil
	}

	_, _ = fmt.Fprintln(stderr, "expected at most a key and a value")
	return fmt.Errorf("invalid arguments")
}

const configUsage = `Configuration management:
  config <key>                   - Print a global value
  config <key> <value>           - Set a global value
  config -section <name> <key>   - Print a section value, e.g. -section keeper speed
  config -all                    - Print everything set in the file
  config validate                - Check the file against the schema
  config schema                  - List every option
`

// label names key the way the output reports it.
func (c *ConfigCommand) label(key string) string {
	if c.section == "" {
		return key
	}
	return "[" + c.section + "] " + key
}

func (c *ConfigCommand) get(stdout io.Writer, schema *config.ConfigSchema, key string) {
	var value string
	var set bool
	if c.section == "" {
		value = schema.Resolve(c.config, key)
		_, set = c.config.GetGlobalOption(key)
	} else {
		value = schema.ResolveSection(c.config, c.section, key)
		_, set = c.config.GetSectionOption(c.section, key)
	}
	if !set && !schema.IsKnown(c.section, key) {
		_, _ = fmt.Fprintf(stdout, "Configuration key '%s' not found\n", c.label(key))
		return
	}
	_, _ = fmt.Fprintf(stdout, "%s: %s\n", c.label(key), value)
}

// set updates the loaded config and persists the line to the config file.
// A failed write is a warning; the value still applies to this process.
func (c *ConfigCommand) set(stdout, stderr io.Writer, schema *config.ConfigSchema, key, value string) {
	if !schema.IsKnown(c.section, key) {
		_, _ = fmt.Fprintf(stderr, "Warning: %s is not a known option\n", c.label(key))
	}
	if c.section == "" {
		c.config.SetGlobalOption(key, value)
	} else {
		c.config.SetSectionOption(c.section, key, value)
	}

	path := c.configPath
	if path == "" {
		path, _ = config.GetConfigPath()
	}
	if path != "" {
		if err := config.SetKeyInFile(path, c.section, key, value); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: %s not saved: %v\n", c.label(key), err)
		}
	}
	_, _ = fmt.Fprintf(stdout, "Set configuration: %s = %s\n", c.label(key), value)
}

func (c *ConfigCommand) printAll(stdout io.Writer) {
	_, _ = fmt.Fprintln(stdout, "Global configuration:")
	for _, key := range sortedKeys(c.config.Global) {
		_, _ = fmt.Fprintf(stdout, "  %s: %s\n", key, c.config.Global[key])
	}
	sections := make([]string, 0, len(c.config.Sections))
	for sec := range c.config.Sections {
		sections = append(sections, sec)
	}
	sort.Strings(sections)
	for _, sec := range sections {
		_, _ = fmt.Fprintf(stdout, "\n[%s]\n", sec)
		opts := c.config.Sections[sec]
		for _, key := range sortedKeys(opts) {
			_, _ = fmt.Fprintf(stdout, "  %s: %s\n", key, opts[key])
		}
	}
}

// executeValidate validates the current config against the schema.
func (c *ConfigCommand) executeValidate(stdout io.Writer, schema *config.ConfigSchema) error {
	issues := config.ValidateConfig(c.config, schema)
	if _, err := config.RoleOptions(c.config, schema); err != nil {
		issues = append(issues, err.Error())
	}
	if len(issues) == 0 {
		_, _ = fmt.Fprintln(stdout, "Configuration is valid.")
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Configuration has %d issue(s):\n", len(issues))
	for _, issue := range issues {
		_, _ = fmt.Fprintf(stdout, "  - %s\n", issue)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InitCommand writes a starter configuration file.
type InitCommand struct {
	*BaseCommand
	configPath string
	force      bool
}

// NewInitCommand creates a new init command. An empty configPath selects
// the default location.
func NewInitCommand(configPath string) *InitCommand {
	return &InitCommand{
		BaseCommand: NewBaseCommand(
			"init",
			"Write a starter configuration file",
			"init [options]",
		),
		configPath: configPath,
	}
}

// SetupFlags configures the flags for the init command.
func (c *InitCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "Overwrite an existing configuration")
}

const starterConfig = `# vssdecide configuration file
# Format: optionName remainingLineIsTheValue
# Sections: [keeper] [attacker] [defender] [tree] [arena] [body.<name>]
# Run 'vssdecide config schema' for every option.

role keeper
robot.index 0
robot.body ararinha
tick.rate 60
log.level info
# serial.port /dev/ttyUSB0
# record.path matches.db

[body.ararinha]
kp 1
ki 0
kd 0

[keeper]
buffer-size 50

[tree]
# keeper.override ball.seen && ball.x > 100
`

// Execute writes the starter file.
func (c *InitCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}

	configPath := c.configPath
	if configPath == "" {
		var err error
		if configPath, err = config.GetConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if _, err := os.Stat(configPath); err == nil && !c.force {
		_, _ = fmt.Fprintf(stdout, "Configuration already exists at: %s\n", configPath)
		_, _ = fmt.Fprintln(stdout, "Use --force to overwrite existing configuration")
		return nil
	}

	if err := config.EnsureConfigDir(configPath); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	loaded, err := config.LoadFromPath(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: Failed to load created config: %v\n", err)
	} else if len(loaded.Warnings) > 0 {
		_, _ = fmt.Fprintf(stderr, "Warning: created config has %d issue(s)\n", len(loaded.Warnings))
	}

	_, _ = fmt.Fprintf(stdout, "Initialized vssdecide configuration at: %s\n", configPath)
	return nil
}
