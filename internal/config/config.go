// Package config reads the vssdecide configuration file.
//
// The file holds one "option value" pair per line, the value being the rest
// of the line. Lines starting with '#' are comments. A "[name]" header opens
// a section whose options apply to one part of the robot:
//
//	role keeper
//	tick.rate 60
//	robot.body ararinha
//
//	[body.ararinha]
//	kp 1.2
//
//	[keeper]
//	buffer-size 50
//
// Options not declared by DefaultSchema, and values that do not parse as
// their declared type, are kept but reported as warnings.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// BodyPrefix prefixes the sections holding per-body PID gains.
const BodyPrefix = "body."

const bodySection = "body"

// Config is a parsed configuration file.
type Config struct {
	Global   map[string]string
	Sections map[string]map[string]string
	// Warnings are the validation issues found while loading.
	Warnings []string
}

// NewConfig creates an empty configuration.
func NewConfig() *Config {
	return &Config{
		Global:   make(map[string]string),
		Sections: make(map[string]map[string]string),
	}
}

// Load reads the configuration at GetConfigPath.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration at path. A missing file is an empty
// configuration; a symlink is an error.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	case fi.Mode()&fs.ModeSymlink != 0:
		return nil, fmt.Errorf("symlink not allowed in config path: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses a configuration and validates it against
// DefaultSchema. Only malformed section headers are errors.
func LoadFromReader(r io.Reader) (*Config, error) {
	c := NewConfig()
	opts := c.Global

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if name, ok := sectionHeader(line); ok {
			if err := checkSectionName(name); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			if c.Sections[name] == nil {
				c.Sections[name] = make(map[string]string)
			}
			opts = c.Sections[name]
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		opts[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	for _, issue := range ValidateConfig(c, DefaultSchema()) {
		c.warn(issue)
	}
	return c, nil
}

func sectionHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", false
	}
	return strings.TrimSpace(line[1 : len(line)-1]), true
}

func checkSectionName(name string) error {
	switch name {
	case "":
		return errors.New("empty section name")
	case bodySection, BodyPrefix:
		return fmt.Errorf("section [%s] needs a body name, e.g. [%sararinha]", name, BodyPrefix)
	}
	return nil
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
	slog.Warn("[Config] " + msg)
}

// GetGlobalOption returns a global option as written in the file.
func (c *Config) GetGlobalOption(name string) (string, bool) {
	v, ok := c.Global[name]
	return v, ok
}

// GetSectionOption returns a section option as written in the file. There
// is no fallback to globals: "speed" means something different per role.
func (c *Config) GetSectionOption(section, name string) (string, bool) {
	v, ok := c.Sections[section][name]
	return v, ok
}

func (c *Config) SetGlobalOption(name, value string) {
	c.Global[name] = value
}

func (c *Config) SetSectionOption(section, name, value string) {
	if c.Sections[section] == nil {
		c.Sections[section] = make(map[string]string)
	}
	c.Sections[section][name] = value
}

// BodyNames returns the names of the "[body.<name>]" sections, sorted.
func (c *Config) BodyNames() []string {
	var names []string
	for sec := range c.Sections {
		if name, ok := strings.CutPrefix(sec, BodyPrefix); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
