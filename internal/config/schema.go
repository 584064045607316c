package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// OptionType is the value type an option is validated and parsed as.
type OptionType string

const (
	TypeString   OptionType = "string"
	TypeInt      OptionType = "int"
	TypeFloat    OptionType = "float"
	TypeDuration OptionType = "duration"
)

// ConfigOption declares one option. Section is "" for global options;
// every "[body.<name>]" section shares the options declared under "body".
type ConfigOption struct {
	Key         string
	Section     string
	Type        OptionType
	Default     string
	Description string
	// EnvVar overrides the file value of a global option when set.
	EnvVar string
}

type optionKey struct{ section, key string }

// ConfigSchema is the set of options vssdecide understands. It drives
// validation, the "config schema" listing and typed value resolution.
type ConfigSchema struct {
	order []optionKey
	opts  map[optionKey]ConfigOption
}

// NewSchema creates an empty schema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{opts: make(map[optionKey]ConfigOption)}
}

// Register declares opt. Registering the same section and key again
// replaces the earlier declaration but keeps its listing position.
func (s *ConfigSchema) Register(opt ConfigOption) {
	k := optionKey{opt.Section, opt.Key}
	if _, ok := s.opts[k]; !ok {
		s.order = append(s.order, k)
	}
	s.opts[k] = opt
}

// RegisterAll declares every option in opts.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, o := range opts {
		s.Register(o)
	}
}

// Lookup returns the declaration of key in the schema section, or nil.
// Callers holding a config file section name should use IsKnown.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	o, ok := s.opts[optionKey{section, key}]
	if !ok {
		return nil
	}
	return &o
}

// IsKnown reports whether key is declared for the config file section.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	return s.Lookup(schemaSection(section), key) != nil
}

// HasSection reports whether the config file section declares any option.
func (s *ConfigSchema) HasSection(section string) bool {
	section = schemaSection(section)
	if section == "" {
		return false
	}
	for _, k := range s.order {
		if k.section == section {
			return true
		}
	}
	return false
}

// schemaSection maps "[body.<name>]" onto "body".
func schemaSection(section string) string {
	if strings.HasPrefix(section, BodyPrefix) {
		return bodySection
	}
	return section
}

// Options returns the declarations of a schema section in registration
// order. Use "" for the global options.
func (s *ConfigSchema) Options(section string) []ConfigOption {
	var out []ConfigOption
	for _, k := range s.order {
		if k.section == section {
			out = append(out, s.opts[k])
		}
	}
	return out
}

// Sections returns the named schema sections, sorted.
func (s *ConfigSchema) Sections() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range s.order {
		if k.section != "" && !seen[k.section] {
			seen[k.section] = true
			out = append(out, k.section)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value of a global option: its environment
// variable, else the file value, else the default. Unknown keys that are
// not in the file resolve to "".
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	opt := s.Lookup("", key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if v, ok := c.GetGlobalOption(key); ok {
		return v
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveSection returns the file value of a section option, else its
// default. Section options have no environment overrides.
func (s *ConfigSchema) ResolveSection(c *Config, section, key string) string {
	if v, ok := c.GetSectionOption(section, key); ok {
		return v
	}
	if opt := s.Lookup(schemaSection(section), key); opt != nil {
		return opt.Default
	}
	return ""
}

func (s *ConfigSchema) resolve(c *Config, section, key string) string {
	if section == "" {
		return s.Resolve(c, key)
	}
	return s.ResolveSection(c, section, key)
}

// Int resolves an option and parses it as an int.
func (s *ConfigSchema) Int(c *Config, section, key string) (int, error) {
	v := s.resolve(c, section, key)
	if err := validateType(TypeInt, v); err != nil {
		return 0, optionError(section, key, err)
	}
	n, _ := strconv.Atoi(v)
	return n, nil
}

// Float resolves an option and parses it as a finite float64.
func (s *ConfigSchema) Float(c *Config, section, key string) (float64, error) {
	v := s.resolve(c, section, key)
	if err := validateType(TypeFloat, v); err != nil {
		return 0, optionError(section, key, err)
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f, nil
}

// Duration resolves an option and parses it with time.ParseDuration.
func (s *ConfigSchema) Duration(c *Config, section, key string) (time.Duration, error) {
	v := s.resolve(c, section, key)
	if err := validateType(TypeDuration, v); err != nil {
		return 0, optionError(section, key, err)
	}
	d, _ := time.ParseDuration(v)
	return d, nil
}

func optionError(section, key string, err error) error {
	if section == "" {
		return fmt.Errorf("global option %q: %w", key, err)
	}
	return fmt.Errorf("option %q in [%s]: %w", key, section, err)
}

// ValidateConfig checks c against s and returns the sorted issues: unknown
// options and sections, and values that do not parse as their type.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string
	check := func(section, key, value string) {
		opt := s.Lookup(schemaSection(section), key)
		switch {
		case opt == nil && section == "":
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
		case opt == nil:
			issues = append(issues, fmt.Sprintf("unknown option in [%s]: %q (value: %q)", section, key, value))
		default:
			if err := validateType(opt.Type, value); err != nil {
				issues = append(issues, optionError(section, key, err).Error())
			}
		}
	}

	for key, value := range c.Global {
		check("", key, value)
	}
	for section, opts := range c.Sections {
		if !s.HasSection(section) {
			issues = append(issues, fmt.Sprintf("unknown section: [%s]", section))
			continue
		}
		for key, value := range opts {
			check(section, key, value)
		}
	}

	sort.Strings(issues)
	return issues
}

func validateType(t OptionType, value string) error {
	var err error
	switch t {
	case TypeString, "":
		return nil
	case TypeInt:
		_, err = strconv.Atoi(value)
	case TypeFloat:
		var f float64
		if f, err = strconv.ParseFloat(value, 64); err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			err = strconv.ErrRange
		}
	case TypeDuration:
		_, err = time.ParseDuration(value)
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	if err != nil {
		return fmt.Errorf("expected %s, got %q", t, value)
	}
	return nil
}

// FormatHelp lists every option, globals first, one aligned line each.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder
	sections := append([]string{""}, s.Sections()...)
	for _, sec := range sections {
		opts := s.Options(sec)
		if len(opts) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if sec == "" {
			b.WriteString("Global Options:\n")
		} else if sec == bodySection {
			fmt.Fprintf(&b, "[%s<name>] Options:\n", BodyPrefix)
		} else {
			fmt.Fprintf(&b, "[%s] Options:\n", sec)
		}
		w := tabwriter.NewWriter(&b, 0, 8, 2, ' ', 0)
		for _, o := range opts {
			fmt.Fprintf(w, "  %s\t%s%s\n", o.Key, o.Description, optionNotes(o))
		}
		_ = w.Flush()
	}
	return b.String()
}

func optionNotes(o ConfigOption) string {
	var notes []string
	if o.Type != "" && o.Type != TypeString {
		notes = append(notes, "type: "+string(o.Type))
	}
	if o.Default != "" {
		notes = append(notes, "default: "+o.Default)
	}
	if o.EnvVar != "" {
		notes = append(notes, "env: "+o.EnvVar)
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}
