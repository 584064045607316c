package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/motion"
	"github.com/ararabots/vsscore/internal/role"
)

// ErrUnknownBody is returned when robot.body names a body with no
// "[body.<name>]" section.
var ErrUnknownBody = errors.New("unknown robot body")

// Geometry returns the default field with the [arena] overrides applied.
func Geometry(c *Config, s *ConfigSchema) (arena.Geometry, error) {
	g := arena.DefaultGeometry()
	fields := []struct {
		key string
		dst *float64
	}{
		{"length", &g.Length},
		{"width", &g.Width},
		{"goal-y-min", &g.GoalYMin},
		{"goal-y-max", &g.GoalYMax},
		{"area-depth", &g.AreaDepth},
		{"area-y-min", &g.AreaYMin},
		{"area-y-max", &g.AreaYMax},
		{"bulge-rx", &g.BulgeRX},
		{"bulge-ry", &g.BulgeRY},
		{"corner", &g.Corner},
		{"bottom-line", &g.BottomLine},
		{"border", &g.Border},
		{"keeper-line", &g.KeeperLine},
	}
	for _, f := range fields {
		if _, ok := c.GetSectionOption("arena", f.key); !ok {
			continue
		}
		v, err := s.Float(c, "arena", f.key)
		if err != nil {
			return arena.Geometry{}, err
		}
		*f.dst = v
	}
	if err := g.Validate(); err != nil {
		return arena.Geometry{}, fmt.Errorf("invalid [arena]: %w", err)
	}
	return g, nil
}

// BodyGains returns the PID gains of the named body. An empty name selects
// the schema defaults.
func BodyGains(c *Config, s *ConfigSchema, name string) (motion.Gains, error) {
	section := BodyPrefix + name
	if name != "" {
		if _, ok := c.Sections[section]; !ok {
			return motion.Gains{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownBody, name, c.BodyNames())
		}
	}
	var (
		g   motion.Gains
		err error
	)
	if g.Kp, err = s.Float(c, section, "kp"); err != nil {
		return g, err
	}
	if g.Ki, err = s.Float(c, section, "ki"); err != nil {
		return g, err
	}
	if g.Kd, err = s.Float(c, section, "kd"); err != nil {
		return g, err
	}
	return g, nil
}

// RoleOptions assembles the controller options: field geometry, body gains
// and the per-role tuning sections.
func RoleOptions(c *Config, s *ConfigSchema) (role.Options, error) {
	o := role.DefaultOptions()
	var err error
	if o.Geometry, err = Geometry(c, s); err != nil {
		return o, err
	}
	if o.Gains, err = BodyGains(c, s, s.Resolve(c, "robot.body")); err != nil {
		return o, err
	}

	keeper := role.DefaultKeeperConfig()
	attacker := role.DefaultAttackerConfig()
	defender := role.DefaultDefenderConfig()
	tree := role.DefaultTreeConfig()

	p := sectionParser{c: c, s: s}
	p.float("keeper", "speed", &keeper.Speed)
	p.float("keeper", "spin-speed", &keeper.SpinSpeed)
	p.int("keeper", "buffer-size", &keeper.History)
	p.float("keeper", "defence-threshold", &keeper.SeekLine)

	p.float("attacker", "speed", &attacker.Speed)
	p.float("attacker", "spin-speed", &attacker.SpinSpeed)
	p.float("attacker", "attack-margin", &attacker.AttackMargin)
	p.int("attacker", "stuck-threshold", &attacker.StuckThreshold)

	p.float("defender", "speed", &defender.Speed)
	p.float("defender", "line-x", &defender.LineX)
	p.int("defender", "stuck-threshold", &defender.StuckThreshold)

	p.float("tree", "speed", &tree.Speed)
	p.duration("tree", "push-timeout", &tree.PushTimeout)
	p.duration("tree", "look-ahead", &tree.LookAhead)
	tree.History = keeper.History
	tree.Override = s.ResolveSection(c, "tree", "keeper.override")

	if p.err != nil {
		return o, p.err
	}
	if keeper.History < 2 {
		return o, fmt.Errorf("option \"buffer-size\" in [keeper]: need at least 2 positions, got %d", keeper.History)
	}

	o.Keeper, o.Attacker, o.Defender, o.Tree = &keeper, &attacker, &defender, &tree
	return o, nil
}

// sectionParser applies set section values over defaults, keeping the
// first error.
type sectionParser struct {
	c   *Config
	s   *ConfigSchema
	err error
}

func (p *sectionParser) set(section, key string) bool {
	if p.err != nil {
		return false
	}
	_, ok := p.c.GetSectionOption(section, key)
	return ok
}

func (p *sectionParser) float(section, key string, dst *float64) {
	if p.set(section, key) {
		*dst, p.err = p.s.Float(p.c, section, key)
	}
}

func (p *sectionParser) int(section, key string, dst *int) {
	if p.set(section, key) {
		*dst, p.err = p.s.Int(p.c, section, key)
	}
}

func (p *sectionParser) duration(section, key string, dst *time.Duration) {
	if p.set(section, key) {
		*dst, p.err = p.s.Duration(p.c, section, key)
	}
}
