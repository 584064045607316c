// Package role implements the per-robot decision makers: one state machine
// per field role plus a behavior-tree goalkeeper. A controller is ticked
// once per perception frame and answers with exactly one action.
package role

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/motion"
	"github.com/ararabots/vsscore/internal/world"
)

// Controller decides what one robot does this tick.
type Controller interface {
	// Tick reads the snapshot and returns the command to send. It never
	// returns action.None.
	Tick(bb *world.BlackBoard) action.Action
	// State names the active state, for logs and recordings.
	State() string
	// Reset returns the controller to its initial state.
	Reset()
}

// Options are shared by every controller constructor.
type Options struct {
	Geometry arena.Geometry
	// Motion defaults to a motion.Reference tuned with Gains.
	Motion motion.Primitives
	Gains  motion.Gains
	Logger *slog.Logger

	// Per-role tuning used by New; nil selects the defaults.
	Keeper   *KeeperConfig
	Attacker *AttackerConfig
	Defender *DefenderConfig
	Tree     *TreeConfig
}

// DefaultOptions returns the standard field with reference motion.
func DefaultOptions() Options {
	return Options{Geometry: arena.DefaultGeometry()}
}

// base carries what every controller needs to turn decisions into actions.
type base struct {
	name string
	geom arena.Geometry
	mv   motion.Primitives
	log  *slog.Logger
}

func newBase(name string, o Options) base {
	if o.Geometry == (arena.Geometry{}) {
		o.Geometry = arena.DefaultGeometry()
	}
	if o.Motion == nil {
		o.Motion = motion.NewReference(o.Gains)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return base{name: name, geom: o.Geometry, mv: o.Motion, log: o.Logger}
}

func (b *base) prefix(msg string) string { return "[" + b.name + "] " + msg }

func (b *base) changed(from, to fmt.Stringer) {
	b.log.Debug(b.prefix("state change"), "from", from.String(), "to", to.String())
}

// unknownPhase handles a phase outside the known set: never a panic, always
// a halt.
func (b *base) unknownPhase(bb *world.BlackBoard) action.Action {
	b.log.Error(b.prefix("unknown game phase"), "phase", int(bb.Phase))
	return action.Halt
}

// unhandled is the default branch of every state dispatch.
func (b *base) unhandled(state fmt.Stringer) action.Action {
	b.log.Error(b.prefix("no handler for state"), "state", state.String())
	return action.Halt
}

func (b *base) resetMotion() {
	if r, ok := b.mv.(interface{ Reset() }); ok {
		r.Reset()
	}
}

func (b *base) goTo(speed float64, bb *world.BlackBoard, target arena.Vec2) (action.Action, bool) {
	l, r, reached := b.mv.GoToPoint(speed, bb.Robot.Position, bb.Robot.Heading(), target)
	return action.Wheels(l, r), reached
}

func (b *base) spin(speed float64, dir arena.Rotation) action.Action {
	l, r, domain := b.mv.Spin(speed, dir == arena.Clockwise)
	return action.Spin(dir, l, r, domain)
}

func (b *base) chase(speed float64, bb *world.BlackBoard, opts motion.FieldOptions) (action.Action, bool) {
	if opts.AttackGoal == (arena.Vec2{}) {
		opts.AttackGoal = b.geom.AttackGoal(bb.Side)
	}
	l, r, reached := b.mv.FollowPotentialField(speed, bb.Robot.Position, bb.Robot.Heading(),
		bb.Robot.Speed, bb.EnemyPositions(), bb.Ball.Position, opts)
	return action.Wheels(l, r), reached
}

// face turns in place toward target, or holds still once within tolerance.
func (b *base) face(speed float64, bb *world.BlackBoard, target arena.Vec2, tolerance float64) action.Action {
	if !target.Seen() || !bb.Robot.Position.Seen() {
		return action.Halt
	}
	theta := arena.AngleBetween(bb.Robot.Heading(), target.Sub(bb.Robot.Position))
	// Either end of the robot may face the target.
	if math.Abs(theta) > math.Pi/2 {
		theta -= math.Copysign(math.Pi, theta)
	}
	if math.Abs(theta) <= tolerance {
		return action.Halt
	}
	if theta > 0 {
		return b.spin(speed, arena.CounterClockwise)
	}
	return b.spin(speed, arena.Clockwise)
}

const (
	penaltyBehindRadius  = 25
	penaltySpeed         = 220
	freeballBehindRadius = 15
	freeballSpeed        = 250
)

// penaltyKick is the executor's penalty routine: once behind the ball, drive
// it straight at the opponent goal. ok is false when the routine does not
// apply and the caller should play normally.
func (b *base) penaltyKick(bb *world.BlackBoard) (action.Action, bool) {
	if !arena.BehindBall(bb.Ball.Position, bb.Robot.Position, bb.Side, penaltyBehindRadius) {
		return action.None, false
	}
	act, _ := b.goTo(penaltySpeed, bb, b.geom.AttackGoal(bb.Side))
	return act, true
}

// freeballKick is the executor's freeball routine: once behind the ball,
// charge it along the potential field.
func (b *base) freeballKick(bb *world.BlackBoard) (action.Action, bool) {
	if !arena.BehindBall(bb.Ball.Position, bb.Robot.Position, bb.Side, freeballBehindRadius) {
		return action.None, false
	}
	act, _ := b.chase(freeballSpeed, bb, motion.FieldOptions{})
	return act, true
}

// special runs the set-piece routine for the current phase when this robot
// is the executor.
func (b *base) special(bb *world.BlackBoard) (action.Action, bool) {
	if !bb.IsSpecialPlayExecutor() {
		return action.None, false
	}
	switch bb.Phase {
	case world.Penalty:
		return b.penaltyKick(bb)
	case world.Freeball:
		return b.freeballKick(bb)
	}
	return action.None, false
}

// Factory builds a controller from shared options.
type Factory func(o Options) (Controller, error)

var registry = map[string]Factory{
	"keeper": func(o Options) (Controller, error) {
		return NewGoalKeeper(o, orDefault(o.Keeper, DefaultKeeperConfig)), nil
	},
	"attacker": func(o Options) (Controller, error) {
		return NewAttacker(o, orDefault(o.Attacker, DefaultAttackerConfig)), nil
	},
	"defender": func(o Options) (Controller, error) {
		return NewDefender(o, orDefault(o.Defender, DefaultDefenderConfig)), nil
	},
	"keeper-tree": func(o Options) (Controller, error) {
		return NewKeeperTree(o, orDefault(o.Tree, DefaultTreeConfig))
	},
}

func orDefault[T any](v *T, def func() T) T {
	if v != nil {
		return *v
	}
	return def()
}

// Names lists the registered role names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// New builds the named role.
func New(name string, o Options) (Controller, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("role: unknown role %q (known: %v)", name, Names())
	}
	return f(o)
}
