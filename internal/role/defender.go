package role

import (
	"fmt"
	"math"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/motion"
	"github.com/ararabots/vsscore/internal/trajectory"
	"github.com/ararabots/vsscore/internal/world"
)

// DefenderState is a state of the defender machine.
type DefenderState int

const (
	DefenderStop DefenderState = iota
	DefenderNormal
	DefenderDefend
	DefenderWaitBall
	DefenderSpin
	DefenderMove
	DefenderBorder
	DefenderArea
	DefenderLocked
	DefenderFreeball
	DefenderPenalty
	DefenderMeta
)

var defenderStateNames = [...]string{
	DefenderStop:     "stop",
	DefenderNormal:   "normal",
	DefenderDefend:   "defend",
	DefenderWaitBall: "wait-ball",
	DefenderSpin:     "spin",
	DefenderMove:     "move",
	DefenderBorder:   "border",
	DefenderArea:     "area",
	DefenderLocked:   "locked",
	DefenderFreeball: "freeball",
	DefenderPenalty:  "penalty",
	DefenderMeta:     "meta",
}

func (s DefenderState) String() string {
	if s >= 0 && int(s) < len(defenderStateNames) {
		return defenderStateNames[s]
	}
	return fmt.Sprintf("DefenderState(%d)", int(s))
}

// DefenderConfig tunes the defender.
type DefenderConfig struct {
	Speed     float64
	SpinSpeed float64
	// LineX is the defender's holding line, measured from the own goal line.
	LineX float64
	// SpinRadius is the ball distance at which an open-field ball is spun.
	SpinRadius float64
	// BorderSpinRadius is the same for a ball on the wall.
	BorderSpinRadius float64
	// WallAngle (radians) is how squarely the robot must face a wall to
	// count as pinned against it.
	WallAngle      float64
	StuckThreshold int
	StuckSpeed     float64
}

// DefaultDefenderConfig returns the match tuning.
func DefaultDefenderConfig() DefenderConfig {
	return DefenderConfig{
		Speed:            169,
		SpinSpeed:        255,
		LineX:            37.5,
		SpinRadius:       arena.NearRadius,
		BorderSpinRadius: 7.5,
		WallAngle:        30 * math.Pi / 180,
		StuckThreshold:   60,
		StuckSpeed:       1,
	}
}

// Defender holds a line in front of its own area and clears balls that
// reach its half.
type Defender struct {
	base
	cfg   DefenderConfig
	state DefenderState
	stuck *trajectory.StuckDetector
	last  action.Action
}

var _ Controller = (*Defender)(nil)

func NewDefender(o Options, cfg DefenderConfig) *Defender {
	stuck := trajectory.NewStuckDetector()
	stuck.Threshold, stuck.MinSpeed = cfg.StuckThreshold, cfg.StuckSpeed
	return &Defender{
		base:  newBase("Defender", o),
		cfg:   cfg,
		stuck: stuck,
		last:  action.Halt,
	}
}

func (d *Defender) State() string { return d.state.String() }

// Current returns the active state.
func (d *Defender) Current() DefenderState { return d.state }

func (d *Defender) Reset() {
	d.state = DefenderStop
	d.stuck.Reset()
	d.last = action.Halt
	d.resetMotion()
}

func (d *Defender) enter(s DefenderState) {
	if s != d.state {
		d.changed(d.state, s)
		d.state = s
	}
}

func (d *Defender) wrap(s DefenderState) {
	if d.state == DefenderStop {
		d.enter(s)
	}
}

func (d *Defender) Tick(bb *world.BlackBoard) action.Action {
	act := d.decide(bb)
	d.last = act
	return act
}

func (d *Defender) decide(bb *world.BlackBoard) action.Action {
	switch bb.Phase {
	case world.Stopped:
		d.enter(DefenderStop)
		return action.Halt
	case world.Normal:
		return d.normal(bb)
	case world.Freeball:
		d.wrap(DefenderFreeball)
	case world.Penalty:
		d.wrap(DefenderPenalty)
	case world.Meta:
		d.wrap(DefenderMeta)
		return d.normal(bb)
	default:
		return d.unknownPhase(bb)
	}
	if act, ok := d.special(bb); ok {
		return act
	}
	return d.normal(bb)
}

func (d *Defender) normal(bb *world.BlackBoard) action.Action {
	switch d.state {
	case DefenderStop, DefenderFreeball, DefenderPenalty, DefenderMeta:
		d.enter(DefenderNormal)
	case DefenderSpin:
		d.enter(DefenderDefend)
	}

	robotZone := d.geom.Classify(bb.Robot.Position)
	if d.stuck.Update(!d.last.IsZero(), bb.Robot.MeasuredSpeed()) && robotZone.IsEdge() {
		d.enter(DefenderLocked)
	}
	if d.state == DefenderNormal {
		d.enter(DefenderDefend)
	}
	return d.handle(bb, 0)
}

func (d *Defender) handle(bb *world.BlackBoard, hops int) action.Action {
	if hops > maxHops {
		d.log.Error(d.prefix("state handoff loop"), "state", d.state.String())
		return action.Halt
	}
	switch d.state {
	case DefenderDefend:
		return d.defend(bb, hops)
	case DefenderWaitBall:
		return d.waitBall(bb, hops)
	case DefenderMove:
		return d.move(bb, hops)
	case DefenderBorder:
		return d.border(bb, hops)
	case DefenderArea:
		return d.area(bb, hops)
	case DefenderLocked:
		return d.locked(bb, hops)
	case DefenderSpin:
		return d.spinBall(bb)
	default:
		return d.unhandled(d.state)
	}
}

func (d *Defender) handoff(bb *world.BlackBoard, next DefenderState, hops int) action.Action {
	d.enter(next)
	return d.handle(bb, hops+1)
}

func (d *Defender) inOwnArea(bb *world.BlackBoard) bool {
	return d.geom.Classify(bb.Robot.Position).Defends(bb.Side)
}

// ballOnDefense reports whether the ball is in the own half but not yet in
// the keeper's goal or area.
func (d *Defender) ballOnDefense(bb *world.BlackBoard) bool {
	ball := bb.Ball.Position
	return ball.Seen() &&
		!d.geom.OnAttackSide(ball, bb.Side, 0) &&
		!d.geom.Classify(ball).Defends(bb.Side)
}

func (d *Defender) holdPoint(bb *world.BlackBoard) arena.Vec2 {
	y := d.geom.Width / 2
	if bb.Ball.Position.Seen() {
		y = arena.Clamp(bb.Ball.Position.Y, d.geom.Border, d.geom.Width-d.geom.Border)
	}
	return arena.V(d.geom.Mirror(bb.Side, d.cfg.LineX), y)
}

// defend routes to the state that fits the current picture.
func (d *Defender) defend(bb *world.BlackBoard, hops int) action.Action {
	switch {
	case d.inOwnArea(bb):
		return d.handoff(bb, DefenderArea, hops)
	case !d.ballOnDefense(bb):
		return d.handoff(bb, DefenderWaitBall, hops)
	case d.geom.Classify(bb.Ball.Position).IsEdge():
		return d.handoff(bb, DefenderBorder, hops)
	case arena.NearWithin(bb.Ball.Position, bb.Robot.Position, d.cfg.SpinRadius):
		return d.handoff(bb, DefenderSpin, hops)
	default:
		return d.handoff(bb, DefenderMove, hops)
	}
}

func (d *Defender) waitBall(bb *world.BlackBoard, hops int) action.Action {
	switch {
	case d.inOwnArea(bb):
		return d.handoff(bb, DefenderArea, hops)
	case d.ballOnDefense(bb):
		return d.handoff(bb, DefenderDefend, hops)
	}
	act, _ := d.goTo(d.cfg.Speed, bb, d.holdPoint(bb))
	return act
}

func (d *Defender) move(bb *world.BlackBoard, hops int) action.Action {
	switch {
	case d.inOwnArea(bb):
		return d.handoff(bb, DefenderArea, hops)
	case !d.ballOnDefense(bb), d.geom.Classify(bb.Ball.Position).IsEdge():
		return d.handoff(bb, DefenderDefend, hops)
	}
	act, reached := d.chase(d.cfg.Speed, bb, motion.FieldOptions{})
	if reached {
		return d.handoff(bb, DefenderSpin, hops)
	}
	return act
}

func (d *Defender) border(bb *world.BlackBoard, hops int) action.Action {
	switch {
	case d.inOwnArea(bb):
		return d.handoff(bb, DefenderArea, hops)
	case !d.ballOnDefense(bb), !d.geom.Classify(bb.Ball.Position).IsEdge():
		return d.handoff(bb, DefenderDefend, hops)
	case arena.NearWithin(bb.Ball.Position, bb.Robot.Position, d.cfg.BorderSpinRadius):
		return d.handoff(bb, DefenderSpin, hops)
	}
	act, _ := d.goTo(d.cfg.Speed, bb, bb.Ball.Position)
	return act
}

// area walks the robot out of its own keeper's area.
func (d *Defender) area(bb *world.BlackBoard, hops int) action.Action {
	if !d.inOwnArea(bb) {
		return d.handoff(bb, DefenderDefend, hops)
	}
	act, _ := d.goTo(d.cfg.Speed, bb, d.holdPoint(bb))
	return act
}

// locked frees a robot pinned on a wall: spin while facing it, otherwise
// back off to the holding line.
func (d *Defender) locked(bb *world.BlackBoard, hops int) action.Action {
	zone := d.geom.Classify(bb.Robot.Position)
	if zone == arena.Center {
		d.stuck.Reset()
		return d.handoff(bb, DefenderDefend, hops)
	}
	if normal, ok := zone.WallNormal(); ok {
		theta := math.Abs(arena.AngleBetween(bb.Robot.Heading(), normal))
		if theta <= d.cfg.WallAngle || theta >= math.Pi-d.cfg.WallAngle {
			return d.spin(d.cfg.SpinSpeed, d.geom.SpinDirection(bb.Ball.Position, bb.Robot.Position, bb.Side, true))
		}
	}
	act, _ := d.goTo(d.cfg.Speed, bb, arena.V(d.geom.Mirror(bb.Side, d.cfg.LineX), d.geom.Width/2))
	return act
}

// spinBall sweeps the ball toward the nearer side wall, away from the goal
// mouth.
func (d *Defender) spinBall(bb *world.BlackBoard) action.Action {
	dir := arena.Clockwise
	if bb.Ball.Position.Y < d.geom.Width/2 {
		dir = arena.CounterClockwise
	}
	if bb.Side == arena.Right {
		dir = dir.Flip()
	}
	return d.spin(d.cfg.SpinSpeed, dir)
}
