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

// AttackerState is a state of the attacker machine.
type AttackerState int

const (
	AttackerStop AttackerState = iota
	AttackerNormal
	AttackerReachBall
	AttackerBorder
	AttackerGoToPoint
	AttackerWaitBall
	AttackerSpin
	AttackerStuck
	AttackerFreeball
	AttackerPenalty
	AttackerMeta
)

var attackerStateNames = [...]string{
	AttackerStop:      "stop",
	AttackerNormal:    "normal",
	AttackerReachBall: "reach-ball",
	AttackerBorder:    "border",
	AttackerGoToPoint: "go-to-point",
	AttackerWaitBall:  "wait-ball",
	AttackerSpin:      "spin",
	AttackerStuck:     "stuck",
	AttackerFreeball:  "freeball",
	AttackerPenalty:   "penalty",
	AttackerMeta:      "meta",
}

func (s AttackerState) String() string {
	if s >= 0 && int(s) < len(attackerStateNames) {
		return attackerStateNames[s]
	}
	return fmt.Sprintf("AttackerState(%d)", int(s))
}

// AttackerConfig tunes the attacker.
type AttackerConfig struct {
	Speed     float64
	SpinSpeed float64
	// AttackMargin extends the attacking half toward the own goal.
	AttackMargin float64
	// WaitOffset places the waiting point ahead of the centre spot.
	WaitOffset float64
	// WaitRadius is how close to the waiting point counts as arrived.
	WaitRadius float64
	// BorderSpinRadius is the ball distance at which a ball on the wall is
	// spun off it.
	BorderSpinRadius float64
	// SpinRelease is the ball distance beyond which spinning stops.
	SpinRelease float64
	// StuckThreshold is the number of blocked ticks before recovery.
	StuckThreshold int
	StuckSpeed     float64
	Recovery       arena.Vec2
	// FaceSpeed and FaceTolerance (radians) govern turning toward the ball
	// while waiting.
	FaceSpeed     float64
	FaceTolerance float64
}

// DefaultAttackerConfig returns the match tuning.
func DefaultAttackerConfig() AttackerConfig {
	return AttackerConfig{
		Speed:            150,
		SpinSpeed:        255,
		WaitOffset:       20,
		WaitRadius:       10,
		BorderSpinRadius: 8,
		SpinRelease:      7,
		StuckThreshold:   60,
		StuckSpeed:       1,
		Recovery:         arena.V(65, 65),
		FaceSpeed:        60,
		FaceTolerance:    15 * math.Pi / 180,
	}
}

// Attacker presses the ball in the attacking half and waits ahead of the
// centre spot while the ball is in its own half.
type Attacker struct {
	base
	cfg   AttackerConfig
	state AttackerState
	stuck *trajectory.StuckDetector
	last  action.Action
}

var _ Controller = (*Attacker)(nil)

func NewAttacker(o Options, cfg AttackerConfig) *Attacker {
	stuck := trajectory.NewStuckDetector()
	stuck.Threshold, stuck.MinSpeed = cfg.StuckThreshold, cfg.StuckSpeed
	return &Attacker{
		base:  newBase("Attacker", o),
		cfg:   cfg,
		stuck: stuck,
		last:  action.Halt,
	}
}

func (a *Attacker) State() string { return a.state.String() }

// Current returns the active state.
func (a *Attacker) Current() AttackerState { return a.state }

func (a *Attacker) Reset() {
	a.state = AttackerStop
	a.stuck.Reset()
	a.last = action.Halt
	a.resetMotion()
}

func (a *Attacker) enter(s AttackerState) {
	if s != a.state {
		a.changed(a.state, s)
		a.state = s
	}
}

func (a *Attacker) wrap(s AttackerState) {
	if a.state == AttackerStop {
		a.enter(s)
	}
}

func (a *Attacker) Tick(bb *world.BlackBoard) action.Action {
	act := a.decide(bb)
	a.last = act
	return act
}

func (a *Attacker) decide(bb *world.BlackBoard) action.Action {
	switch bb.Phase {
	case world.Stopped:
		a.enter(AttackerStop)
		return action.Halt
	case world.Normal:
		return a.normal(bb)
	case world.Freeball:
		a.wrap(AttackerFreeball)
	case world.Penalty:
		a.wrap(AttackerPenalty)
	case world.Meta:
		a.wrap(AttackerMeta)
		return a.normal(bb)
	default:
		return a.unknownPhase(bb)
	}
	if act, ok := a.special(bb); ok {
		return act
	}
	return a.normal(bb)
}

func (a *Attacker) waitPoint(side arena.Side) arena.Vec2 {
	c := a.geom.Center()
	return arena.V(c.X+side.Sign()*a.cfg.WaitOffset, c.Y)
}

func (a *Attacker) normal(bb *world.BlackBoard) action.Action {
	switch a.state {
	case AttackerStop, AttackerFreeball, AttackerPenalty, AttackerMeta:
		a.enter(AttackerNormal)
	}

	robot, ball := bb.Robot.Position, bb.Ball.Position
	robotZone := a.geom.Classify(robot)
	if a.stuck.Update(!a.last.IsZero(), bb.Robot.MeasuredSpeed()) && robotZone != arena.Center {
		a.enter(AttackerStuck)
	}

	attack := a.geom.OnAttackSide(ball, bb.Side, a.cfg.AttackMargin)
	ballOnEdge := a.geom.Classify(ball).IsEdge()

	// Guards run in order, so one tick may pass through several states.
	if a.state == AttackerNormal {
		switch {
		case attack && ballOnEdge:
			a.enter(AttackerBorder)
		case attack:
			a.enter(AttackerReachBall)
		default:
			a.enter(AttackerGoToPoint)
		}
	}
	if a.state == AttackerReachBall {
		switch {
		case !attack:
			a.enter(AttackerGoToPoint)
		case ballOnEdge:
			a.enter(AttackerBorder)
		case arena.BehindBall(ball, robot, bb.Side, arena.NearRadius):
			a.enter(AttackerSpin)
		}
	}
	if a.state == AttackerBorder {
		switch {
		case !attack:
			a.enter(AttackerGoToPoint)
		case !ballOnEdge:
			a.enter(AttackerReachBall)
		case arena.Distance(ball, robot) < a.cfg.BorderSpinRadius:
			a.enter(AttackerSpin)
		}
	}
	if a.state == AttackerGoToPoint {
		switch {
		case attack:
			a.enter(AttackerReachBall)
		case arena.Distance(robot, a.waitPoint(bb.Side)) < a.cfg.WaitRadius:
			a.enter(AttackerWaitBall)
		}
	}
	if a.state == AttackerWaitBall && attack {
		a.enter(AttackerReachBall)
	}
	if a.state == AttackerSpin && arena.Distance(ball, robot) > a.cfg.SpinRelease {
		if robotZone != arena.Center {
			a.enter(AttackerBorder)
		} else {
			a.enter(AttackerReachBall)
		}
	}

	switch a.state {
	case AttackerStuck:
		return a.recover(bb, robotZone)
	case AttackerBorder:
		act, _ := a.chase(a.cfg.Speed, bb, motion.FieldOptions{AttackGoal: arena.Unseen})
		return act
	case AttackerReachBall:
		act, _ := a.chase(a.cfg.Speed, bb, motion.FieldOptions{})
		return act
	case AttackerGoToPoint:
		act, _ := a.goTo(a.cfg.Speed, bb, a.waitPoint(bb.Side))
		return act
	case AttackerWaitBall:
		return a.face(a.cfg.FaceSpeed, bb, ball, a.cfg.FaceTolerance)
	case AttackerSpin:
		return a.spin(a.cfg.SpinSpeed, a.geom.SpinDirection(ball, robot, bb.Side, false))
	default:
		return a.unhandled(a.state)
	}
}

// recover drives back toward open field until the robot is clear of the
// walls.
func (a *Attacker) recover(bb *world.BlackBoard, zone arena.Zone) action.Action {
	if zone == arena.Center {
		a.enter(AttackerNormal)
	}
	act, _ := a.goTo(a.cfg.Speed, bb, a.cfg.Recovery)
	return act
}
