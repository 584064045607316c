package role

import (
	"fmt"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/trajectory"
	"github.com/ararabots/vsscore/internal/world"
)

// KeeperState is a state of the goalkeeper machine.
type KeeperState int

const (
	KeeperStop KeeperState = iota
	KeeperNormal
	KeeperOutOfArea
	KeeperDefendBall
	KeeperSeekBall
	KeeperGoal
	KeeperSpin
	KeeperGoToBall
	KeeperFreeball
	KeeperPenalty
	KeeperMeta
)

var keeperStateNames = [...]string{
	KeeperStop:       "stop",
	KeeperNormal:     "normal",
	KeeperOutOfArea:  "out-of-area",
	KeeperDefendBall: "defend-ball",
	KeeperSeekBall:   "seek-ball",
	KeeperGoal:       "goal",
	KeeperSpin:       "spin",
	KeeperGoToBall:   "go-to-ball",
	KeeperFreeball:   "freeball",
	KeeperPenalty:    "penalty",
	KeeperMeta:       "meta",
}

func (s KeeperState) String() string {
	if s >= 0 && int(s) < len(keeperStateNames) {
		return keeperStateNames[s]
	}
	return fmt.Sprintf("KeeperState(%d)", int(s))
}

// KeeperConfig tunes the goalkeeper.
type KeeperConfig struct {
	Speed     float64
	SpinSpeed float64
	// SpinRadius is how close the ball must be for the keeper to spin it
	// away, provided it is outside the SpinBand.
	SpinRadius float64
	// A ball between SpinBandMin and SpinBandMax is in front of the goal
	// mouth and is blocked rather than spun.
	SpinBandMin, SpinBandMax float64
	// SeekLine, measured from the own goal line, is how far the ball must
	// have travelled before a keeper caught outside its area heads back.
	SeekLine float64
	History  int
	Follow   trajectory.FollowParams
}

// DefaultKeeperConfig returns the match tuning.
func DefaultKeeperConfig() KeeperConfig {
	return KeeperConfig{
		Speed:       100,
		SpinSpeed:   255,
		SpinRadius:  arena.NearRadius,
		SpinBandMin: 45,
		SpinBandMax: 85,
		SeekLine:    35,
		History:     trajectory.DefaultHistory,
		Follow:      trajectory.DefaultFollowParams(),
	}
}

// maxHops bounds how many same-tick handoffs one tick may make.
const maxHops = 4

// GoalKeeper guards the goal area: it tracks the ball along its line, spins
// loose balls out of the area and returns home when pulled out.
type GoalKeeper struct {
	base
	cfg     KeeperConfig
	state   KeeperState
	history *trajectory.BallTracker
}

var _ Controller = (*GoalKeeper)(nil)

func NewGoalKeeper(o Options, cfg KeeperConfig) *GoalKeeper {
	return &GoalKeeper{
		base:    newBase("Keeper", o),
		cfg:     cfg,
		history: trajectory.NewBallTracker(cfg.History),
	}
}

func (k *GoalKeeper) State() string { return k.state.String() }

// Current returns the active state.
func (k *GoalKeeper) Current() KeeperState { return k.state }

func (k *GoalKeeper) Reset() {
	k.state = KeeperStop
	k.history.Reset()
	k.resetMotion()
}

func (k *GoalKeeper) enter(s KeeperState) {
	if s != k.state {
		k.changed(k.state, s)
		k.state = s
	}
}

// wrap enters a set-piece state. Only a stopped keeper passes through it;
// one already playing keeps its state.
func (k *GoalKeeper) wrap(s KeeperState) {
	if k.state == KeeperStop {
		k.enter(s)
	}
}

func (k *GoalKeeper) Tick(bb *world.BlackBoard) action.Action {
	k.history.Observe(bb.Ball.Position)
	switch bb.Phase {
	case world.Stopped:
		k.enter(KeeperStop)
		return action.Halt
	case world.Normal:
		return k.normal(bb)
	case world.Freeball:
		k.wrap(KeeperFreeball)
	case world.Penalty:
		k.wrap(KeeperPenalty)
	case world.Meta:
		k.wrap(KeeperMeta)
		return k.normal(bb)
	default:
		return k.unknownPhase(bb)
	}
	if act, ok := k.special(bb); ok {
		return act
	}
	return k.normal(bb)
}

func (k *GoalKeeper) normal(bb *world.BlackBoard) action.Action {
	switch k.state {
	case KeeperStop, KeeperFreeball, KeeperPenalty, KeeperMeta:
		k.enter(KeeperNormal)
	case KeeperSpin, KeeperGoToBall:
		k.enter(KeeperDefendBall)
	}
	if k.state == KeeperNormal {
		k.enter(k.fromNormal(bb))
	}
	return k.handle(bb, 0)
}

func (k *GoalKeeper) fromNormal(bb *world.BlackBoard) KeeperState {
	keeper := k.geom.Classify(bb.Robot.Position)
	ball := k.geom.Classify(bb.Ball.Position)
	switch {
	case !keeper.IsGoalArea():
		return KeeperOutOfArea
	case ball.IsGoalArea():
		if k.defending(bb) {
			return KeeperDefendBall
		}
		return KeeperSeekBall
	case ball.IsGoal():
		return KeeperGoal
	default:
		return KeeperSeekBall
	}
}

func (k *GoalKeeper) defending(bb *world.BlackBoard) bool {
	return !k.geom.OnAttackSide(bb.Ball.Position, bb.Side, 0)
}

// handle runs the active state's handler. Handlers may hand the tick to
// another state; hops counts those handoffs.
func (k *GoalKeeper) handle(bb *world.BlackBoard, hops int) action.Action {
	if hops > maxHops {
		k.log.Error(k.prefix("state handoff loop"), "state", k.state.String())
		return action.Halt
	}
	switch k.state {
	case KeeperDefendBall:
		return k.defendBall(bb, hops)
	case KeeperSeekBall:
		return k.seekBall(bb, hops)
	case KeeperGoal:
		return k.goal(bb)
	case KeeperOutOfArea:
		return k.outOfArea(bb)
	case KeeperSpin:
		return k.spinBall(bb)
	case KeeperGoToBall:
		return k.goToBall(bb)
	default:
		return k.unhandled(k.state)
	}
}

func (k *GoalKeeper) handoff(bb *world.BlackBoard, next KeeperState, hops int) action.Action {
	k.enter(next)
	return k.handle(bb, hops+1)
}

func (k *GoalKeeper) defendBall(bb *world.BlackBoard, hops int) action.Action {
	ball := k.geom.Classify(bb.Ball.Position)
	switch {
	case !k.geom.Classify(bb.Robot.Position).IsGoalArea():
		return k.handoff(bb, KeeperOutOfArea, hops)
	case ball.IsGoalArea() && k.defending(bb):
		y := bb.Ball.Position.Y
		outsideBand := y < k.cfg.SpinBandMin || y > k.cfg.SpinBandMax
		if arena.NearWithin(bb.Ball.Position, bb.Robot.Position, k.cfg.SpinRadius) && outsideBand {
			return k.handoff(bb, KeeperSpin, hops)
		}
		return k.handoff(bb, KeeperGoToBall, hops)
	case ball.IsGoal():
		return k.handoff(bb, KeeperGoal, hops)
	default:
		return k.handoff(bb, KeeperSeekBall, hops)
	}
}

func (k *GoalKeeper) seekBall(bb *world.BlackBoard, hops int) action.Action {
	ball := k.geom.Classify(bb.Ball.Position)
	switch {
	case ball.IsGoalArea() && k.defending(bb):
		return k.handoff(bb, KeeperDefendBall, hops)
	case ball.IsGoalArea():
		return k.followBall(bb)
	case !k.geom.Classify(bb.Robot.Position).IsGoalArea() && k.ballPastSeekLine(bb):
		return k.handoff(bb, KeeperOutOfArea, hops)
	default:
		return k.followBall(bb)
	}
}

func (k *GoalKeeper) ballPastSeekLine(bb *world.BlackBoard) bool {
	p := bb.Ball.Position
	if !p.Seen() {
		return false
	}
	if bb.Side == arena.Left {
		return p.X > k.cfg.SeekLine
	}
	return p.X < k.geom.Length-k.cfg.SeekLine
}

func (k *GoalKeeper) followBall(bb *world.BlackBoard) action.Action {
	target := trajectory.FollowBall(k.geom, bb.Side, bb.Ball.Position, bb.Ball.Speed, k.history, k.cfg.Follow)
	act, _ := k.goTo(k.cfg.Speed, bb, target)
	return act
}

func (k *GoalKeeper) goal(bb *world.BlackBoard) action.Action {
	if !k.geom.Classify(bb.Ball.Position).IsGoal() {
		k.enter(KeeperDefendBall)
	}
	return action.Halt
}

func (k *GoalKeeper) outOfArea(bb *world.BlackBoard) action.Action {
	y := k.geom.Width / 2
	if bb.Ball.Position.Seen() {
		y = arena.Clamp(bb.Ball.Position.Y, k.cfg.Follow.MinY, k.cfg.Follow.MaxY)
	}
	act, reached := k.goTo(k.cfg.Speed, bb, arena.V(k.geom.KeeperX(bb.Side), y))
	if reached {
		k.enter(KeeperSeekBall)
	}
	return act
}

func (k *GoalKeeper) spinBall(bb *world.BlackBoard) action.Action {
	return k.spin(k.cfg.SpinSpeed, k.geom.SpinDirection(bb.Ball.Position, bb.Robot.Position, bb.Side, false))
}

func (k *GoalKeeper) goToBall(bb *world.BlackBoard) action.Action {
	act, _ := k.goTo(k.cfg.Speed, bb, arena.V(bb.Robot.Position.X, bb.Ball.Position.Y))
	return act
}
