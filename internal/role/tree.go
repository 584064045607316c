package role

import (
	"fmt"
	"math"
	"time"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/behavior"
	"github.com/ararabots/vsscore/internal/trajectory"
	"github.com/ararabots/vsscore/internal/world"
)

// TreeConfig tunes the behavior-tree goalkeeper.
type TreeConfig struct {
	Speed       float64
	MarkSpeed   float64
	BottomSpeed float64
	PushSpeed   float64
	SpinSpeed   float64
	// PushTimeout bounds how long the keeper pushes a ball out of its area
	// before giving up and spinning it.
	PushTimeout time.Duration
	// LookAhead caps the velocity extrapolation used when the recorded ball
	// path does not head for the keeper's line.
	LookAhead time.Duration
	// AlignTolerance (radians) is how far off the goal-line axis still
	// counts as aligned.
	AlignTolerance float64
	AlignSpeed     float64
	// History is the number of ball positions fitted to predict where the
	// ball crosses the keeper's line.
	History int
	// Override is an optional expression; while it holds the keeper parks
	// on its goal centre.
	Override string
}

// DefaultTreeConfig returns the match tuning.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		Speed:          100,
		MarkSpeed:      120,
		BottomSpeed:    110,
		PushSpeed:      150,
		SpinSpeed:      255,
		PushTimeout:    time.Second,
		LookAhead:      time.Second,
		AlignTolerance: 10 * math.Pi / 180,
		AlignSpeed:     60,
		History:        trajectory.DefaultHistory,
	}
}

const (
	clearAcceptance   = 7
	pushBehindRadius  = 10
	leaveAcceptance   = 4
	markAcceptance    = 4
	centreAcceptance  = 3
	enemyBallRadius   = 7
	enemyKeeperRadius = 15
	markMinY          = 50
	markMaxY          = 80
	bottomX           = 3.5
	bottomMinY        = 35
	bottomMaxY        = 95
)

// KeeperTree is a goalkeeper expressed as a behavior tree rather than a
// state machine. State reports the leaf that produced the last action.
type KeeperTree struct {
	base
	cfg     TreeConfig
	root    behavior.Node
	history *trajectory.BallTracker
	active  string

	resettable []behavior.Resetter
}

var _ Controller = (*KeeperTree)(nil)

// NewKeeperTree builds the tree. It fails only when cfg.Override does not
// compile.
func NewKeeperTree(o Options, cfg TreeConfig) (*KeeperTree, error) {
	t := &KeeperTree{
		base:    newBase("KeeperTree", o),
		cfg:     cfg,
		history: trajectory.NewBallTracker(cfg.History),
	}
	root, err := t.build()
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func (t *KeeperTree) State() string {
	if t.active == "" {
		return "idle"
	}
	return t.active
}

func (t *KeeperTree) Reset() {
	for _, r := range t.resettable {
		r.Reset()
	}
	t.history.Reset()
	t.active = ""
	t.resetMotion()
}

func (t *KeeperTree) Tick(bb *world.BlackBoard) action.Action {
	if !bb.Phase.Valid() {
		t.active = ""
		return t.unknownPhase(bb)
	}
	t.history.Observe(bb.Ball.Position)
	prev := t.active
	t.active = ""
	_, act := t.root.Run(bb)
	if prev != t.active {
		t.log.Debug(t.prefix("active leaf"), "from", prev, "to", t.active)
	}
	if !act.Present() {
		return action.Halt
	}
	return act
}

// leaf wraps fn so the tree remembers which leaf acted last.
func (t *KeeperTree) leaf(name string, fn func(bb *world.BlackBoard) (behavior.Status, action.Action)) behavior.Node {
	return behavior.NewLeaf(name, func(bb *world.BlackBoard) (behavior.Status, action.Action) {
		t.active = name
		return fn(bb)
	})
}

func (t *KeeperTree) track(r behavior.Resetter) {
	t.resettable = append(t.resettable, r)
}

func (t *KeeperTree) build() (behavior.Node, error) {
	actions := behavior.NewSelector("NormalActions")
	actions.Add(t.leaf("SpecialPlay", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
		if act, ok := t.special(bb); ok {
			return behavior.Running, act
		}
		return behavior.Failure, action.None
	}))

	if t.cfg.Override != "" {
		cond, err := behavior.NewExprCondition("Override", t.cfg.Override, t.geom, t.log)
		if err != nil {
			return nil, fmt.Errorf("keeper tree override: %w", err)
		}
		actions.Add(behavior.NewSequence("OverrideHold",
			cond,
			t.leaf("HoldGoalCenter", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
				act, _ := t.goTo(t.cfg.Speed, bb, t.goalCentre(bb))
				return behavior.Running, act
			}),
		))
	}

	align := behavior.NewRepeatN(1, t.alignWithAxis())
	t.track(align)

	actions.Add(t.clearDefenseArea())
	leave := behavior.NewOnStatusChange(t.getOutOfGoal(), align.Reset)
	t.track(leave)
	actions.Add(leave)
	// An exhausted or finished alignment must not stop the selector.
	actions.Add(behavior.NewInvert(align))
	actions.Add(t.ballDefenseSide())
	actions.Add(t.ballAttackSide())

	// Set pieces reach the selector through SpecialPlay, so only Stopped
	// is gated out.
	return behavior.NewSequence("Play",
		behavior.NewCondition("InPlay", func(bb *world.BlackBoard) bool {
			return bb.Phase != world.Stopped
		}),
		actions,
	), nil
}

func (t *KeeperTree) goalCentre(bb *world.BlackBoard) arena.Vec2 {
	return arena.V(t.geom.KeeperX(bb.Side), t.geom.Width/2)
}

func (t *KeeperTree) ballOnAttackSide() behavior.Node {
	return behavior.NewCondition("BallOnAttackSide", func(bb *world.BlackBoard) bool {
		return bb.Ball.Position.Seen() && t.geom.OnAttackSide(bb.Ball.Position, bb.Side, 0)
	})
}

// clearDefenseArea drives a ball out of the own area, pushing while behind
// it and spinning once the push window closes.
func (t *KeeperTree) clearDefenseArea() behavior.Node {
	critical := behavior.NewSelector("BallOrEnemyCritical",
		behavior.NewCondition("BallInDefenseArea", func(bb *world.BlackBoard) bool {
			return t.geom.Classify(bb.Ball.Position).IsGoalArea()
		}),
		behavior.NewCondition("EnemyCritical", t.enemyCritical),
	)
	push := behavior.NewTimerGate(t.cfg.PushTimeout, t.leaf("PushBall", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
		away := bb.Ball.Position.Sub(bb.Robot.Position).Unit().Scale(2 * clearAcceptance)
		act, _ := t.goTo(t.cfg.PushSpeed, bb, bb.Ball.Position.Add(away))
		return behavior.Running, act
	}))
	t.track(push)

	// The push window re-arms whenever clearing starts or stops, before the
	// gate is consulted in the same tick.
	needed := behavior.NewOnStatusChange(behavior.NewSequence("ClearNeeded",
		behavior.NewInvert(t.ballOnAttackSide()),
		critical,
	), push.Reset)
	t.track(needed)

	return behavior.NewSequence("ClearDefenseArea",
		needed,
		t.leaf("GoToBall", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
			if arena.NearWithin(bb.Ball.Position, bb.Robot.Position, clearAcceptance) {
				return behavior.Success, action.None
			}
			act, _ := t.goTo(t.cfg.Speed, bb, bb.Ball.Position)
			return behavior.Running, act
		}),
		behavior.NewSelector("PushOrSpin",
			behavior.NewSequence("Push",
				behavior.NewCondition("IsBehindBall", func(bb *world.BlackBoard) bool {
					return arena.BehindBall(bb.Ball.Position, bb.Robot.Position, bb.Side, pushBehindRadius)
				}),
				behavior.NewInvert(push),
			),
			t.leaf("Spin", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
				dir := t.geom.SpinDirection(bb.Ball.Position, bb.Robot.Position, bb.Side, false)
				return behavior.Running, t.spin(t.cfg.SpinSpeed, dir)
			}),
		),
	)
}

// enemyCritical reports an opponent in the own area close to both the ball
// and the keeper.
func (t *KeeperTree) enemyCritical(bb *world.BlackBoard) bool {
	for _, e := range bb.EnemyPositions() {
		if t.geom.Classify(e).Defends(bb.Side) &&
			arena.NearWithin(e, bb.Ball.Position, enemyBallRadius) &&
			arena.NearWithin(e, bb.Robot.Position, enemyKeeperRadius) {
			return true
		}
	}
	return false
}

func (t *KeeperTree) getOutOfGoal() behavior.Node {
	return behavior.NewSequence("GetOutOfGoal",
		behavior.NewCondition("InsideGoal", func(bb *world.BlackBoard) bool {
			z := t.geom.Classify(bb.Robot.Position)
			return z.IsGoal() && z.Defends(bb.Side)
		}),
		t.leaf("LeaveGoal", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
			act, reached := t.goTo(t.cfg.Speed, bb, t.goalCentre(bb))
			if reached || arena.NearWithin(bb.Robot.Position, t.goalCentre(bb), leaveAcceptance) {
				return behavior.Success, action.None
			}
			return behavior.Running, act
		}),
	)
}

// alignWithAxis turns the keeper parallel to its goal line.
func (t *KeeperTree) alignWithAxis() behavior.Node {
	return t.leaf("AlignWithAxis", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
		up := bb.Robot.Position.Add(arena.V(0, 10))
		act := t.face(t.cfg.AlignSpeed, bb, up, t.cfg.AlignTolerance)
		if act == action.Halt {
			return behavior.Success, act
		}
		return behavior.Running, act
	})
}

// predictBall is where the ball meets the keeper's x. A recorded path
// heading for that line is fitted and intersected with it; otherwise the
// velocity is extrapolated, no further ahead than LookAhead.
func (t *KeeperTree) predictBall(bb *world.BlackBoard) arena.Vec2 {
	ball := bb.Ball.Position
	if !ball.Seen() {
		return ball
	}
	x := t.geom.KeeperX(bb.Side)
	if bb.Robot.Position.Seen() {
		x = bb.Robot.Position.X
	}
	if y, ok := t.history.Crossing(x); ok {
		return arena.V(x, y)
	}
	v := bb.Ball.Speed
	if !v.Seen() || v.X == 0 {
		return ball
	}
	dt := (x - ball.X) / v.X
	if dt <= 0 {
		return ball
	}
	dt = math.Min(dt, t.cfg.LookAhead.Seconds())
	return ball.Add(v.Scale(dt))
}

func (t *KeeperTree) ballInBottomLine(bb *world.BlackBoard) bool {
	z := t.geom.Classify(bb.Ball.Position)
	return z.IsBottomLine() && !t.geom.OnAttackSide(bb.Ball.Position, bb.Side, 0)
}

func (t *KeeperTree) ballDefenseSide() behavior.Node {
	inBottom := behavior.NewCondition("BallInBottomLine", t.ballInBottomLine)
	return behavior.NewSequence("BallDefenseSide",
		behavior.NewInvert(behavior.NewCondition("PredictedBallOnAttackSide", func(bb *world.BlackBoard) bool {
			p := t.predictBall(bb)
			return p.Seen() && t.geom.OnAttackSide(p, bb.Side, 0)
		})),
		behavior.NewSelector("DefenceActions",
			behavior.NewSequence("BallNotInBottom",
				behavior.NewInvert(inBottom),
				t.leaf("MarkBallOnY", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
					y := t.geom.Width / 2
					if p := t.predictBall(bb); p.Seen() {
						y = arena.Clamp(p.Y, markMinY, markMaxY)
					}
					return t.mark(t.cfg.MarkSpeed, bb, arena.V(t.geom.KeeperX(bb.Side), y))
				}),
				behavior.NewForceRunning(t.alignWithAxis()),
			),
			behavior.NewSequence("BallInBottomLine",
				inBottom,
				t.leaf("MarkBallOnBottomLine", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
					y := arena.Clamp(bb.Ball.Position.Y, bottomMinY, bottomMaxY)
					return t.mark(t.cfg.BottomSpeed, bb, arena.V(t.geom.Mirror(bb.Side, bottomX), y))
				}),
				t.leaf("Stop", func(*world.BlackBoard) (behavior.Status, action.Action) {
					return behavior.Running, action.Halt
				}),
			),
		),
	)
}

func (t *KeeperTree) ballAttackSide() behavior.Node {
	return behavior.NewSequence("BallAttackSide",
		t.ballOnAttackSide(),
		t.leaf("GoToGoalCenter", func(bb *world.BlackBoard) (behavior.Status, action.Action) {
			if arena.NearWithin(bb.Robot.Position, t.goalCentre(bb), centreAcceptance) {
				return behavior.Success, action.None
			}
			act, _ := t.goTo(t.cfg.Speed, bb, t.goalCentre(bb))
			return behavior.Running, act
		}),
		behavior.NewForceRunning(t.alignWithAxis()),
	)
}

// mark moves to target, succeeding once within markAcceptance.
func (t *KeeperTree) mark(speed float64, bb *world.BlackBoard, target arena.Vec2) (behavior.Status, action.Action) {
	if arena.NearWithin(bb.Robot.Position, target, markAcceptance) {
		return behavior.Success, action.None
	}
	act, _ := t.goTo(speed, bb, target)
	return behavior.Running, act
}
