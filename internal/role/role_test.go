package role

import (
	"bytes"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/motion"
	"github.com/ararabots/vsscore/internal/world"
)

// fakeMotion records the last primitive called. GoToPoint and the field
// report reached when the robot is within reach of the target.
type fakeMotion struct {
	reach   float64
	last    string
	target  arena.Vec2
	fieldOp motion.FieldOptions
}

func (f *fakeMotion) GoToPoint(speed float64, pos, _, target arena.Vec2) (float64, float64, bool) {
	f.last, f.target = "go-to-point", target
	return speed, speed, arena.NearWithin(pos, target, f.reach)
}

// Spin answers with uneven wheels in hardware domain so tests can tell the
// primitive's output reached the action unchanged.
func (f *fakeMotion) Spin(speed float64, _ bool) (float64, float64, action.Domain) {
	f.last = "spin"
	return speed, speed / 2, action.Hardware
}

func (f *fakeMotion) FollowPotentialField(speed float64, pos, _, _ arena.Vec2, _ []arena.Vec2, ball arena.Vec2, opts motion.FieldOptions) (float64, float64, bool) {
	f.last, f.target, f.fieldOp = "field", ball, opts
	return speed, speed, arena.NearWithin(pos, ball, f.reach)
}

func testOptions(t *testing.T) (Options, *fakeMotion, *bytes.Buffer) {
	t.Helper()
	fm := &fakeMotion{reach: 3}
	var buf bytes.Buffer
	o := DefaultOptions()
	o.Motion = fm
	o.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return o, fm, &buf
}

func snapshot(phase world.GamePhase, side arena.Side, robot, ball arena.Vec2) *world.BlackBoard {
	bb := world.New()
	bb.Phase = phase
	bb.Side = side
	bb.Robot.Position = robot
	bb.Robot.Speed = arena.V(0, 0)
	bb.Ball.Position = ball
	bb.Ball.Speed = arena.V(0, 0)
	return bb
}

func TestGoalKeeper_NormalToSeekBall(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name        string
		side        arena.Side
		robot, ball arena.Vec2
		vy          float64
		wantY       float64
	}{
		{"left ball in midfield", arena.Left, arena.V(10, 65), arena.V(60, 65), 0, 62.5},
		{"right ball in opponent area", arena.Right, arena.V(140, 65), arena.V(8, 50), 0, 47.5},
		{"rising at deadband edge", arena.Left, arena.V(10, 65), arena.V(60, 52.3), 0.5, 52.5},
		{"falling at deadband edge", arena.Left, arena.V(10, 65), arena.V(60, 52.3), -0.5, 52.5},
		{"rising past deadband", arena.Left, arena.V(10, 65), arena.V(60, 52.3), 0.8, 57.5},
		{"falling past deadband", arena.Left, arena.V(10, 65), arena.V(60, 52.3), -0.8, 47.5},
		{"falling at the bottom station", arena.Right, arena.V(140, 65), arena.V(60, 38), -0.8, 40},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			o, fm, _ := testOptions(t)
			k := NewGoalKeeper(o, DefaultKeeperConfig())
			require.Equal(t, KeeperStop, k.Current())

			bb := snapshot(world.Normal, tc.side, tc.robot, tc.ball)
			bb.Ball.Speed = arena.V(0, tc.vy)
			act := k.Tick(bb)
			assert.Equal(t, KeeperSeekBall, k.Current())
			assert.Equal(t, "seek-ball", k.State())
			assert.Equal(t, action.Move, act.Op)
			assert.Equal(t, "go-to-point", fm.last)
			assert.Equal(t, arena.V(arena.Default.KeeperX(tc.side), tc.wantY), fm.target)
		})
	}
}

func TestGoalKeeper_DefendBallToSpin(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	k := NewGoalKeeper(o, DefaultKeeperConfig())

	bb := snapshot(world.Normal, arena.Left, arena.V(10, 40), arena.V(10, 36))
	act := k.Tick(bb)
	assert.Equal(t, KeeperSpin, k.Current())
	assert.Equal(t, action.SpinCCW, act.Op)
	assert.Equal(t, "spin", fm.last)

	// The spin lasts one tick; the keeper re-evaluates from DefendBall.
	bb.Ball.Position = arena.V(10, 65)
	act = k.Tick(bb)
	assert.Equal(t, KeeperGoToBall, k.Current())
	assert.Equal(t, action.Move, act.Op)
	assert.Equal(t, arena.V(10, 65), fm.target)
}

func TestGoalKeeper_OutOfArea(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	k := NewGoalKeeper(o, DefaultKeeperConfig())

	k.Tick(snapshot(world.Normal, arena.Left, arena.V(50, 65), arena.V(100, 20)))
	assert.Equal(t, KeeperOutOfArea, k.Current())
	assert.Equal(t, arena.V(10, 40), fm.target)

	k.Tick(snapshot(world.Normal, arena.Left, arena.V(10, 41), arena.V(100, 20)))
	assert.Equal(t, KeeperSeekBall, k.Current())
}

func TestGoalKeeper_Goal(t *testing.T) {
	t.Parallel()
	o, _, _ := testOptions(t)
	k := NewGoalKeeper(o, DefaultKeeperConfig())

	act := k.Tick(snapshot(world.Normal, arena.Left, arena.V(10, 65), arena.V(-3, 65)))
	assert.Equal(t, KeeperGoal, k.Current())
	assert.Equal(t, action.Halt, act)
}

func TestGoalKeeper_StoppedPhase(t *testing.T) {
	t.Parallel()
	o, _, _ := testOptions(t)
	k := NewGoalKeeper(o, DefaultKeeperConfig())

	k.Tick(snapshot(world.Normal, arena.Left, arena.V(10, 65), arena.V(60, 65)))
	act := k.Tick(snapshot(world.Stopped, arena.Left, arena.V(10, 65), arena.V(60, 65)))
	assert.Equal(t, KeeperStop, k.Current())
	assert.Equal(t, action.Halt, act)
}

func TestControllers_UnknownPhaseHalts(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			o, _, buf := testOptions(t)
			c, err := New(name, o)
			require.NoError(t, err)

			act := c.Tick(snapshot(world.GamePhase(99), arena.Left, arena.V(75, 65), arena.V(80, 65)))
			assert.Equal(t, action.Halt, act)
			assert.Contains(t, buf.String(), "unknown game phase")
		})
	}
}

func TestControllers_NeverReturnNone(t *testing.T) {
	t.Parallel()
	phases := []world.GamePhase{world.Stopped, world.Normal, world.Freeball, world.Penalty, world.Meta}
	points := []arena.Vec2{
		arena.V(5, 65), arena.V(10, 36), arena.V(75, 65), arena.V(140, 5),
		arena.V(145, 120), arena.V(-2, 65), arena.Unseen,
	}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			o, _, _ := testOptions(t)
			c, err := New(name, o)
			require.NoError(t, err)
			for _, side := range []arena.Side{arena.Left, arena.Right} {
				for _, phase := range phases {
					for _, r := range points {
						for _, b := range points {
							act := c.Tick(snapshot(phase, side, r, b))
							require.True(t, act.Present(), "phase=%v side=%v robot=%v ball=%v", phase, side, r, b)
						}
					}
				}
			}
		})
	}
}

func TestSpecialPlays(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	a := NewAttacker(o, DefaultAttackerConfig())

	bb := snapshot(world.Penalty, arena.Left, arena.V(70, 65), arena.V(80, 65))
	bb.Robot.Index, bb.SpecialPlayRobot = 1, 1
	a.Tick(bb)
	assert.Equal(t, "go-to-point", fm.last)
	assert.Equal(t, arena.Default.AttackGoal(arena.Left), fm.target)

	bb.Phase = world.Freeball
	a.Tick(bb)
	assert.Equal(t, "field", fm.last)

	// A robot that is not the executor plays as in Normal.
	bb.SpecialPlayRobot = 2
	bb.Phase = world.Penalty
	a.Reset()
	a.Tick(bb)
	assert.Equal(t, AttackerReachBall, a.Current())
}

func TestAttacker_WaitPoint(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		side arena.Side
		ball arena.Vec2
		want arena.Vec2
	}{
		{arena.Left, arena.V(30, 20), arena.V(95, 65)},
		{arena.Right, arena.V(120, 20), arena.V(55, 65)},
	} {
		t.Run(tc.side.String(), func(t *testing.T) {
			t.Parallel()
			o, fm, _ := testOptions(t)
			a := NewAttacker(o, DefaultAttackerConfig())

			a.Tick(snapshot(world.Normal, tc.side, arena.V(75, 100), tc.ball))
			assert.Equal(t, AttackerGoToPoint, a.Current())
			assert.Equal(t, tc.want, fm.target)

			a.Tick(snapshot(world.Normal, tc.side, tc.want.Add(arena.V(2, 0)), tc.ball))
			assert.Equal(t, AttackerWaitBall, a.Current())
			assert.Equal(t, "spin", fm.last)
		})
	}
}

func TestAttacker_ReachBallAndSpin(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	a := NewAttacker(o, DefaultAttackerConfig())

	a.Tick(snapshot(world.Normal, arena.Left, arena.V(80, 65), arena.V(110, 65)))
	assert.Equal(t, AttackerReachBall, a.Current())
	assert.Equal(t, "field", fm.last)

	act := a.Tick(snapshot(world.Normal, arena.Left, arena.V(105, 65), arena.V(110, 65)))
	assert.Equal(t, AttackerSpin, a.Current())
	assert.True(t, act.Op == action.SpinCW || act.Op == action.SpinCCW)

	a.Tick(snapshot(world.Normal, arena.Left, arena.V(90, 65), arena.V(110, 65)))
	assert.Equal(t, AttackerReachBall, a.Current())
}

func TestAttacker_Border(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	a := NewAttacker(o, DefaultAttackerConfig())

	a.Tick(snapshot(world.Normal, arena.Left, arena.V(100, 100), arena.V(110, 125)))
	assert.Equal(t, AttackerBorder, a.Current())
	assert.False(t, fm.fieldOp.AttackGoal.Seen())
}

func TestAttacker_StuckRecovery(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	cfg := DefaultAttackerConfig()
	a := NewAttacker(o, cfg)

	// Pinned on the top wall chasing a ball it cannot reach.
	bb := snapshot(world.Normal, arena.Left, arena.V(100, 125), arena.V(120, 60))
	for i := 0; i <= cfg.StuckThreshold+1; i++ {
		a.Tick(bb)
	}
	require.Equal(t, AttackerStuck, a.Current())
	assert.Equal(t, cfg.Recovery, fm.target)

	bb.Robot.Position = arena.V(90, 80)
	a.Tick(bb)
	assert.NotEqual(t, AttackerStuck, a.Current())
}

func TestAttacker_HaltIsNotBlocked(t *testing.T) {
	t.Parallel()
	o, _, _ := testOptions(t)
	cfg := DefaultAttackerConfig()
	a := NewAttacker(o, cfg)

	// The first tick follows the initial Halt, so it does not count.
	bb := snapshot(world.Normal, arena.Left, arena.V(100, 125), arena.V(120, 60))
	for i := 0; i <= cfg.StuckThreshold; i++ {
		a.Tick(bb)
	}
	require.NotEqual(t, AttackerStuck, a.Current())

	// A stop between ticks leaves the counter where it was.
	stopped := snapshot(world.Stopped, arena.Left, arena.V(100, 125), arena.V(120, 60))
	for range 10 {
		a.Tick(stopped)
	}
	a.Tick(bb)
	require.NotEqual(t, AttackerStuck, a.Current())
	a.Tick(bb)
	assert.Equal(t, AttackerStuck, a.Current())
}

func TestDefender_Routing(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name        string
		robot, ball arena.Vec2
		want        DefenderState
	}{
		{"ball on attack side", arena.V(40, 65), arena.V(100, 65), DefenderWaitBall},
		{"ball open on defence", arena.V(40, 65), arena.V(55, 80), DefenderMove},
		{"ball on wall", arena.V(40, 65), arena.V(50, 125), DefenderBorder},
		{"ball at feet", arena.V(50, 65), arena.V(55, 65), DefenderSpin},
		{"robot inside own area", arena.V(8, 65), arena.V(55, 65), DefenderArea},
		{"ball in keeper area", arena.V(40, 65), arena.V(8, 65), DefenderWaitBall},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			o, _, _ := testOptions(t)
			d := NewDefender(o, DefaultDefenderConfig())
			d.Tick(snapshot(world.Normal, arena.Left, tc.robot, tc.ball))
			assert.Equal(t, tc.want, d.Current())
		})
	}
}

func TestDefender_HoldLine(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		side arena.Side
		ball arena.Vec2
		want arena.Vec2
	}{
		{arena.Left, arena.V(100, 50), arena.V(37.5, 50)},
		{arena.Right, arena.V(40, 90), arena.V(112.5, 90)},
	} {
		t.Run(tc.side.String(), func(t *testing.T) {
			t.Parallel()
			o, fm, _ := testOptions(t)
			d := NewDefender(o, DefaultDefenderConfig())
			d.Tick(snapshot(world.Normal, tc.side, arena.V(75, 65), tc.ball))
			assert.Equal(t, DefenderWaitBall, d.Current())
			assert.Equal(t, tc.want, fm.target)
		})
	}
}

func TestDefender_SpinDirection(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		side arena.Side
		ball arena.Vec2
		want action.Opcode
	}{
		{arena.Left, arena.V(50, 60), action.SpinCCW},
		{arena.Left, arena.V(50, 70), action.SpinCW},
		{arena.Right, arena.V(100, 60), action.SpinCW},
		{arena.Right, arena.V(100, 70), action.SpinCCW},
	} {
		o, _, _ := testOptions(t)
		d := NewDefender(o, DefaultDefenderConfig())
		act := d.Tick(snapshot(world.Normal, tc.side, tc.ball.Add(arena.V(0, 3)), tc.ball))
		assert.Equal(t, DefenderSpin, d.Current())
		assert.Equal(t, tc.want, act.Op, "%v %v", tc.side, tc.ball)

		spin := DefaultDefenderConfig().SpinSpeed
		assert.Equal(t, action.Action{Op: tc.want, A: spin, B: spin / 2, Domain: action.Hardware}, act)
		l, r := act.WheelSpeeds()
		if tc.want == action.SpinCW {
			assert.Equal(t, [2]float64{spin, -spin / 2}, [2]float64{l, r})
		} else {
			assert.Equal(t, [2]float64{-spin, spin / 2}, [2]float64{l, r})
		}
	}
}

func TestDefender_Locked(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	cfg := DefaultDefenderConfig()
	d := NewDefender(o, cfg)

	// Nose into the top wall, chasing a ball on it.
	bb := snapshot(world.Normal, arena.Left, arena.V(40, 125), arena.V(60, 126))
	bb.Robot.Orientation = math.Pi / 2
	for i := 0; i <= cfg.StuckThreshold+1; i++ {
		d.Tick(bb)
	}
	require.Equal(t, DefenderLocked, d.Current())
	assert.Equal(t, "spin", fm.last)

	// Side-on to the wall it backs off instead.
	bb.Robot.Orientation = 0
	d.Tick(bb)
	assert.Equal(t, DefenderLocked, d.Current())
	assert.Equal(t, arena.V(37.5, 65), fm.target)

	bb.Robot.Position = arena.V(40, 80)
	d.Tick(bb)
	assert.NotEqual(t, DefenderLocked, d.Current())
}

func TestKeeperTree_Branches(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name        string
		robot, ball arena.Vec2
		heading     float64
		want        string
	}{
		{"ball in own area", arena.V(40, 65), arena.V(8, 50), math.Pi / 2, "GoToBall"},
		{"ball on defence side", arena.V(10, 65), arena.V(40, 100), math.Pi / 2, "MarkBallOnY"},
		{"ball on bottom line", arena.V(10, 65), arena.V(5, 20), math.Pi / 2, "MarkBallOnBottomLine"},
		{"ball on attack side", arena.V(30, 65), arena.V(120, 65), math.Pi / 2, "GoToGoalCenter"},
		{"keeper inside goal", arena.V(-3, 65), arena.V(120, 65), math.Pi / 2, "LeaveGoal"},
		{"misaligned keeper", arena.V(10, 65), arena.V(120, 65), 0, "AlignWithAxis"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			o, _, _ := testOptions(t)
			k, err := NewKeeperTree(o, DefaultTreeConfig())
			require.NoError(t, err)
			bb := snapshot(world.Normal, arena.Left, tc.robot, tc.ball)
			bb.Robot.Orientation = tc.heading
			act := k.Tick(bb)
			assert.Equal(t, tc.want, k.State())
			assert.True(t, act.Present())
		})
	}
}

func TestKeeperTree_PushThenSpin(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	cfg := DefaultTreeConfig()
	k, err := NewKeeperTree(o, cfg)
	require.NoError(t, err)

	bb := snapshot(world.Normal, arena.Left, arena.V(5, 60), arena.V(10, 62))
	bb.Robot.Orientation = math.Pi / 2
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bb.Now = start
	k.Tick(bb)
	require.Equal(t, "PushBall", k.State())
	assert.Equal(t, "go-to-point", fm.last)

	bb.Now = start.Add(cfg.PushTimeout)
	act := k.Tick(bb)
	assert.Equal(t, "Spin", k.State())
	assert.True(t, act.Op == action.SpinCW || act.Op == action.SpinCCW)
}

func TestKeeperTree_Override(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	cfg := DefaultTreeConfig()
	cfg.Override = `ball.seen && ball.x > 100`
	k, err := NewKeeperTree(o, cfg)
	require.NoError(t, err)

	k.Tick(snapshot(world.Normal, arena.Left, arena.V(30, 65), arena.V(120, 65)))
	assert.Equal(t, "HoldGoalCenter", k.State())
	assert.Equal(t, arena.V(10, 65), fm.target)

	cfg.Override = `ball.nope`
	_, err = NewKeeperTree(o, cfg)
	require.Error(t, err)
}

func TestKeeperTree_OverrideErrorsUseRoleLogger(t *testing.T) {
	t.Parallel()
	o, _, buf := testOptions(t)
	cfg := DefaultTreeConfig()
	cfg.Override = `int(ball.x) % int(robot.x) == 0`
	k, err := NewKeeperTree(o, cfg)
	require.NoError(t, err)

	act := k.Tick(snapshot(world.Normal, arena.Left, arena.V(0.5, 65), arena.V(120, 65)))
	assert.True(t, act.Present())
	assert.NotEqual(t, "HoldGoalCenter", k.State())
	assert.Contains(t, buf.String(), "condition evaluation failed")
	assert.Contains(t, buf.String(), "name=Override")
}

func TestKeeperTree_MarksRecordedPathCrossing(t *testing.T) {
	t.Parallel()
	// The ball rolls toward the keeper line along y = 54 + 0.8x with no
	// usable velocity; only its recorded path points at y = 62.
	path := []arena.Vec2{arena.V(60, 102), arena.V(50, 94), arena.V(40, 86)}
	robot := arena.V(10, 40)

	o, fm, _ := testOptions(t)
	k, err := NewKeeperTree(o, DefaultTreeConfig())
	require.NoError(t, err)
	for _, ball := range path {
		bb := snapshot(world.Normal, arena.Left, robot, ball)
		bb.Robot.Orientation = math.Pi / 2
		k.Tick(bb)
	}
	require.Equal(t, "MarkBallOnY", k.State())
	assert.InDelta(t, 10, fm.target.X, 1e-9)
	assert.InDelta(t, 62, fm.target.Y, 1e-9)

	// Reset forgets the path: from the last frame alone the keeper marks the
	// clamped ball height.
	k.Reset()
	bb := snapshot(world.Normal, arena.Left, robot, path[len(path)-1])
	bb.Robot.Orientation = math.Pi / 2
	k.Tick(bb)
	require.Equal(t, "MarkBallOnY", k.State())
	assert.Equal(t, arena.V(10, markMaxY), fm.target)
}

func TestKeeperTree_SetPiecesPassTheGate(t *testing.T) {
	t.Parallel()
	o, fm, _ := testOptions(t)
	k, err := NewKeeperTree(o, DefaultTreeConfig())
	require.NoError(t, err)

	bb := snapshot(world.Penalty, arena.Left, arena.V(70, 65), arena.V(80, 65))
	bb.Robot.Orientation = math.Pi / 2
	bb.Robot.Index, bb.SpecialPlayRobot = 1, 1
	k.Tick(bb)
	assert.Equal(t, "SpecialPlay", k.State())
	assert.Equal(t, arena.Default.AttackGoal(arena.Left), fm.target)

	// Not the executor: the keeper defends as in Normal.
	bb.SpecialPlayRobot = 2
	bb.Robot.Position = arena.V(10, 40)
	bb.Ball.Position = arena.V(40, 70)
	k.Tick(bb)
	assert.Equal(t, "MarkBallOnY", k.State())

	bb.Phase = world.Stopped
	assert.Equal(t, action.Halt, k.Tick(bb))
	assert.Equal(t, "idle", k.State())
}

func TestKeeperTree_StoppedHalts(t *testing.T) {
	t.Parallel()
	o, _, _ := testOptions(t)
	k, err := NewKeeperTree(o, DefaultTreeConfig())
	require.NoError(t, err)
	act := k.Tick(snapshot(world.Stopped, arena.Left, arena.V(10, 65), arena.V(60, 65)))
	assert.Equal(t, action.Halt, act)
	assert.Equal(t, "idle", k.State())
}

func TestNew(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"attacker", "defender", "keeper", "keeper-tree"}, Names())
	_, err := New("striker", DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}
