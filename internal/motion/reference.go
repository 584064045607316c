package motion

import (
	"math"
	"time"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
)

// Reference is the host-side Primitives implementation for a
// differential-drive robot. Heading error goes through a PID loop and the
// result is split across the wheels.
type Reference struct {
	pid *PID

	// MaxSpeed bounds every wheel argument.
	MaxSpeed float64
	// Acceptance is the distance at which a target counts as reached.
	Acceptance float64
	// Period is the nominal control period fed to the PID.
	Period time.Duration
	// Influence is the radius within which obstacles repel.
	Influence float64
	// Approach is how far behind the ball the field first aims.
	Approach float64
}

var _ Primitives = (*Reference)(nil)

// NewReference returns a Reference tuned with g.
func NewReference(g Gains) *Reference {
	return &Reference{
		pid:        NewPID(g),
		MaxSpeed:   255,
		Acceptance: 3,
		Period:     time.Second / 60,
		Influence:  20,
		Approach:   8,
	}
}

// Reset clears the heading loop.
func (r *Reference) Reset() { r.pid.Reset() }

func (r *Reference) GoToPoint(speed float64, pos, heading, target arena.Vec2) (float64, float64, bool) {
	if !pos.Seen() || !target.Seen() {
		return 0, 0, false
	}
	d := target.Sub(pos)
	if d.Norm() <= r.Acceptance {
		r.pid.Reset()
		return 0, 0, true
	}
	a, b := r.steer(speed, heading, d, false)
	return a, b, false
}

func (r *Reference) Spin(speed float64, _ bool) (float64, float64, action.Domain) {
	s := math.Min(math.Abs(speed), r.MaxSpeed)
	return s, s, action.Software
}

func (r *Reference) FollowPotentialField(speed float64, pos, heading, velocity arena.Vec2, obstacles []arena.Vec2, ball arena.Vec2, opts FieldOptions) (float64, float64, bool) {
	if !pos.Seen() || !ball.Seen() {
		return 0, 0, false
	}
	if arena.Distance(pos, ball) <= r.Acceptance {
		return 0, 0, true
	}
	from := pos
	if opts.SpeedPrediction && velocity.Seen() {
		from = pos.Add(velocity.Scale(r.Period.Seconds()))
	}
	a, b := r.steer(speed, heading, r.field(from, obstacles, ball, opts.AttackGoal), opts.OnlyForward)
	return a, b, false
}

// field is the unit direction of travel at p: toward a point behind the
// ball until the robot is lined up with the goal, then straight through the
// ball, pushed away from nearby obstacles.
func (r *Reference) field(p arena.Vec2, obstacles []arena.Vec2, ball, goal arena.Vec2) arena.Vec2 {
	aim := ball
	if goal.Seen() {
		push := goal.Sub(ball).Unit()
		behind := ball.Sub(push.Scale(r.Approach))
		toBall := ball.Sub(p).Unit()
		if toBall.Dot(push) < math.Cos(math.Pi/6) {
			aim = behind
		}
	}
	dir := aim.Sub(p).Unit()
	for _, o := range obstacles {
		if !o.Seen() {
			continue
		}
		away := p.Sub(o)
		dist := away.Norm()
		if dist == 0 || dist >= r.Influence {
			continue
		}
		dir = dir.Add(away.Unit().Scale((r.Influence - dist) / r.Influence))
	}
	if u := dir.Unit(); u != (arena.Vec2{}) {
		return u
	}
	return ball.Sub(p).Unit()
}

// steer converts a desired direction into wheel speeds. The robot is
// symmetric, so unless forward is forced it drives whichever end is closer
// to the target direction.
func (r *Reference) steer(speed float64, heading, dir arena.Vec2, forwardOnly bool) (float64, float64) {
	theta := arena.AngleBetween(heading, dir)
	sign := 1.0
	if !forwardOnly && math.Abs(theta) > math.Pi/2 {
		sign = -1
		theta = wrap(theta - math.Pi)
	}
	turn := r.pid.Update(theta, r.Period)
	base := sign * speed * math.Max(math.Cos(theta), 0)
	return r.limit(base - turn), r.limit(base + turn)
}

func (r *Reference) limit(v float64) float64 { return clamp(v, r.MaxSpeed) }

// wrap maps an angle into (-pi, pi].
func wrap(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
