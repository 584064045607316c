package arena

import "math"

const (
	// NearRadius is the default "close enough to touch" distance.
	NearRadius = 9.5

	// spinDeadband is the |dy| below which the spin direction is decided by
	// which half of the field the robot is in.
	spinDeadband = 4
)

// Distance is the Euclidean distance between a and b, or +Inf when either
// is unseen.
func Distance(a, b Vec2) float64 {
	if !a.Seen() || !b.Seen() {
		return math.Inf(1)
	}
	return a.Sub(b).Norm()
}

// Near reports whether a and b are within NearRadius of each other.
func Near(a, b Vec2) bool { return NearWithin(a, b, NearRadius) }

// NearWithin reports whether a and b are within radius of each other.
func NearWithin(a, b Vec2, radius float64) bool { return Distance(a, b) <= radius }

// BehindBall reports whether robot is within radius of ball and on its own
// goal's side of it, i.e. in position to push the ball toward the opponent.
func BehindBall(ball, robot Vec2, side Side, radius float64) bool {
	if !NearWithin(ball, robot, radius) {
		return false
	}
	if side == Left {
		return robot.X < ball.X
	}
	return robot.X >= ball.X
}

// OnAttackSide reports whether p lies in the half of the field side is
// attacking. A positive margin extends that half toward side's own goal.
func (g Geometry) OnAttackSide(p Vec2, side Side, margin float64) bool {
	if !p.Seen() {
		return false
	}
	mid := g.Length / 2
	if side == Left {
		return p.X > mid-margin
	}
	return p.X < mid+margin
}

// OnAttackSide evaluates the predicate on the default field.
func OnAttackSide(p Vec2, side Side, margin float64) bool {
	return Default.OnAttackSide(p, side, margin)
}

// SpinDirection picks the rotation that sweeps the ball away from side's own
// goal. When the ball is level with the robot the choice falls back to which
// half of the field the robot is in. An unseen robot counts as centred and an
// unseen ball as level with the robot.
func (g Geometry) SpinDirection(ball, robot Vec2, side Side, invert bool) Rotation {
	ry := robot.Y
	if !robot.Seen() {
		ry = g.Width / 2
	}
	dy := 0.0
	if ball.Seen() {
		dy = ball.Y - ry
	}

	var r Rotation
	switch {
	case dy >= spinDeadband:
		r = Clockwise
	case dy <= -spinDeadband:
		r = CounterClockwise
	case ry < g.Width/2:
		r = CounterClockwise
	default:
		r = Clockwise
	}
	if side == Right {
		r = r.Flip()
	}
	if invert {
		r = r.Flip()
	}
	return r
}

// SpinDirection evaluates the rule on the default field.
func SpinDirection(ball, robot Vec2, side Side, invert bool) Rotation {
	return Default.SpinDirection(ball, robot, side, invert)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
