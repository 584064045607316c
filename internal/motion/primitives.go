package motion

import (
	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
)

// FieldOptions shape FollowPotentialField.
type FieldOptions struct {
	// AttackGoal is where the ball should end up. When unseen the field
	// simply attracts toward the ball.
	AttackGoal arena.Vec2
	// OnlyForward forbids driving backwards.
	OnlyForward bool
	// SpeedPrediction evaluates the field where the robot will be one
	// control period from now instead of where it is.
	SpeedPrediction bool
}

// Primitives is the set of low-level motions controllers are built from.
// Implementations return the two command arguments; the caller wraps them
// in an [action.Action].
type Primitives interface {
	GoToPoint(speed float64, pos, heading, target arena.Vec2) (a, b float64, reached bool)
	Spin(speed float64, clockwise bool) (a, b float64, domain action.Domain)
	FollowPotentialField(speed float64, pos, heading, velocity arena.Vec2, obstacles []arena.Vec2, ball arena.Vec2, opts FieldOptions) (a, b float64, reached bool)
}
