package trajectory

import (
	"math"

	"github.com/ararabots/vsscore/internal/arena"
)

// Waypoints are the goalkeeper's fixed stations along its line, bottom to
// top.
var Waypoints = [...]float64{40, 42.5, 47.5, 52.5, 57.5, 62.5, 67.5, 72.5, 77.5, 82.5, 87.5, 90}

// FollowParams tunes FollowBall.
type FollowParams struct {
	// Spread is the distance between the ball and the centroid of its history
	// above which the ball is considered to be travelling and the keeper
	// aims at the extrapolated crossing point.
	Spread float64
	// MinY and MaxY bound the keeper's line.
	MinY, MaxY float64
	// Deadband is the |vy| below which the ball counts as not moving
	// vertically.
	Deadband float64
}

// DefaultFollowParams returns the tuning used in matches.
func DefaultFollowParams() FollowParams {
	return FollowParams{Spread: 5, MinY: 40, MaxY: 90, Deadband: 0.5}
}

// WaypointIndex maps a ball height to a station, nudged one station in the
// direction the ball is moving.
func WaypointIndex(y, vy float64) int {
	return waypointIndex(y, vy, DefaultFollowParams())
}

func waypointIndex(y, vy float64, p FollowParams) int {
	last := len(Waypoints) - 1
	var band int
	switch {
	case y <= p.MinY:
		band = 0
	case y > p.MaxY:
		band = last
	default:
		band = int(math.Ceil((y - p.MinY) / 5))
	}
	switch {
	case vy > p.Deadband:
		band++
	case vy < -p.Deadband:
		band--
	}
	return min(max(band, 0), last)
}

// FollowBall returns the point on side's keeper line the goalkeeper should
// hold. A travelling ball is met at the crossing point of the line fitted
// through its history; otherwise the nearest station is used.
func FollowBall(g arena.Geometry, side arena.Side, ball, speed arena.Vec2, history *BallTracker, p FollowParams) arena.Vec2 {
	x := g.KeeperX(side)
	if !ball.Seen() {
		return arena.V(x, g.Width/2)
	}
	if history != nil && history.Len() > 0 && arena.Distance(ball, history.Mean()) > p.Spread {
		y := arena.Clamp(ball.Y, p.MinY, p.MaxY)
		if line, ok := history.Fit(); ok {
			y = arena.Clamp(line.At(x), p.MinY, p.MaxY)
		}
		return arena.V(x, y)
	}
	vy := 0.0
	if speed.Seen() {
		vy = speed.Y
	}
	return arena.V(x, Waypoints[waypointIndex(ball.Y, vy, p)])
}
