package trajectory

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ararabots/vsscore/internal/arena"
)

// DefaultHistory is the number of ball positions a tracker remembers.
const DefaultHistory = 50

// BallTracker is a ring of recent ball positions. Unseen positions are not
// recorded.
type BallTracker struct {
	ring *Ring[arena.Vec2]
}

func NewBallTracker(capacity int) *BallTracker {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &BallTracker{ring: NewRing[arena.Vec2](capacity)}
}

// Observe records p if it was seen.
func (t *BallTracker) Observe(p arena.Vec2) {
	if p.Seen() {
		t.ring.Push(p)
	}
}

func (t *BallTracker) Len() int { return t.ring.Len() }

func (t *BallTracker) Reset() { t.ring.Reset() }

func (t *BallTracker) columns() (xs, ys []float64) {
	n := t.ring.Len()
	xs, ys = make([]float64, n), make([]float64, n)
	for i := range n {
		p := t.ring.At(i)
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// Mean is the centroid of the history, or the zero vector when empty.
func (t *BallTracker) Mean() arena.Vec2 {
	if t.ring.Len() == 0 {
		return arena.Vec2{}
	}
	xs, ys := t.columns()
	return arena.V(stat.Mean(xs, nil), stat.Mean(ys, nil))
}

// Line is y = Alpha + Beta*x.
type Line struct {
	Alpha, Beta float64
}

func (l Line) At(x float64) float64 { return l.Alpha + l.Beta*x }

// Fit returns the least-squares line through the history. It fails with
// fewer than two points or when every point shares the same x.
func (t *BallTracker) Fit() (Line, bool) {
	if t.ring.Len() < 2 {
		return Line{}, false
	}
	xs, ys := t.columns()
	if stat.Variance(xs, nil) == 0 {
		return Line{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return Line{}, false
	}
	return Line{Alpha: alpha, Beta: beta}, true
}

// Crossing returns the y at which the fitted path meets the vertical line
// at x. It fails when there is no fit or the recorded path is not moving
// toward x.
func (t *BallTracker) Crossing(x float64) (float64, bool) {
	line, ok := t.Fit()
	if !ok {
		return 0, false
	}
	first, last := t.ring.At(0), t.ring.At(t.ring.Len()-1)
	if math.Abs(last.X-x) >= math.Abs(first.X-x) {
		return 0, false
	}
	return line.At(x), true
}
