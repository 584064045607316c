// Package motion turns a goal ("be at this point", "spin", "push the ball")
// into the two wheel arguments a differential-drive robot understands.
package motion

import (
	"math"
	"time"
)

// Gains are the proportional, integral and derivative coefficients of a
// PID loop. Each robot body has its own triple.
type Gains struct {
	Kp float64
	Ki float64
	Kd float64
}

// PID is a discrete PID controller whose integral and derivative terms are
// clamped in both directions.
type PID struct {
	Gains
	MaxIntegral   float64
	MaxDerivative float64

	integral float64
	prevErr  float64
	primed   bool
}

func NewPID(g Gains) *PID {
	return &PID{Gains: g, MaxIntegral: 1000, MaxDerivative: 1000}
}

// Update feeds the current error and the time elapsed since the previous
// call, returning the control output. A non-positive dt contributes only
// the proportional term.
func (p *PID) Update(err float64, dt time.Duration) float64 {
	var derivative float64
	if s := dt.Seconds(); s > 0 {
		p.integral = clamp(p.integral+err*s, p.MaxIntegral)
		if p.primed {
			derivative = clamp((err-p.prevErr)/s, p.MaxDerivative)
		}
	}
	p.prevErr, p.primed = err, true
	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears the accumulated state.
func (p *PID) Reset() {
	p.integral, p.prevErr, p.primed = 0, 0, false
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
