package trajectory

import "math"

// StuckDetector flags a robot that is being driven but is not moving.
//
// Every driven tick either raises the counter (measured speed magnitude
// below MinSpeed on both wheels) or lowers it by one, never below zero.
// Ticks without a wheel command leave the counter alone. The robot is
// stuck while the counter exceeds Threshold.
type StuckDetector struct {
	Threshold int
	MinSpeed  float64
	counter   int
}

// NewStuckDetector returns a detector with the match defaults: 60 ticks,
// 1 cm/s.
func NewStuckDetector() *StuckDetector {
	return &StuckDetector{Threshold: 60, MinSpeed: 1}
}

// Update feeds one tick and reports whether the robot is stuck. driven is
// whether the last command asked for wheel motion.
func (d *StuckDetector) Update(driven bool, measured [2]float64) bool {
	if driven {
		if math.Abs(measured[0]) < d.MinSpeed && math.Abs(measured[1]) < d.MinSpeed {
			d.counter++
		} else if d.counter > 0 {
			d.counter--
		}
	}
	return d.Stuck()
}

func (d *StuckDetector) Stuck() bool { return d.counter > d.Threshold }

func (d *StuckDetector) Counter() int { return d.counter }

func (d *StuckDetector) Reset() { d.counter = 0 }
