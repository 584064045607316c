// Package action defines the single motion command a controller emits per
// tick, in the form the robot link understands.
package action

import (
	"fmt"

	"github.com/ararabots/vsscore/internal/arena"
)

// Opcode selects how the robot interprets the two arguments of an Action.
type Opcode int

const (
	// Move drives the wheels: (left, right) in software domain, or
	// (heading, speed) in hardware domain.
	Move Opcode = iota
	SpinCW
	SpinCCW
	// Stop halts the robot. Both arguments are zero.
	Stop
	// Invalid marks "no action": the producer had nothing to say.
	Invalid
)

var opcodeNames = [...]string{
	Move:    "move",
	SpinCW:  "spin-cw",
	SpinCCW: "spin-ccw",
	Stop:    "stop",
	Invalid: "invalid",
}

func (o Opcode) String() string {
	if o >= 0 && int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// Domain tells the robot whether the closed-loop control runs on the host
// (Software, arguments are wheel speeds) or on the robot (Hardware,
// arguments are a target heading and speed).
type Domain int

const (
	Software Domain = iota
	Hardware
)

func (d Domain) String() string {
	if d == Hardware {
		return "hardware"
	}
	return "software"
}

// ParseDomain accepts "software"/"hardware" or "0"/"1".
func ParseDomain(s string) (Domain, error) {
	switch s {
	case "software", "sw", "0":
		return Software, nil
	case "hardware", "hw", "1":
		return Hardware, nil
	}
	return 0, fmt.Errorf("action: unknown control domain %q", s)
}

// Action is one motion command.
type Action struct {
	Op     Opcode  `json:"op"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Domain Domain  `json:"domain"`
}

var (
	// None is the "no action" value.
	None = Action{Op: Invalid}
	// Halt is the zero command.
	Halt = Action{Op: Stop}
)

// Wheels returns a software-domain move with the given wheel speeds.
func Wheels(left, right float64) Action {
	return Action{Op: Move, A: left, B: right, Domain: Software}
}

// Spin returns an in-place rotation. a and b are the wheel magnitudes; the
// opcode carries the direction.
func Spin(r arena.Rotation, a, b float64, domain Domain) Action {
	op := SpinCW
	if r == arena.CounterClockwise {
		op = SpinCCW
	}
	return Action{Op: op, A: a, B: b, Domain: domain}
}

// Present reports whether a is an actual command rather than None.
func (a Action) Present() bool { return a.Op != Invalid }

// WheelSpeeds returns the commanded (left, right) effort. Hardware moves
// carry a single speed, reported on both channels.
func (a Action) WheelSpeeds() (left, right float64) {
	switch a.Op {
	case Move:
		if a.Domain == Hardware {
			return a.B, a.B
		}
		return a.A, a.B
	case SpinCW:
		return a.A, -a.B
	case SpinCCW:
		return -a.A, a.B
	}
	return 0, 0
}

// IsZero reports whether the command asks for no wheel motion.
func (a Action) IsZero() bool {
	l, r := a.WheelSpeeds()
	return l == 0 && r == 0
}

func (a Action) String() string {
	switch a.Op {
	case Invalid:
		return "none"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("%s(%.1f, %.1f)/%s", a.Op, a.A, a.B, a.Domain)
}
