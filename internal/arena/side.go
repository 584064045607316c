package arena

import "fmt"

// Side is the half of the field a team defends. Left defends x=0 and
// attacks toward increasing x; Right mirrors it.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Valid reports whether s is Left or Right.
func (s Side) Valid() bool { return s == Left || s == Right }

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Sign is +1 for Left and -1 for Right: the x direction of attack.
func (s Side) Sign() float64 {
	if s == Right {
		return -1
	}
	return 1
}

// ParseSide accepts "left"/"right" or "0"/"1".
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "l", "0":
		return Left, nil
	case "right", "r", "1":
		return Right, nil
	}
	return 0, fmt.Errorf("arena: unknown side %q", s)
}

// Rotation is an in-place spin direction.
type Rotation int

const (
	Clockwise Rotation = iota
	CounterClockwise
)

// Flip returns the opposite rotation.
func (r Rotation) Flip() Rotation {
	if r == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

func (r Rotation) String() string {
	if r == Clockwise {
		return "cw"
	}
	return "ccw"
}
