// Package world holds the per-tick snapshot of the match that every
// controller reads from.
package world

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/ararabots/vsscore/internal/arena"
)

// GamePhase is the referee-controlled state of the match.
type GamePhase int

const (
	Stopped GamePhase = iota
	Normal
	Freeball
	Penalty
	Meta
)

var phaseNames = [...]string{"stopped", "normal", "freeball", "penalty", "meta"}

func (p GamePhase) String() string {
	if p.Valid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("GamePhase(%d)", int(p))
}

// Valid reports whether p is one of the known phases.
func (p GamePhase) Valid() bool { return p >= Stopped && p <= Meta }

// ParsePhase accepts a phase name.
func ParsePhase(s string) (GamePhase, error) {
	for i, n := range phaseNames {
		if n == s {
			return GamePhase(i), nil
		}
	}
	return 0, fmt.Errorf("world: unknown game phase %q", s)
}

// Body is the kinematic state of one tracked object.
type Body struct {
	Position    arena.Vec2 `json:"position"`
	Orientation float64    `json:"orientation"` // radians
	Speed       arena.Vec2 `json:"speed"`       // cm/s
}

// Unseen returns a body whose position and speed were not observed.
func Unseen() Body { return Body{Position: arena.Unseen, Speed: arena.Unseen} }

// Heading is the unit vector the body is facing.
func (b Body) Heading() arena.Vec2 { return arena.Heading(b.Orientation) }

// Robot is the body controlled by this process.
type Robot struct {
	Body
	Index int `json:"index"`
	// WheelSpeed is the measured (left, right) wheel speed, when the robot
	// link reports one.
	WheelSpeed *[2]float64 `json:"wheel_speed,omitempty"`
}

// MeasuredSpeed returns the absolute measured speed on each channel. Without
// wheel feedback it falls back to the tracked velocity components.
func (r Robot) MeasuredSpeed() [2]float64 {
	if r.WheelSpeed != nil {
		return [2]float64{math.Abs(r.WheelSpeed[0]), math.Abs(r.WheelSpeed[1])}
	}
	if !r.Speed.Seen() {
		return [2]float64{}
	}
	return [2]float64{math.Abs(r.Speed.X), math.Abs(r.Speed.Y)}
}

// BlackBoard is the read-only snapshot a controller is ticked with. The
// decision driver owns it and replaces it wholesale every tick.
type BlackBoard struct {
	Phase            GamePhase  `json:"phase"`
	Side             arena.Side `json:"side"`
	Robot            Robot      `json:"robot"`
	Ball             Body       `json:"ball"`
	Teammates        []Body     `json:"teammates,omitempty"`
	Enemies          []Body     `json:"enemies,omitempty"`
	SpecialPlayRobot int        `json:"special_play_robot"`
	// Now is the time the snapshot was taken. Timed nodes read it instead
	// of the wall clock.
	Now time.Time `json:"time"`
}

// New returns a stopped snapshot with nothing observed.
func New() *BlackBoard {
	return &BlackBoard{
		Phase:            Stopped,
		Robot:            Robot{Body: Unseen()},
		Ball:             Unseen(),
		SpecialPlayRobot: -1,
	}
}

// IsSpecialPlayExecutor reports whether this robot takes the current set
// piece.
func (b *BlackBoard) IsSpecialPlayExecutor() bool {
	return b.Robot.Index == b.SpecialPlayRobot
}

// EnemyPositions returns the positions of every observed opponent.
func (b *BlackBoard) EnemyPositions() []arena.Vec2 {
	out := make([]arena.Vec2, 0, len(b.Enemies))
	for _, e := range b.Enemies {
		if e.Position.Seen() {
			out = append(out, e.Position)
		}
	}
	return out
}

// Clone returns a deep copy.
func (b *BlackBoard) Clone() *BlackBoard {
	c := *b
	c.Teammates = slices.Clone(b.Teammates)
	c.Enemies = slices.Clone(b.Enemies)
	if b.Robot.WheelSpeed != nil {
		ws := *b.Robot.WheelSpeed
		c.Robot.WheelSpeed = &ws
	}
	return &c
}
