// Package decision runs the perceive-decide-act cycle for one robot.
//
// A Driver pulls a snapshot from a Source, asks a role.Controller for an
// action, and hands it to an Actuator. Every failure on that path is
// logged and turned into a stop command; the loop itself only ends when
// its context does or the Source runs dry.
package decision

import (
	"context"
	"errors"
	"time"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/world"
)

// ErrSourceClosed is returned by a Source that has no more snapshots.
var ErrSourceClosed = errors.New("decision: source closed")

// Source produces one snapshot per tick.
type Source interface {
	Snapshot(ctx context.Context) (*world.BlackBoard, error)
}

// Actuator delivers an action to the robot. Send must not block for long;
// slow links should queue and drop.
type Actuator interface {
	Send(ctx context.Context, a action.Action) error
}

// Feedback is implemented by actuators whose link reports measured wheel
// speeds. The driver copies the latest reading into the snapshot when the
// source did not provide one.
type Feedback interface {
	MeasuredWheelSpeed() ([2]float64, bool)
}

// Recorder persists tick outcomes.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Entry is what one tick decided.
type Entry struct {
	RunID  string
	Seq    uint64
	Time   time.Time
	Phase  world.GamePhase
	Side   arena.Side
	Robot  arena.Vec2
	Ball   arena.Vec2
	State  string
	Action action.Action
	// Err is set when the tick fell back to a stop.
	Err string
}
