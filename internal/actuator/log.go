package actuator

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/ararabots/vsscore/internal/action"
)

// Log is an actuator that only logs, for replays and dry runs. Repeated
// identical actions are logged once.
type Log struct {
	log   *slog.Logger
	level slog.Level
	robot int
	last  atomic.Pointer[action.Action]
	sent  atomic.Int64
}

func NewLog(log *slog.Logger, robot int, level slog.Level) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{log: log, level: level, robot: robot}
}

func (l *Log) Send(ctx context.Context, a action.Action) error {
	l.sent.Add(1)
	if prev := l.last.Swap(&a); prev != nil && *prev == a {
		return nil
	}
	l.log.Log(ctx, l.level, "[Actuator] action", "robot", l.robot, "action", a.String())
	return nil
}

// Sent is the number of actions received.
func (l *Log) Sent() int64 { return l.sent.Load() }
