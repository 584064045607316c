package decision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/role"
	"github.com/ararabots/vsscore/internal/world"
)

// Driver ticks one controller. It is not safe for concurrent use; Run is
// the only goroutine that should call Tick.
type Driver struct {
	source     Source
	controller role.Controller
	actuator   Actuator
	recorder   Recorder
	log        *slog.Logger
	runID      string
	now        func() time.Time
	seq        uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithRecorder records every tick to r.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(d *Driver) { d.runID = id }
}

// WithClock overrides the clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

func NewDriver(src Source, c role.Controller, act Actuator, opts ...Option) *Driver {
	d := &Driver{
		source:     src,
		controller: c,
		actuator:   act,
		log:        slog.Default(),
		runID:      uuid.NewString(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// RunID identifies this driver's recordings.
func (d *Driver) RunID() string { return d.runID }

// Ticks is the number of ticks run so far. Read it only after Run returns.
func (d *Driver) Ticks() uint64 { return d.seq }

// Tick runs one cycle. It returns an error only when the source is
// exhausted or ctx is done; every other failure is logged and answered
// with a stop command.
func (d *Driver) Tick(ctx context.Context) error {
	bb, err := d.source.Snapshot(ctx)
	if err != nil {
		d.send(ctx, action.Halt)
		if errors.Is(err, ErrSourceClosed) || errors.Is(err, io.EOF) {
			return ErrSourceClosed
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		d.log.Warn("[Driver] snapshot failed, stopping robot", "error", err)
		d.record(ctx, Entry{Action: action.Halt, Err: err.Error()})
		return nil
	}

	if fb, ok := d.actuator.(Feedback); ok && bb.Robot.WheelSpeed == nil {
		if ws, ok := fb.MeasuredWheelSpeed(); ok {
			bb.Robot.WheelSpeed = &ws
		}
	}

	act := d.controller.Tick(bb)
	if !act.Present() {
		d.log.Error("[Driver] controller returned no action", "state", d.controller.State())
		act = action.Halt
	}
	d.send(ctx, act)
	d.record(ctx, Entry{
		Phase:  bb.Phase,
		Side:   bb.Side,
		Robot:  bb.Robot.Position,
		Ball:   bb.Ball.Position,
		State:  d.controller.State(),
		Action: act,
	})
	return nil
}

func (d *Driver) send(ctx context.Context, act action.Action) {
	if err := d.actuator.Send(ctx, act); err != nil {
		d.log.Error("[Driver] actuator send failed", "action", act.String(), "error", err)
	}
}

func (d *Driver) record(ctx context.Context, e Entry) {
	d.seq++
	if d.recorder == nil {
		return
	}
	e.RunID, e.Seq, e.Time = d.runID, d.seq, d.now()
	if e.Err != "" {
		e.Robot, e.Ball = arena.Unseen, arena.Unseen
	}
	if err := d.recorder.Record(ctx, e); err != nil {
		d.log.Warn("[Driver] record failed", "seq", e.Seq, "error", err)
	}
}

// Run ticks every period until ctx ends or the source is exhausted. Both
// are normal endings and return nil; the robot is sent a final stop.
func (d *Driver) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("decision: tick period must be positive, got %v", period)
	}
	d.log.Info("[Driver] starting", "run_id", d.runID, "period", period)

	node := bt.New(func([]bt.Node) (bt.Status, error) {
		if err := d.Tick(ctx); err != nil {
			return bt.Failure, err
		}
		return bt.Running, nil
	})
	ticker := bt.NewTickerStopOnFailure(ctx, period, node)
	<-ticker.Done()

	err := ticker.Err()
	// The context may already be gone; the final stop gets its own.
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), period)
	defer cancel()
	d.send(stopCtx, action.Halt)

	switch {
	case err == nil, errors.Is(err, ErrSourceClosed),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		d.log.Info("[Driver] stopped", "run_id", d.runID, "ticks", d.seq)
		return nil
	default:
		return fmt.Errorf("decision: run: %w", err)
	}
}
