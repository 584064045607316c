package behavior

import (
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/world"
)

// Invert swaps Success and Failure. Running and the child's action pass
// through unchanged.
type Invert struct {
	child Node
}

func NewInvert(child Node) *Invert { return &Invert{child: child} }

func (n *Invert) Name() string { return "not " + NameOf(n.child) }

func (n *Invert) Run(bb *world.BlackBoard) (Status, action.Action) {
	act := action.None
	status, err := bt.Not(tickOf(bb, n.child, &act))(nil)
	if err != nil {
		return Failure, action.None
	}
	return status, act
}

// RepeatN runs its child at most n times, counted across ticks. Once the
// budget is spent it succeeds without touching the child until Reset.
type RepeatN struct {
	child     Node
	n         int
	remaining int
}

func NewRepeatN(n int, child Node) *RepeatN {
	return &RepeatN{child: child, n: n, remaining: n}
}

func (r *RepeatN) Run(bb *world.BlackBoard) (Status, action.Action) {
	if r.remaining <= 0 {
		return Success, action.None
	}
	r.remaining--
	return r.child.Run(bb)
}

// Reset restores the full budget.
func (r *RepeatN) Reset() { r.remaining = r.n }

// Remaining is the number of runs left before Reset is needed.
func (r *RepeatN) Remaining() int { return r.remaining }

// OnStatusChange runs its child every tick and calls fn whenever the
// child's status differs from the one it returned on the previous tick.
// The first tick always counts as a change.
type OnStatusChange struct {
	child Node
	fn    func()
	last  Status
	seen  bool
}

func NewOnStatusChange(child Node, fn func()) *OnStatusChange {
	return &OnStatusChange{child: child, fn: fn}
}

func (n *OnStatusChange) Name() string { return NameOf(n.child) }

func (n *OnStatusChange) Run(bb *world.BlackBoard) (Status, action.Action) {
	status, act := n.child.Run(bb)
	changed := !n.seen || status != n.last
	n.last, n.seen = status, true
	if changed && n.fn != nil {
		n.fn()
	}
	return status, act
}

// Reset forgets the previous status.
func (n *OnStatusChange) Reset() { n.seen = false }

// ForceRunning runs its child and always reports Running.
type ForceRunning struct {
	child Node
}

func NewForceRunning(child Node) *ForceRunning { return &ForceRunning{child: child} }

func (n *ForceRunning) Name() string { return NameOf(n.child) }

func (n *ForceRunning) Run(bb *world.BlackBoard) (Status, action.Action) {
	_, act := n.child.Run(bb)
	return Running, act
}

// IgnoreFailure turns a failing child into a success.
type IgnoreFailure struct {
	child Node
}

func NewIgnoreFailure(child Node) *IgnoreFailure { return &IgnoreFailure{child: child} }

func (n *IgnoreFailure) Name() string { return NameOf(n.child) }

func (n *IgnoreFailure) Run(bb *world.BlackBoard) (Status, action.Action) {
	status, act := n.child.Run(bb)
	if status == Failure {
		return Success, act
	}
	return status, act
}

// TimerGate lets its child run for d after the first activation, then
// succeeds without running it until Reset. Time is read from the
// blackboard, falling back to the wall clock when the snapshot has none.
type TimerGate struct {
	child   Node
	d       time.Duration
	start   time.Time
	started bool
}

func NewTimerGate(d time.Duration, child Node) *TimerGate {
	return &TimerGate{child: child, d: d}
}

func (n *TimerGate) Name() string { return NameOf(n.child) }

func (n *TimerGate) Run(bb *world.BlackBoard) (Status, action.Action) {
	now := bb.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !n.started {
		n.start, n.started = now, true
	}
	if now.Sub(n.start) >= n.d {
		return Success, action.None
	}
	return n.child.Run(bb)
}

// Expired reports whether the gate has closed.
func (n *TimerGate) Expired(now time.Time) bool {
	return n.started && now.Sub(n.start) >= n.d
}

// Reset re-arms the gate; the next activation starts a new window.
func (n *TimerGate) Reset() { n.started = false }
