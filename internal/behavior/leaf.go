package behavior

import (
	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/world"
)

// Condition is a leaf that succeeds when its predicate holds. It never
// produces an action.
type Condition struct {
	name string
	pred func(bb *world.BlackBoard) bool
}

func NewCondition(name string, pred func(bb *world.BlackBoard) bool) *Condition {
	return &Condition{name: name, pred: pred}
}

func (c *Condition) Name() string { return c.name }

func (c *Condition) Run(bb *world.BlackBoard) (Status, action.Action) {
	if c.pred(bb) {
		return Success, action.None
	}
	return Failure, action.None
}

// Leaf is a named action-producing node.
type Leaf struct {
	name string
	fn   func(bb *world.BlackBoard) (Status, action.Action)
}

func NewLeaf(name string, fn func(bb *world.BlackBoard) (Status, action.Action)) *Leaf {
	return &Leaf{name: name, fn: fn}
}

func (l *Leaf) Name() string { return l.name }

func (l *Leaf) Run(bb *world.BlackBoard) (Status, action.Action) { return l.fn(bb) }

// Always returns a node that reports status and no action.
func Always(status Status) Node {
	return NodeFunc(func(*world.BlackBoard) (Status, action.Action) {
		return status, action.None
	})
}
