package behavior

import (
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/world"
)

// Status is the go-behaviortree status type.
type Status = bt.Status

const (
	Running = bt.Running
	Success = bt.Success
	Failure = bt.Failure
)

// Node is one vertex of a behavior tree.
type Node interface {
	Run(bb *world.BlackBoard) (Status, action.Action)
}

// NodeFunc adapts a function to Node.
type NodeFunc func(bb *world.BlackBoard) (Status, action.Action)

func (f NodeFunc) Run(bb *world.BlackBoard) (Status, action.Action) { return f(bb) }

// Resetter is implemented by nodes that carry state across ticks.
type Resetter interface {
	Reset()
}

// Named is implemented by nodes that carry a human-readable label.
type Named interface {
	Name() string
}

// NameOf returns n's label, or "" when it has none.
func NameOf(n Node) string {
	if v, ok := n.(Named); ok {
		return v.Name()
	}
	return ""
}

// bind wraps each child as a go-behaviortree node that runs it against bb
// and stores its action in *out. The wrapped ticks never return an error.
func bind(bb *world.BlackBoard, children []Node, out *action.Action) []bt.Node {
	nodes := make([]bt.Node, len(children))
	for i, child := range children {
		nodes[i] = bt.New(func([]bt.Node) (bt.Status, error) {
			status, act := child.Run(bb)
			*out = act
			return status, nil
		})
	}
	return nodes
}

// tickOf wraps a single node as a go-behaviortree tick.
func tickOf(bb *world.BlackBoard, n Node, out *action.Action) bt.Tick {
	return func([]bt.Node) (bt.Status, error) {
		status, act := n.Run(bb)
		*out = act
		return status, nil
	}
}
