package behavior

import (
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/world"
)

// Sequence ticks its children in order until one does not succeed.
type Sequence struct {
	name     string
	children []Node
}

// NewSequence builds a Sequence over children.
func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{name: name, children: children}
}

// Add appends a child and returns s for chaining.
func (s *Sequence) Add(child Node) *Sequence {
	s.children = append(s.children, child)
	return s
}

func (s *Sequence) Name() string { return s.name }

func (s *Sequence) Run(bb *world.BlackBoard) (Status, action.Action) {
	last := action.None
	status, err := bt.Sequence(bind(bb, s.children, &last))
	if err != nil {
		return Failure, action.None
	}
	if status == Success {
		return Success, action.None
	}
	return status, last
}

// Selector ticks its children in order until one does not fail.
type Selector struct {
	name     string
	children []Node
}

// NewSelector builds a Selector over children.
func NewSelector(name string, children ...Node) *Selector {
	return &Selector{name: name, children: children}
}

// Add appends a child and returns s for chaining.
func (s *Selector) Add(child Node) *Selector {
	s.children = append(s.children, child)
	return s
}

func (s *Selector) Name() string { return s.name }

func (s *Selector) Run(bb *world.BlackBoard) (Status, action.Action) {
	last := action.None
	status, err := bt.Selector(bind(bb, s.children, &last))
	if err != nil {
		return Failure, action.None
	}
	if status == Failure {
		return Failure, action.None
	}
	return status, last
}
