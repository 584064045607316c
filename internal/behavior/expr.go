package behavior

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ararabots/vsscore/internal/action"
	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/world"
)

// ExprBody is the view of a tracked object inside a condition expression.
type ExprBody struct {
	X    float64 `expr:"x"`
	Y    float64 `expr:"y"`
	VX   float64 `expr:"vx"`
	VY   float64 `expr:"vy"`
	Seen bool    `expr:"seen"`
	Zone string  `expr:"zone"`
}

// ExprEnv is the environment condition expressions are evaluated against.
type ExprEnv struct {
	Ball       ExprBody `expr:"ball"`
	Robot      ExprBody `expr:"robot"`
	Side       string   `expr:"side"`
	Phase      string   `expr:"phase"`
	Distance   float64  `expr:"distance"`
	IsExecutor bool     `expr:"is_executor"`
}

// NewExprEnv projects bb onto the expression environment. Unseen
// coordinates are reported as zero with seen=false.
func NewExprEnv(bb *world.BlackBoard, g arena.Geometry) ExprEnv {
	d := arena.Distance(bb.Ball.Position, bb.Robot.Position)
	if !bb.Ball.Position.Seen() || !bb.Robot.Position.Seen() {
		d = -1
	}
	return ExprEnv{
		Ball:       exprBody(bb.Ball, g),
		Robot:      exprBody(bb.Robot.Body, g),
		Side:       bb.Side.String(),
		Phase:      bb.Phase.String(),
		Distance:   d,
		IsExecutor: bb.IsSpecialPlayExecutor(),
	}
}

func exprBody(b world.Body, g arena.Geometry) ExprBody {
	out := ExprBody{Zone: g.Classify(b.Position).String()}
	if b.Position.Seen() {
		out.X, out.Y, out.Seen = b.Position.X, b.Position.Y, true
	}
	if b.Speed.Seen() {
		out.VX, out.VY = b.Speed.X, b.Speed.Y
	}
	return out
}

// ExprCondition is a condition leaf whose predicate is an expr-lang
// expression, e.g. `ball.seen && ball.x < 30 && robot.zone == "left-goal-area"`.
type ExprCondition struct {
	name       string
	expression string
	program    *vm.Program
	geometry   arena.Geometry
	log        *slog.Logger
}

// NewExprCondition compiles expression. Unknown identifiers and non-boolean
// results are rejected here, not at tick time. Evaluation errors go to log,
// or slog.Default when log is nil.
func NewExprCondition(name, expression string, g arena.Geometry, log *slog.Logger) (*ExprCondition, error) {
	program, err := expr.Compile(expression, expr.Env(ExprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", name, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &ExprCondition{name: name, expression: expression, program: program, geometry: g, log: log}, nil
}

func (c *ExprCondition) Name() string { return c.name }

// Expression returns the source the condition was compiled from.
func (c *ExprCondition) Expression() string { return c.expression }

func (c *ExprCondition) Run(bb *world.BlackBoard) (Status, action.Action) {
	result, err := expr.Run(c.program, NewExprEnv(bb, c.geometry))
	if err != nil {
		c.log.Error("[behavior] condition evaluation failed", "name", c.name, "error", err)
		return Failure, action.None
	}
	if ok, _ := result.(bool); ok {
		return Success, action.None
	}
	return Failure, action.None
}
