// Package behavior is a small behavior-tree toolkit for robot controllers,
// layered on github.com/joeycumines/go-behaviortree.
//
// A [Node] is ticked with the current [world.BlackBoard] and answers with a
// [Status] plus the [action.Action] it wants the robot to perform. The
// composites delegate their child scheduling to go-behaviortree's
// Sequence/Selector/Not ticks, capturing the action of whichever child
// decided the outcome. Stateful decorators ([RepeatN], [OnStatusChange],
// [TimerGate]) keep their bookkeeping in the node itself, so a tree instance
// belongs to exactly one controller.
//
// Action semantics:
//
//   - A Sequence that succeeds reports [action.None]; otherwise it reports
//     the action of the child that returned Running or Failure.
//   - A Selector reports the action of the child that returned Running or
//     Success, or [action.None] when every child failed.
//   - Conditions always report [action.None].
//
// Trees are not safe for concurrent ticking.
package behavior
