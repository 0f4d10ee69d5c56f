package executor

import (
	"context"

	"github.com/n9te9/federation-gateway/federation/plan"
	"golang.org/x/sync/errgroup"
)

// Interpreter is the Plan Interpreter of spec §4.1: it walks a compiled
// plan tree against a cursor, dispatching Fetch nodes to the FetchExecutor
// and enforcing Sequence happens-before / Parallel fan-out semantics.
type Interpreter struct {
	Fetch *FetchExecutor
}

// Execute walks node and returns the trace tree produced by the walk.
// Encountering Defer or Condition panics with *unsupportedPlanNodeErr,
// recovered at the Orchestrator boundary: per spec these mean the plan is
// malformed for this executor and execution must abort with no partial
// data rather than continue around the unsupported node.
func (ip *Interpreter) Execute(ctx context.Context, execCtx *ExecutionContext, node *plan.Node, cur Cursor) *TraceNode {
	switch node.Kind {
	case plan.KindSequence:
		tn := &TraceNode{Kind: node.Kind}
		for _, child := range node.Children {
			tn.Children = append(tn.Children, ip.Execute(ctx, execCtx, child, cur))
		}
		return tn

	case plan.KindParallel:
		tn := &TraceNode{Kind: node.Kind}
		children := make([]*TraceNode, len(node.Children))
		eg, gctx := errgroup.WithContext(ctx)
		for i, child := range node.Children {
			i, child := i, child
			eg.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = &recoveredPanicErr{value: r}
					}
				}()
				children[i] = ip.Execute(gctx, execCtx, child, cur)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			if rpe, ok := err.(*recoveredPanicErr); ok {
				// recover() only unwinds the goroutine it runs in, so a
				// panic raised by a child's Execute above would otherwise
				// crash the process instead of reaching the Orchestrator's
				// recover. Re-panic here, in the goroutine that called
				// eg.Wait, so it propagates normally up to Execute's caller.
				panic(rpe.value)
			}
		}
		tn.Children = children
		return tn

	case plan.KindFlatten:
		tn := &TraceNode{Kind: node.Kind, FlattenPath: node.FlattenPath}
		newCur, ok := Move(cur, node.FlattenPath)
		if !ok {
			return tn
		}
		tn.Child = ip.Execute(ctx, execCtx, node.Child, newCur)
		return tn

	case plan.KindFetch:
		return &TraceNode{Kind: node.Kind, Fetch: ip.Fetch.Execute(ctx, execCtx, node.Fetch, cur)}

	default:
		panic(&unsupportedPlanNodeErr{kind: node.Kind.String()})
	}
}
