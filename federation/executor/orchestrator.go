package executor

import (
	"context"

	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/plan"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/n9te9/federation-gateway/federation/executor")

// Envelope is the final {data?, errors?} response body (spec §4.8).
type Envelope struct {
	Data   map[string]interface{} `json:"data,omitempty"`
	Errors []GraphQLError         `json:"errors,omitempty"`
}

// Orchestrator is the public entry point of spec §4.8: it assembles an
// ExecutionContext, runs the Plan Interpreter against a fresh response
// tree, shapes the result through the Post-Processor, and applies the
// duplicate-error suppression policy.
type Orchestrator struct {
	Interpreter   *Interpreter
	PostProcessor *PostProcessor
	SuperGraph    *graph.SuperGraphV2
}

// Execute runs tree for one request and returns the client-facing
// envelope. It never returns an error: structural plan problems and
// unexpected panics are converted into the sole entry of Envelope.Errors
// with no partial data, per spec's handling of Defer/Condition and
// unexpected exceptions.
func (o *Orchestrator) Execute(ctx context.Context, tree *plan.Tree, reqCtx *RequestContext) (envelope *Envelope) {
	ctx, span := tracer.Start(ctx, "federation.execute")
	defer span.End()

	execCtx := NewExecutionContext(reqCtx)

	defer func() {
		if r := recover(); r == nil {
			return
		} else if upe, ok := r.(*unsupportedPlanNodeErr); ok {
			span.SetStatus(codes.Error, upe.Error())
			envelope = &Envelope{Errors: []GraphQLError{{
				Message:    upe.Error(),
				Extensions: map[string]interface{}{"code": CodeUnsupportedPlanNode},
			}}}
		} else {
			span.SetStatus(codes.Error, "unexpected executor error")
			envelope = &Envelope{Errors: []GraphQLError{{
				Message:    "internal executor error",
				Extensions: map[string]interface{}{"code": CodeUnexpectedExecutorError},
			}}}
		}
	}()

	if tree.Root != nil {
		cur := RootCursor(execCtx.ResponseRoot)
		o.Interpreter.Execute(ctx, execCtx, tree.Root, cur)
	}

	_, ppSpan := tracer.Start(ctx, "federation.postprocess")
	data, ppErrors := o.PostProcessor.Shape(execCtx.ResponseRoot, clientSelectionSet(tree))
	if len(ppErrors) > 0 {
		ppSpan.SetStatus(codes.Error, "post-processing produced errors")
	}
	ppSpan.End()

	fetchErrors := execCtx.Errors()
	span.SetAttributes(attribute.Int("federation.fetch_errors", len(fetchErrors)))

	var finalErrors []GraphQLError
	if len(fetchErrors) > 0 {
		// Duplicate-error suppression (spec open question, preserved
		// as-is): once any fetch has failed, post-processing errors
		// are discarded rather than appended.
		finalErrors = fetchErrors
	} else {
		finalErrors = ppErrors
	}
	if len(finalErrors) > 0 {
		span.SetStatus(codes.Error, "execution produced errors")
	}

	env := &Envelope{Errors: finalErrors}
	if data != nil {
		env.Data = data
	}
	return env
}

func clientSelectionSet(tree *plan.Tree) plan.SelectionSet {
	return tree.ClientSelectionSet
}
