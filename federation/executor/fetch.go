package executor

import (
	"context"
	"time"

	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/plan"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FetchExecutor is the Fetch Executor of spec §4.4: it turns one compiled
// Fetch node, positioned at a cursor, into a subgraph request and merges
// the result back into the response tree.
type FetchExecutor struct {
	DataSources map[string]DataSource
	SuperGraph  *graph.SuperGraphV2
}

// Execute runs one Fetch node and returns its trace record. Errors are
// recorded on execCtx rather than returned: a failed fetch never aborts
// the rest of the plan (spec §4.4, testable property 6).
func (fe *FetchExecutor) Execute(ctx context.Context, execCtx *ExecutionContext, node *plan.FetchNode, cur Cursor) *TraceFetch {
	ctx, span := tracer.Start(ctx, "federation.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("federation.service", node.ServiceName))

	trace := &TraceFetch{ServiceName: node.ServiceName}

	ds, ok := fe.DataSources[node.ServiceName]
	if !ok {
		span.SetStatus(codes.Error, "unknown service")
		execCtx.AddError(toGraphQLError(errMissingService(node.ServiceName), cur.Path()))
		return trace
	}

	view := cur.View()
	elementPaths := cur.ElementPaths()
	entities, entityPaths := collectLiveEntities(view, elementPaths)
	if len(entities) == 0 {
		return trace
	}

	vars := map[string]interface{}{}
	for _, name := range node.VariableUsages {
		if v, ok := execCtx.Request.Variables[name]; ok {
			vars[name] = v
		}
	}

	var repPaths []plan.ResponsePath
	if len(node.Requires) > 0 {
		if _, exists := vars["representations"]; exists {
			execCtx.AddError(toGraphQLError(errForbiddenRepresentationsVariable(node.ServiceName), cur.Path()))
			return trace
		}
		reps := make([]map[string]interface{}, 0, len(entities))
		keptEntities := make([]interface{}, 0, len(entities))
		for i, ent := range entities {
			rep := ExecuteSelectionSet(fe.SuperGraph, ent, node.Requires, node.InputRewrites)
			if rep == nil {
				continue
			}
			reps = append(reps, rep)
			repPaths = append(repPaths, entityPaths[i])
			keptEntities = append(keptEntities, ent)
		}
		if len(reps) == 0 {
			return trace
		}
		entities = keptEntities
		vars["representations"] = reps
	}

	req := SubgraphRequest{
		OperationText: node.OperationText,
		OperationName: node.OperationName,
		Variables:     vars,
		Header:        RequestHeaderFromContext(ctx),
		CaptureTrace:  execCtx.Request.CaptureTrace,
	}

	trace.SentTime = time.Now()
	trace.SentTimeOffsetNanos = trace.SentTime.Sub(execCtx.StartTime).Nanoseconds()
	resp, err := ds.Execute(ctx, req)
	trace.ReceivedTime = time.Now()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		execCtx.AddError(toGraphQLError(errSubgraph(node.ServiceName, err.Error()), cur.Path()))
		return trace
	}

	if len(node.Requires) == 0 {
		ApplyOutputRewrites(resp.Data, node.OutputRewrites)
		for _, ent := range entities {
			if em, ok := ent.(map[string]interface{}); ok {
				MergeInto(em, resp.Data)
			}
		}
	} else {
		fe.mergeEntities(execCtx, node, cur, resp, entities)
	}

	if resp.Extensions != nil {
		if raw, ok := resp.FTv1(); ok {
			trace.Trace = raw
		} else if _, present := resp.Extensions["ftv1"]; present {
			trace.TraceParsingFailed = true
		}
	}

	if len(resp.Errors) > 0 {
		span.SetStatus(codes.Error, "subgraph returned errors")
	}
	for _, se := range resp.Errors {
		hydrated := HydrateErrorPath(repPaths, cur.Path(), se.Path)
		extensions := se.Extensions
		if extensions == nil {
			extensions = map[string]interface{}{}
		}
		if _, ok := extensions["code"]; !ok {
			extensions["code"] = CodeSubgraphError
		}
		extensions["serviceName"] = node.ServiceName
		execCtx.AddError(GraphQLError{Message: se.Message, Path: hydrated.ToInterfaceSlice(), Extensions: extensions})
		if execCtx.Request.Metrics != nil && trace.Trace == nil {
			// An FTv1 trace already records this error on the subgraph side;
			// only double as the error metrics sink when there's no trace
			// to fall back on.
			code, _ := extensions["code"].(string)
			execCtx.Request.Metrics.IncFetchError(node.ServiceName, code)
		}
	}

	return trace
}

func (fe *FetchExecutor) mergeEntities(execCtx *ExecutionContext, node *plan.FetchNode, cur Cursor, resp *SubgraphResponse, entities []interface{}) {
	raw, exists := resp.Data["_entities"]
	if !exists {
		return
	}
	entitiesData, ok := raw.([]interface{})
	if !ok {
		execCtx.AddError(toGraphQLError(errExpectedEntitiesArray(node.ServiceName), cur.Path()))
		return
	}
	if len(entitiesData) != len(entities) {
		execCtx.AddError(toGraphQLError(errEntityCountMismatch(node.ServiceName, len(entities), len(entitiesData)), cur.Path()))
		return
	}
	for i, ev := range entitiesData {
		em, ok := ev.(map[string]interface{})
		if !ok {
			continue
		}
		typename, _ := em["__typename"].(string)
		filtered := FilterOutputRewritesForType(node.OutputRewrites, typename)
		ApplyOutputRewrites(em, filtered)
		if target, ok := entities[i].(map[string]interface{}); ok {
			MergeInto(target, em)
		}
	}
}

// collectLiveEntities filters a Cursor's view down to the non-null entity
// objects a Fetch should act on, per spec §4.4 step 1, returning the
// surviving entities alongside the concrete response path each came from.
func collectLiveEntities(view interface{}, elementPaths []plan.ResponsePath) ([]interface{}, []plan.ResponsePath) {
	if arr, ok := view.([]interface{}); ok {
		entities := make([]interface{}, 0, len(arr))
		paths := make([]plan.ResponsePath, 0, len(arr))
		for i, e := range arr {
			if e == nil {
				continue
			}
			entities = append(entities, e)
			if i < len(elementPaths) {
				paths = append(paths, elementPaths[i])
			}
		}
		return entities, paths
	}
	if view == nil {
		return nil, nil
	}
	path := plan.ResponsePath{}
	if len(elementPaths) > 0 {
		path = elementPaths[0]
	}
	return []interface{}{view}, []plan.ResponsePath{path}
}

func toGraphQLError(err *ExecutorError, path plan.ResponsePath) GraphQLError {
	extensions := map[string]interface{}{"code": err.Code}
	if err.Service != "" {
		extensions["serviceName"] = err.Service
	}
	return GraphQLError{Message: err.Message, Path: path.ToInterfaceSlice(), Extensions: extensions}
}
