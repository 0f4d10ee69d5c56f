package executor_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/n9te9/federation-gateway/federation/executor"
	"github.com/n9te9/federation-gateway/federation/plan"
)

func rootFetchSetup(ds executor.DataSource, metrics executor.MetricsSink) (*executor.FetchExecutor, *executor.ExecutionContext, executor.Cursor) {
	fe := &executor.FetchExecutor{DataSources: map[string]executor.DataSource{"accounts": ds}}
	reqCtx := executor.NewRequestContext(nil, nil)
	reqCtx.Metrics = metrics
	execCtx := executor.NewExecutionContext(reqCtx)
	execCtx.ResponseRoot["me"] = map[string]interface{}{"id": "1"}
	return fe, execCtx, executor.RootCursor(execCtx.ResponseRoot)
}

// Without an FTv1 trace, a subgraph error must still increment the metrics
// sink and default to the generic subgraph error code when the subgraph
// didn't supply one.
func TestFetchExecutor_ErrorWithoutTrace_IncrementsMetricsAndDefaultsCode(t *testing.T) {
	ds := funcDataSource(func(ctx context.Context, req executor.SubgraphRequest) (*executor.SubgraphResponse, error) {
		return &executor.SubgraphResponse{
			Errors: []executor.SubgraphError{{Message: "boom"}},
		}, nil
	})

	metrics := executor.NewInMemoryMetricsSink()
	fe, execCtx, cur := rootFetchSetup(ds, metrics)

	node := &plan.FetchNode{ServiceName: "accounts", OperationText: "query { me { id } }"}
	fe.Execute(context.Background(), execCtx, node, cur)

	errs := execCtx.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Extensions["code"] != executor.CodeSubgraphError {
		t.Errorf("code = %v, want %s", errs[0].Extensions["code"], executor.CodeSubgraphError)
	}
	if got := metrics.Count("accounts", executor.CodeSubgraphError); got != 1 {
		t.Errorf("metrics count = %d, want 1", got)
	}
}

// When the subgraph response carries a decoded FTv1 trace, the same error
// must not be double-counted into the metrics sink.
func TestFetchExecutor_ErrorWithTrace_SkipsMetrics(t *testing.T) {
	ftv1 := base64.StdEncoding.EncodeToString([]byte("trace-bytes"))
	ds := funcDataSource(func(ctx context.Context, req executor.SubgraphRequest) (*executor.SubgraphResponse, error) {
		return &executor.SubgraphResponse{
			Errors:     []executor.SubgraphError{{Message: "boom"}},
			Extensions: map[string]interface{}{"ftv1": ftv1},
		}, nil
	})

	metrics := executor.NewInMemoryMetricsSink()
	fe, execCtx, cur := rootFetchSetup(ds, metrics)

	node := &plan.FetchNode{ServiceName: "accounts", OperationText: "query { me { id } }"}
	fe.Execute(context.Background(), execCtx, node, cur)

	if got := metrics.Count("accounts", executor.CodeSubgraphError); got != 0 {
		t.Errorf("metrics count = %d, want 0 when an FTv1 trace was decoded", got)
	}
}

// An explicit code from the subgraph is preserved rather than overwritten.
func TestFetchExecutor_ErrorWithExplicitCode_NotOverwritten(t *testing.T) {
	ds := funcDataSource(func(ctx context.Context, req executor.SubgraphRequest) (*executor.SubgraphResponse, error) {
		return &executor.SubgraphResponse{
			Errors: []executor.SubgraphError{{Message: "not found", Extensions: map[string]interface{}{"code": "NOT_FOUND"}}},
		}, nil
	})

	fe, execCtx, cur := rootFetchSetup(ds, executor.NoopMetricsSink{})
	node := &plan.FetchNode{ServiceName: "accounts", OperationText: "query { me { id } }"}
	fe.Execute(context.Background(), execCtx, node, cur)

	errs := execCtx.Errors()
	if len(errs) != 1 || errs[0].Extensions["code"] != "NOT_FOUND" {
		t.Fatalf("expected code NOT_FOUND preserved, got %v", errs)
	}
}

// SentTimeOffsetNanos reflects the delta between the request's start time
// and the moment this particular fetch was sent.
func TestFetchExecutor_SentTimeOffsetNanos(t *testing.T) {
	ds := funcDataSource(func(ctx context.Context, req executor.SubgraphRequest) (*executor.SubgraphResponse, error) {
		return &executor.SubgraphResponse{Data: map[string]interface{}{"id": "1"}}, nil
	})

	fe, execCtx, cur := rootFetchSetup(ds, executor.NoopMetricsSink{})
	node := &plan.FetchNode{ServiceName: "accounts", OperationText: "query { me { id } }"}
	trace := fe.Execute(context.Background(), execCtx, node, cur)

	if trace.SentTimeOffsetNanos < 0 {
		t.Errorf("SentTimeOffsetNanos = %d, want >= 0", trace.SentTimeOffsetNanos)
	}
	if trace.SentTime.Before(execCtx.StartTime) {
		t.Errorf("SentTime %v is before ExecutionContext.StartTime %v", trace.SentTime, execCtx.StartTime)
	}
}
