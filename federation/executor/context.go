package executor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type requestHeaderKey struct{}

// SetRequestHeaderToContext carries the incoming HTTP request's header set
// through to subgraph data sources, so per-request headers (auth, trace
// toggles) can be forwarded without threading them through every call.
func SetRequestHeaderToContext(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, requestHeaderKey{}, h)
}

// RequestHeaderFromContext retrieves the header set installed by
// SetRequestHeaderToContext, or nil if none was installed.
func RequestHeaderFromContext(ctx context.Context) http.Header {
	h, _ := ctx.Value(requestHeaderKey{}).(http.Header)
	return h
}

// GraphQLError is one error in a GraphQL response's top-level errors array.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// RequestContext carries everything about the inbound request that
// executor components need but that isn't part of the compiled plan.
type RequestContext struct {
	Header               http.Header
	Variables            map[string]interface{}
	RequestID            string
	CaptureTrace         bool
	Metrics              MetricsSink
	SuppressPostProcessingErrors bool
}

// NewRequestContext builds a RequestContext, generating a request ID when
// none is supplied.
func NewRequestContext(header http.Header, variables map[string]interface{}) *RequestContext {
	return &RequestContext{
		Header:                       header,
		Variables:                    variables,
		RequestID:                    uuid.NewString(),
		SuppressPostProcessingErrors: true,
	}
}

// ExecutionContext is the mutable state threaded through one Execute call:
// the accumulated fetch errors and the response tree fetches write into.
type ExecutionContext struct {
	Request      *RequestContext
	ResponseRoot map[string]interface{}
	StartTime    time.Time

	mu     sync.Mutex
	errors []GraphQLError
}

// NewExecutionContext builds an ExecutionContext rooted at a fresh response
// tree, recording the current time as the request's start for computing
// each fetch's SentTimeOffsetNanos.
func NewExecutionContext(req *RequestContext) *ExecutionContext {
	return &ExecutionContext{
		Request:      req,
		ResponseRoot: map[string]interface{}{},
		StartTime:    time.Now(),
		errors:       make([]GraphQLError, 0),
	}
}

// AddError records a fetch-time error. Safe for concurrent use by Parallel
// branches.
func (ec *ExecutionContext) AddError(err GraphQLError) {
	ec.mu.Lock()
	ec.errors = append(ec.errors, err)
	ec.mu.Unlock()
}

// Errors returns a snapshot of the errors recorded so far.
func (ec *ExecutionContext) Errors() []GraphQLError {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	out := make([]GraphQLError, len(ec.errors))
	copy(out, ec.errors)
	return out
}

// MetricsSink receives counts of non-FTv1 fetch errors, supplementing trace
// capture with a cheap always-on signal (spec §4.4 step 6).
type MetricsSink interface {
	IncFetchError(service string, code string)
}

// NoopMetricsSink discards every observation.
type NoopMetricsSink struct{}

func (NoopMetricsSink) IncFetchError(string, string) {}
